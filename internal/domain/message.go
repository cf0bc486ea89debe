package domain

// PriorityHigh asks Android not to throttle or delay the message.
const PriorityHigh = "high"

// Delivery is a notification record resolved against its recipient and subject.
type Delivery struct {
	EventID     string
	Record      NotificationRecord
	Recipient   RecipientProfile
	SubjectName string
	Date        string
}

// ComposedMessage is the push message for one delivery attempt. It is never stored.
type ComposedMessage struct {
	PushToken string
	Title     string
	Body      string
	ImageURL  string
	ClickLink string
	Priority  string
}
