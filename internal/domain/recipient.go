package domain

// RecipientProfile is the user a notification is addressed to.
type RecipientProfile struct {
	RecipientID string `json:"id" dynamodbav:"user_id"`
	PushToken   string `json:"fcm_token" dynamodbav:"fcm_token"`
	ImageURL    string `json:"image_url" dynamodbav:"image_url"`
	ClickLink   string `json:"click_link" dynamodbav:"click_link"`
}

// SubjectProfile is a subject (course) belonging to a recipient.
type SubjectProfile struct {
	RecipientID string `json:"user_id" dynamodbav:"user_id"`
	SubjectID   string `json:"subject_id" dynamodbav:"subject_id"`
	DisplayName string `json:"name" dynamodbav:"name"`
}
