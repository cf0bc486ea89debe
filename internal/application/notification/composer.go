package notification

import (
	"fmt"

	"github.com/go-attendance-push/internal/domain"
)

// Title is the fixed title of every attendance message.
const Title = "Attendance Update"

// Compose builds the push message for d. Recipients without an image get no
// notification at all (domain.ErrNoImage).
func Compose(d *domain.Delivery) (*domain.ComposedMessage, error) {
	if d.Recipient.ImageURL == "" {
		return nil, fmt.Errorf("user %s: %w", d.Record.RecipientID, domain.ErrNoImage)
	}
	return &domain.ComposedMessage{
		PushToken: d.Recipient.PushToken,
		Title:     Title,
		Body:      fmt.Sprintf("Marked %s for %s on %s", d.Record.Status, d.SubjectName, d.Date),
		ImageURL:  d.Recipient.ImageURL,
		ClickLink: d.Recipient.ClickLink,
		Priority:  domain.PriorityHigh,
	}, nil
}
