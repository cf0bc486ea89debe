package notification

import (
	"testing"

	"github.com/go-attendance-push/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose(t *testing.T) {
	msg, err := Compose(&domain.Delivery{
		Record:      domain.NotificationRecord{RecipientID: "u1", Status: "Absent"},
		Recipient:   domain.RecipientProfile{PushToken: "tok1", ImageURL: "img.png", ClickLink: "app://attendance"},
		SubjectName: "History",
		Date:        "05 Mar 2024",
	})
	require.NoError(t, err)
	assert.Equal(t, &domain.ComposedMessage{
		PushToken: "tok1",
		Title:     "Attendance Update",
		Body:      "Marked Absent for History on 05 Mar 2024",
		ImageURL:  "img.png",
		ClickLink: "app://attendance",
		Priority:  "high",
	}, msg)
}

func TestCompose_WithoutImage(t *testing.T) {
	_, err := Compose(&domain.Delivery{
		Record:    domain.NotificationRecord{RecipientID: "u1", Status: "Present"},
		Recipient: domain.RecipientProfile{PushToken: "tok1"},
	})
	assert.ErrorIs(t, err, domain.ErrNoImage)
	assert.ErrorIs(t, err, domain.ErrSkipped)
}
