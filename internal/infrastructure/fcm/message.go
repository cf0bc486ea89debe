package fcm

import "github.com/go-attendance-push/internal/domain"

// sendRequest is the body of projects.messages.send. Messages are data-only:
// no notification block, so the app renders them itself.
type sendRequest struct {
	Message message `json:"message"`
}

type message struct {
	Token   string            `json:"token"`
	Data    map[string]string `json:"data"`
	Android *androidConfig    `json:"android,omitempty"`
}

type androidConfig struct {
	Priority string `json:"priority"`
}

func newSendRequest(m *domain.ComposedMessage) sendRequest {
	req := sendRequest{Message: message{
		Token: m.PushToken,
		Data: map[string]string{
			"title": m.Title,
			"body":  m.Body,
			"image": m.ImageURL,
			"link":  m.ClickLink,
		},
	}}
	if m.Priority != "" {
		req.Message.Android = &androidConfig{Priority: m.Priority}
	}
	return req
}
