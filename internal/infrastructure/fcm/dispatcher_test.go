package fcm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-attendance-push/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage() *domain.ComposedMessage {
	return &domain.ComposedMessage{
		PushToken: "tok1",
		Title:     "Attendance Update",
		Body:      "Marked Present for Maths on 05 Mar 2024",
		ImageURL:  "img.png",
		ClickLink: "",
		Priority:  domain.PriorityHigh,
	}
}

func TestDispatcher_Send_Success(t *testing.T) {
	var gotPath, gotAuth, gotType string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"name":"projects/demo/messages/1"}`))
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL+"/", "demo", srv.Client())
	require.NoError(t, d.Send(context.Background(), "ya29.token", testMessage()))

	assert.Equal(t, "/v1/projects/demo/messages:send", gotPath)
	assert.Equal(t, "Bearer ya29.token", gotAuth)
	assert.Equal(t, "application/json", gotType)

	msg := gotBody["message"].(map[string]interface{})
	assert.Equal(t, "tok1", msg["token"])
	assert.NotContains(t, msg, "notification")
	assert.Equal(t, map[string]interface{}{
		"title": "Attendance Update",
		"body":  "Marked Present for Maths on 05 Mar 2024",
		"image": "img.png",
		"link":  "",
	}, msg["data"])
	assert.Equal(t, map[string]interface{}{"priority": "high"}, msg["android"])
}

func TestDispatcher_Send_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"status":"NOT_FOUND"}}`))
	}))
	defer srv.Close()

	err := NewDispatcher(srv.URL, "demo", srv.Client()).Send(context.Background(), "t", testMessage())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDelivery))

	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, http.StatusNotFound, de.StatusCode)
	assert.Contains(t, de.Body, "NOT_FOUND")
}

func TestDispatcher_Send_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	err := NewDispatcher(base, "demo", nil).Send(context.Background(), "t", testMessage())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDelivery)

	var de *DeliveryError
	assert.False(t, errors.As(err, &de))
}

func TestNewSendRequest_OmitsAndroidWithoutPriority(t *testing.T) {
	m := testMessage()
	m.Priority = ""
	raw, err := json.Marshal(newSendRequest(m))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "android")
}
