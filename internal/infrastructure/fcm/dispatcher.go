// Package fcm delivers composed messages through the Firebase Cloud
// Messaging HTTP v1 API.
package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-attendance-push/internal/domain"
)

// DeliveryError is returned when the gateway answers with anything but 200.
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("fcm responded %d: %s", e.StatusCode, e.Body)
}

func (e *DeliveryError) Unwrap() error { return domain.ErrDelivery }

// Dispatcher posts messages to the per-project send endpoint.
type Dispatcher struct {
	endpoint   string
	httpClient *http.Client
}

// NewDispatcher builds a dispatcher for baseURL (e.g. https://fcm.googleapis.com)
// and projectID.
func NewDispatcher(baseURL, projectID string, httpClient *http.Client) *Dispatcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Dispatcher{
		endpoint:   fmt.Sprintf("%s/v1/projects/%s/messages:send", strings.TrimRight(baseURL, "/"), url.PathEscape(projectID)),
		httpClient: httpClient,
	}
}

// Send delivers msg once. A transport failure or a non-200 status is
// returned as an error wrapping domain.ErrDelivery; nothing is retried.
func (d *Dispatcher) Send(ctx context.Context, accessToken string, msg *domain.ComposedMessage) error {
	body, err := json.Marshal(newSendRequest(msg))
	if err != nil {
		return fmt.Errorf("%w: encode message: %v", domain.ErrDelivery, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", domain.ErrDelivery, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &DeliveryError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
