package dynamo

import (
	"context"
	"fmt"

	"github.com/go-attendance-push/internal/domain"
)

// NotificationRepo reads notification records by key. The stream feed uses it
// when a stream only carries keys.
type NotificationRepo struct {
	client    ItemAPI
	tableName string
}

func NewNotificationRepo(client ItemAPI, tableName string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName}
}

func (r *NotificationRepo) Get(ctx context.Context, notificationID string) (*domain.NotificationRecord, error) {
	var n domain.NotificationRecord
	if err := getItem(ctx, r.client, r.tableName, strKey("notification_id", notificationID), &n); err != nil {
		return nil, fmt.Errorf("notification %s: %w", notificationID, err)
	}
	return &n, nil
}
