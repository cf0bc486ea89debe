package dynamo

import (
	"context"
	"fmt"

	"github.com/go-attendance-push/internal/domain"
)

// RecipientRepo reads recipient profiles from the users table.
type RecipientRepo struct {
	client    ItemAPI
	tableName string
}

func NewRecipientRepo(client ItemAPI, tableName string) *RecipientRepo {
	return &RecipientRepo{client: client, tableName: tableName}
}

func (r *RecipientRepo) Get(ctx context.Context, recipientID string) (*domain.RecipientProfile, error) {
	var p domain.RecipientProfile
	if err := getItem(ctx, r.client, r.tableName, strKey("user_id", recipientID), &p); err != nil {
		return nil, fmt.Errorf("recipient %s: %w", recipientID, err)
	}
	return &p, nil
}
