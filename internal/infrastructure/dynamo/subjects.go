package dynamo

import (
	"context"
	"fmt"

	"github.com/go-attendance-push/internal/domain"
)

// SubjectRepo reads subject profiles keyed by (user_id, subject_id).
type SubjectRepo struct {
	client    ItemAPI
	tableName string
}

func NewSubjectRepo(client ItemAPI, tableName string) *SubjectRepo {
	return &SubjectRepo{client: client, tableName: tableName}
}

func (r *SubjectRepo) Get(ctx context.Context, recipientID, subjectID string) (*domain.SubjectProfile, error) {
	var s domain.SubjectProfile
	key := compositeKey("user_id", recipientID, "subject_id", subjectID)
	if err := getItem(ctx, r.client, r.tableName, key, &s); err != nil {
		return nil, fmt.Errorf("subject %s/%s: %w", recipientID, subjectID, err)
	}
	return &s, nil
}
