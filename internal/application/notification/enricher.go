package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-attendance-push/internal/domain"
	"github.com/go-attendance-push/internal/pkg/logger"
	"go.uber.org/zap"
)

// DateLayout renders dates as "05 Mar 2024".
const DateLayout = "02 Jan 2006"

// RecipientStore is the minimal interface the enricher requires from a user store.
type RecipientStore interface {
	Get(ctx context.Context, recipientID string) (*domain.RecipientProfile, error)
}

// SubjectStore is the minimal interface the enricher requires from a subject store.
type SubjectStore interface {
	Get(ctx context.Context, recipientID, subjectID string) (*domain.SubjectProfile, error)
}

// Enricher resolves a record into a Delivery.
type Enricher struct {
	recipients RecipientStore
	subjects   SubjectStore
	loc        *time.Location
	now        func() time.Time
	log        *zap.Logger
}

func NewEnricher(recipients RecipientStore, subjects SubjectStore, loc *time.Location, now func() time.Time, log *zap.Logger) *Enricher {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Enricher{recipients: recipients, subjects: subjects, loc: loc, now: now, log: logger.OrNop(log)}
}

// Enrich looks up the recipient and subject of rec. A missing recipient or
// push token is a skip (wrapping domain.ErrSkipped); other store failures are
// returned as-is. Subject lookup never fails the event.
func (e *Enricher) Enrich(ctx context.Context, rec domain.NotificationRecord) (*domain.Delivery, error) {
	recipient, err := e.recipients.Get(ctx, rec.RecipientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", rec.RecipientID, domain.ErrRecipientNotFound)
		}
		return nil, fmt.Errorf("lookup user %s: %w", rec.RecipientID, err)
	}
	if recipient.PushToken == "" {
		return nil, fmt.Errorf("user %s: %w", rec.RecipientID, domain.ErrNoPushToken)
	}

	return &domain.Delivery{
		Record:      rec,
		Recipient:   *recipient,
		SubjectName: e.subjectName(ctx, rec),
		Date:        e.formatDate(rec.OccurredAt),
	}, nil
}

func (e *Enricher) subjectName(ctx context.Context, rec domain.NotificationRecord) string {
	subject, err := e.subjects.Get(ctx, rec.RecipientID, rec.SubjectID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			e.log.Warn("subject lookup failed, using subject id",
				zap.String("recipient_id", rec.RecipientID),
				zap.String("subject_id", rec.SubjectID),
				zap.Error(err))
		}
		return rec.SubjectID
	}
	if subject.DisplayName == "" {
		return rec.SubjectID
	}
	return subject.DisplayName
}

func (e *Enricher) formatDate(at *time.Time) string {
	t := e.now()
	if at != nil && !at.IsZero() {
		t = *at
	}
	return t.In(e.loc).Format(DateLayout)
}
