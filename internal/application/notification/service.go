package notification

import (
	"context"
	"errors"
	"time"

	"github.com/go-attendance-push/internal/domain"
	"github.com/go-attendance-push/internal/infrastructure/fcm"
	"github.com/go-attendance-push/internal/infrastructure/metrics"
	"github.com/go-attendance-push/internal/pkg/logger"
	"go.uber.org/zap"
)

// Outcome is how a single pipeline run ended.
type Outcome string

const (
	OutcomeSent             Outcome = "sent"
	OutcomeSkippedRecipient Outcome = "skipped_recipient"
	OutcomeSkippedToken     Outcome = "skipped_token"
	OutcomeSkippedImage     Outcome = "skipped_image"
	OutcomeLookupFailed     Outcome = "lookup_failed"
	OutcomeAuthFailed       Outcome = "auth_failed"
	OutcomeDeliveryFailed   Outcome = "delivery_failed"
)

// TokenSource supplies gateway bearer tokens.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Sender delivers a composed message with a bearer token.
type Sender interface {
	Send(ctx context.Context, accessToken string, msg *domain.ComposedMessage) error
}

// Service runs the enrich → compose → token → send pipeline for one record.
type Service interface {
	Process(ctx context.Context, eventID string, rec domain.NotificationRecord) Outcome
}

type ServiceDeps struct {
	Recipients RecipientStore
	Subjects   SubjectStore
	Tokens     TokenSource
	Sender     Sender
	Location   *time.Location
	Now        func() time.Time
	Metrics    *metrics.Metrics
	Log        *zap.Logger
}

type service struct {
	enricher *Enricher
	tokens   TokenSource
	sender   Sender
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewService(deps ServiceDeps) Service {
	log := logger.OrNop(deps.Log)
	return &service{
		enricher: NewEnricher(deps.Recipients, deps.Subjects, deps.Location, deps.Now, log),
		tokens:   deps.Tokens,
		sender:   deps.Sender,
		metrics:  deps.Metrics,
		log:      log,
	}
}

// Process never returns an error: every failure is logged and ends the
// event. Nothing is retried.
func (s *service) Process(ctx context.Context, eventID string, rec domain.NotificationRecord) Outcome {
	log := s.log.With(
		zap.String("event_id", eventID),
		zap.String("notification_id", rec.ID),
		zap.String("recipient_id", rec.RecipientID),
	)
	outcome := s.run(ctx, eventID, rec, log)
	s.metrics.Outcome(string(outcome))
	return outcome
}

func (s *service) run(ctx context.Context, eventID string, rec domain.NotificationRecord, log *zap.Logger) Outcome {
	delivery, err := s.enricher.Enrich(ctx, rec)
	switch {
	case errors.Is(err, domain.ErrRecipientNotFound):
		log.Info("recipient not found, skipping")
		return OutcomeSkippedRecipient
	case errors.Is(err, domain.ErrNoPushToken):
		log.Info("recipient has no push token, skipping")
		return OutcomeSkippedToken
	case err != nil:
		log.Error("recipient lookup failed", zap.Error(err))
		return OutcomeLookupFailed
	}
	delivery.EventID = eventID

	msg, err := Compose(delivery)
	if err != nil {
		log.Info("recipient has no image, notification suppressed")
		return OutcomeSkippedImage
	}

	start := time.Now()
	defer func() { s.metrics.DeliveryTook(time.Since(start)) }()

	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		log.Error("access token exchange failed", zap.Error(err))
		return OutcomeAuthFailed
	}

	if err := s.sender.Send(ctx, token, msg); err != nil {
		var de *fcm.DeliveryError
		if errors.As(err, &de) {
			log.Error("notification delivery failed",
				zap.Int("status", de.StatusCode),
				zap.String("response", de.Body))
		} else {
			log.Error("notification delivery failed", zap.Error(err))
		}
		return OutcomeDeliveryFailed
	}

	log.Info("notification sent", zap.String("subject", delivery.SubjectName))
	return OutcomeSent
}
