package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// The pipeline classifies every event outcome with errors.Is against these.
var (
	ErrNotFound = errors.New("not found")
	ErrSkipped  = errors.New("skipped")
	ErrAuth     = errors.New("authentication failed")
	ErrDelivery = errors.New("delivery failed")
)

// Skip reasons. Each wraps ErrSkipped: the event is dropped without being an error.
var (
	ErrRecipientNotFound = fmt.Errorf("%w: recipient not found", ErrSkipped)
	ErrNoPushToken       = fmt.Errorf("%w: recipient has no push token", ErrSkipped)
	ErrNoImage           = fmt.Errorf("%w: recipient has no image", ErrSkipped)
)
