package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkipReasons_WrapErrSkipped(t *testing.T) {
	for _, err := range []error{ErrRecipientNotFound, ErrNoPushToken, ErrNoImage} {
		wrapped := fmt.Errorf("user u1: %w", err)
		assert.True(t, errors.Is(wrapped, ErrSkipped), err.Error())
		assert.True(t, errors.Is(wrapped, err))
	}
	assert.False(t, errors.Is(ErrAuth, ErrSkipped))
	assert.False(t, errors.Is(ErrDelivery, ErrSkipped))
}
