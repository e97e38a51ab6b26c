package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/sessionscope/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestConstructionError_MatchesCategory(t *testing.T) {
	cause := errors.New("disk on fire")
	err := fmt.Errorf("wrapped: %w", &domain.ConstructionError{
		TypeName: "example.com/app.Prefs",
		Cause:    domain.CauseFactoryErr,
		Err:      cause,
	})

	assert.ErrorIs(t, err, domain.ErrConstruction)
	assert.ErrorIs(t, err, cause)

	var ce *domain.ConstructionError
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, domain.CauseFactoryErr, ce.Cause)
}

func TestConstructionError_MessageNamesTypeAndCause(t *testing.T) {
	err := &domain.ConstructionError{TypeName: "example.com/app.Prefs", Cause: domain.CauseNoFactory}

	assert.Contains(t, err.Error(), "'example.com/app.Prefs'")
	assert.Contains(t, err.Error(), "no factory")
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}
