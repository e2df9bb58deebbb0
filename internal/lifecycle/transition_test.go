package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/civicdesk/petition-service/internal/domain"
	apperrors "github.com/civicdesk/petition-service/pkg/util"
)

func TestRejectionRequiresReason(t *testing.T) {
	err := ValidateTransition(domain.PetitionStatusPending, domain.PetitionStatusRejected, "")
	assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))

	err = ValidateTransition(domain.PetitionStatusPending, domain.PetitionStatusRejected, "   ")
	assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))

	err = ValidateTransition(domain.PetitionStatusPending, domain.PetitionStatusRejected, "Insufficient evidence")
	assert.NoError(t, err)
}

func TestAllNonRejectionTransitionsAllowed(t *testing.T) {
	statuses := []domain.PetitionStatus{
		domain.PetitionStatusPending,
		domain.PetitionStatusInProgress,
		domain.PetitionStatusResolved,
		domain.PetitionStatusRejected,
	}
	for _, from := range statuses {
		for _, to := range statuses {
			if to == domain.PetitionStatusRejected {
				continue
			}
			assert.NoError(t, ValidateTransition(from, to, ""), "%s -> %s", from, to)
		}
	}
}

func TestUnknownStatusRefused(t *testing.T) {
	err := ValidateTransition(domain.PetitionStatusPending, domain.PetitionStatus("archived"), "")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}
