package lifecycle

import (
	"strings"

	"github.com/civicdesk/petition-service/internal/domain"
	apperrors "github.com/civicdesk/petition-service/pkg/util"
)

// ValidateTransition checks a requested status change. The status graph is
// deliberately permissive: the single rule is that moving to rejected
// requires a non-empty reason. Unknown target statuses are refused.
func ValidateTransition(current, requested domain.PetitionStatus, rejectionReason string) error {
	if !domain.KnownStatus(requested) {
		return apperrors.NewValidationError("unknown status", map[string]any{
			"status": string(requested),
		})
	}
	if requested == domain.PetitionStatusRejected && strings.TrimSpace(rejectionReason) == "" {
		return apperrors.NewInvalidTransition("rejection reason is required when rejecting a petition")
	}
	return nil
}
