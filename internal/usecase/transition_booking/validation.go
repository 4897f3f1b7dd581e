package transition_booking

import (
	"fmt"
	"strings"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

// validateRequest проверяет запрос и возвращает целевой статус
func validateRequest(req *Request) (domain.BookingStatus, error) {
	if req == nil {
		return "", fmt.Errorf("%w: request is required", ErrInvalidInput)
	}

	if req.BookingID <= 0 {
		return "", fmt.Errorf("%w: bookingId must be positive", ErrInvalidInput)
	}

	if !req.Actor.Role.IsValid() || req.Actor.ID <= 0 {
		return "", fmt.Errorf("%w: actor is required", ErrInvalidInput)
	}

	target := normalizeTarget(req.Target)
	if !target.IsValid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Target)
	}

	return target, nil
}

// validateTechnician проверяет учётную запись назначаемого техника
func validateTechnician(user *domain.User) error {
	if user.Role != domain.RoleTechnician || !user.IsActive {
		return ErrInvalidTechnician
	}
	return nil
}

func normalizeTarget(raw string) domain.BookingStatus {
	return domain.BookingStatus(strings.ToLower(strings.TrimSpace(raw)))
}
