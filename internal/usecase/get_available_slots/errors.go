package get_available_slots

import (
	"fmt"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("get_available_slots: invalid input data: %w", domain.ErrValidation)

	// ErrInternal возвращается при сбое хранилища
	ErrInternal = fmt.Errorf("get_available_slots: internal error: %w", domain.ErrStoreUnavailable)
)
