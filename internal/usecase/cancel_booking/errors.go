package cancel_booking

import (
	"fmt"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("cancel_booking: invalid input data: %w", domain.ErrValidation)

	// ErrCannotCancel возвращается, когда бронирование уже нельзя отменить
	ErrCannotCancel = fmt.Errorf("cancel_booking: booking cannot be cancelled: %w", domain.ErrInvalidTransition)
)
