package transition_booking

import (
	"fmt"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("transition_booking: invalid input data: %w", domain.ErrValidation)

	// ErrTechnicianNotFound возвращается, когда назначаемый техник не найден
	ErrTechnicianNotFound = fmt.Errorf("transition_booking: technician not found: %w", domain.ErrValidation)

	// ErrInvalidTechnician возвращается, когда пользователь не является активным техником
	ErrInvalidTechnician = fmt.Errorf("transition_booking: user is not an active technician: %w", domain.ErrValidation)

	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = fmt.Errorf("transition_booking: booking not found: %w", domain.ErrNotFound)

	// ErrConflict возвращается, когда бронирование изменено параллельным запросом
	ErrConflict = fmt.Errorf("transition_booking: concurrent modification: %w", domain.ErrConflict)

	// ErrInternal возвращается при сбое хранилища
	ErrInternal = fmt.Errorf("transition_booking: internal error: %w", domain.ErrStoreUnavailable)
)
