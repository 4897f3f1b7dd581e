package cancel_booking

import (
	"context"

	"github.com/m04kA/septic-booking-service/internal/domain"
	"github.com/m04kA/septic-booking-service/internal/usecase/transition_booking"
)

// Transitioner применяет переход статуса бронирования
type Transitioner interface {
	Execute(ctx context.Context, req *transition_booking.Request) (*domain.Booking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
}
