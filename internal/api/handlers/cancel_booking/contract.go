package cancel_booking

import (
	"context"

	"github.com/m04kA/septic-booking-service/internal/domain"
	cancelBooking "github.com/m04kA/septic-booking-service/internal/usecase/cancel_booking"
)

type CancelBookingUseCase interface {
	Execute(ctx context.Context, req *cancelBooking.Request) (*domain.Booking, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
