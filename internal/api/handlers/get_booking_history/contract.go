package get_booking_history

import (
	"context"

	"github.com/m04kA/septic-booking-service/internal/domain"
	"github.com/m04kA/septic-booking-service/internal/service/bookings/models"
)

type BookingService interface {
	GetHistory(ctx context.Context, id int64, actor domain.Actor) (*models.HistoryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
