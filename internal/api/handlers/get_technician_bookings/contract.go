package get_technician_bookings

import (
	"context"

	"github.com/m04kA/septic-booking-service/internal/service/bookings/models"
)

type BookingService interface {
	GetTechnicianBookings(ctx context.Context, req *models.GetTechnicianBookingsRequest) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
