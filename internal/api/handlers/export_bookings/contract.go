package export_bookings

import (
	"context"

	"github.com/m04kA/septic-booking-service/internal/service/bookings/models"
)

type ExportService interface {
	ExportXLSX(ctx context.Context, req *models.ListBookingsRequest) ([]byte, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
