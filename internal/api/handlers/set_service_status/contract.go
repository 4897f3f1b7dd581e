package set_service_status

import (
	"context"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

type CatalogService interface {
	SetStatus(ctx context.Context, actor domain.Actor, id int64, status string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
