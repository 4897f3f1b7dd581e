package transition_booking

import (
	"context"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ApplyLifecycle(ctx context.Context, upd *domain.LifecycleUpdate) (*domain.Booking, error)
	AppendHistory(ctx context.Context, change *domain.StatusChange) error
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	GetUserWithGracefulDegradation(ctx context.Context, userID int64) (*domain.User, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder учёт переходов статуса
type MetricsRecorder interface {
	ObserveTransition(from, to, result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
