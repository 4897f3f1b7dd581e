package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	LockSlot(ctx context.Context, date time.Time, label domain.SlotLabel) error
	CountActiveInSlot(ctx context.Context, date time.Time, label domain.SlotLabel) (int, error)
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	AppendHistory(ctx context.Context, change *domain.StatusChange) error
}

// ServiceRepository интерфейс каталога услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	GetUserWithGracefulDegradation(ctx context.Context, userID int64) (*domain.User, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// SlotLocker взаимное исключение по слоту между запросами (и экземплярами сервиса)
type SlotLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// MetricsRecorder учёт исходов создания бронирований
type MetricsRecorder interface {
	ObserveAdmission(result string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
