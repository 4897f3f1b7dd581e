package get_available_slots

import (
	"context"
	"fmt"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

// UseCase use case для получения доступных слотов для бронирования.
// Только читает хранилище, поэтому безопасен для предпросмотра в UI.
type UseCase struct {
	bookingRepo  BookingRepository
	calendar     domain.Calendar
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	calendar domain.Calendar,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		calendar:     calendar,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// SetTimeProvider подменяет источник времени
func (uc *UseCase) SetTimeProvider(tp TimeProvider) {
	uc.timeProvider = tp
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	date := domain.DateOnly(req.Date)
	uc.logger.Info("GetAvailableSlots: date=%s", date.Format(domain.DateFormat))

	// 2. Текущее время в часовом поясе запрошенной даты
	now := uc.timeProvider.Now().In(date.Location())

	// 3. Прошедшая дата или дата за горизонтом: хранилище не нужно
	if !uc.calendar.IsDateBookable(date, now) {
		uc.logger.Info("GetAvailableSlots: date=%s is not bookable", date.Format(domain.DateFormat))
		return &Response{
			Date:   date,
			Labels: []domain.SlotLabel{},
			Slots:  []Slot{},
		}, nil
	}

	// 4. Бронирования, занимающие слоты на эту дату
	bookings, err := uc.bookingRepo.ListActiveByDate(ctx, date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	// 5. Занятость по шаблону
	availability := uc.calendar.Availability(date, now, bookings)

	labels := make([]domain.SlotLabel, 0, len(availability))
	slots := make([]Slot, 0, len(availability))
	for i := range availability {
		slot := &availability[i]
		slots = append(slots, Slot{
			Label:     slot.Label,
			Available: slot.Available(),
			Taken:     slot.Taken,
			Capacity:  slot.Capacity,
		})
		if !slot.IsFull() {
			labels = append(labels, slot.Label)
		}
	}

	uc.logger.Info("GetAvailableSlots: %d of %d slots available on %s",
		len(labels), len(slots), date.Format(domain.DateFormat))

	return &Response{
		Date:   date,
		Labels: labels,
		Slots:  slots,
	}, nil
}
