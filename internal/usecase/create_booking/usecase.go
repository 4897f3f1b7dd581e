package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/septic-booking-service/internal/domain"
	"github.com/m04kA/septic-booking-service/internal/integrations/userservice"
	"github.com/m04kA/septic-booking-service/pkg/slotlock"
	"github.com/m04kA/septic-booking-service/pkg/txmanager"
)

// lockTimeoutCountBudget время на проверку занятости после таймаута блокировки
const lockTimeoutCountBudget = 2 * time.Second

// UseCase use case для создания бронирования (admission)
type UseCase struct {
	bookingRepo  BookingRepository
	serviceRepo  ServiceRepository
	userClient   UserServiceClient
	txManager    TransactionManager
	locker       SlotLocker
	calendar     domain.Calendar
	metrics      MetricsRecorder
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case.
// metrics может быть nil, если метрики выключены.
func NewUseCase(
	bookingRepo BookingRepository,
	serviceRepo ServiceRepository,
	userClient UserServiceClient,
	txManager TransactionManager,
	locker SlotLocker,
	calendar domain.Calendar,
	metrics MetricsRecorder,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		serviceRepo:  serviceRepo,
		userClient:   userClient,
		txManager:    txManager,
		locker:       locker,
		calendar:     calendar,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// SetTimeProvider подменяет источник времени
func (uc *UseCase) SetTimeProvider(tp TimeProvider) {
	uc.timeProvider = tp
}

// Execute выполняет use case создания бронирования.
// Доступность слота повторно проверяется под блокировкой слота внутри транзакции,
// поэтому из N одновременных запросов на слот ёмкостью 1 успешен ровно один.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*domain.Booking, error) {
	result, err := uc.execute(ctx, req)
	uc.observe(err)
	return result, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*domain.Booking, error) {
	// 1. Валидация входных данных
	label, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	date := domain.DateOnly(req.Date)
	uc.logger.Info("CreateBooking: actor=%d(%s), customer=%d, service=%d, date=%s, time=%s",
		req.Actor.ID, req.Actor.Role, req.CustomerID, req.ServiceID, date.Format(domain.DateFormat), label)

	// 2. Права участника
	if err := validateActor(req.Actor, req.CustomerID); err != nil {
		uc.logger.Warn("CreateBooking: actor=%d(%s) may not book for customer=%d",
			req.Actor.ID, req.Actor.Role, req.CustomerID)
		return nil, err
	}

	// 3. Дата и слот по календарю
	now := uc.timeProvider.Now().In(date.Location())
	if err := validateSlot(uc.calendar, date, label, now); err != nil {
		uc.logger.Warn("CreateBooking: slot validation failed: %v", err)
		return nil, err
	}

	// 4. Услуга
	service, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive() {
		uc.logger.Warn("CreateBooking: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceInactive
	}

	// 5. Клиент. Недоступность UserService не блокирует бронирование
	customer, err := uc.userClient.GetUserWithGracefulDegradation(ctx, req.CustomerID)
	switch {
	case err == nil:
		if err := validateCustomer(customer); err != nil {
			uc.logger.Warn("CreateBooking: user id=%d is not an active customer (role=%s)", req.CustomerID, customer.Role)
			return nil, err
		}
	case userservice.IsNotFound(err):
		uc.logger.Warn("CreateBooking: customer id=%d not found", req.CustomerID)
		return nil, ErrCustomerNotFound
	case errors.Is(err, userservice.ErrServiceDegraded):
		uc.logger.Warn("CreateBooking: skipping customer check for id=%d: %v", req.CustomerID, err)
	default:
		uc.logger.Error("CreateBooking: failed to get customer id=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: failed to get customer: %v", ErrInternal, err)
	}

	// 6. Блокировка слота
	lockKey := slotlock.Key(date, label.String())
	unlock, err := uc.locker.Lock(ctx, lockKey)
	if err != nil {
		if errors.Is(err, slotlock.ErrLockTimeout) {
			uc.logger.Warn("CreateBooking: timed out waiting for slot lock %s", lockKey)
			return nil, uc.lockTimeoutError(ctx, date, label, err)
		}
		uc.logger.Error("CreateBooking: failed to lock slot %s: %v", lockKey, err)
		return nil, fmt.Errorf("%w: failed to lock slot: %v", ErrInternal, err)
	}
	defer unlock()

	var result *domain.Booking

	// 7. Проверка ёмкости и вставка в одной транзакции
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := uc.bookingRepo.LockSlot(txCtx, date, label); err != nil {
			uc.logger.Error("CreateBooking: failed to lock slot in store: %v", err)
			return storeError("lock slot", err)
		}

		taken, err := uc.bookingRepo.CountActiveInSlot(txCtx, date, label)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to count bookings: %v", err)
			return storeError("count bookings", err)
		}

		if taken >= uc.calendar.Capacity {
			uc.logger.Warn("CreateBooking: slot %s %s not available, %d/%d spots taken",
				date.Format(domain.DateFormat), label, taken, uc.calendar.Capacity)
			return ErrSlotNotAvailable
		}

		// Снимок цены и длительности на момент бронирования
		booking := &domain.Booking{
			CustomerID:    req.CustomerID,
			ServiceID:     service.ID,
			BookingDate:   date,
			SlotTime:      label,
			Status:        domain.StatusPending,
			ServiceName:   service.Name,
			Price:         service.Price,
			DurationHours: service.DurationHours,
			PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
			Notes:         req.Notes,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return storeError("create booking", err)
		}

		change := domain.NewCreationChange(created, req.Actor)
		if err := uc.bookingRepo.AppendHistory(txCtx, &change); err != nil {
			uc.logger.Error("CreateBooking: failed to append history for booking id=%d: %v", created.ID, err)
			return storeError("append history", err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, classifyTxError(err)
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d", result.ID)
	return result, nil
}

// lockTimeoutError различает занятый слот и слот, который просто долго держат.
// Если мест уже нет, ответ такой же, как при проверке под блокировкой.
func (uc *UseCase) lockTimeoutError(ctx context.Context, date time.Time, label domain.SlotLabel, lockErr error) error {
	countCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lockTimeoutCountBudget)
	defer cancel()

	taken, err := uc.bookingRepo.CountActiveInSlot(countCtx, date, label)
	if err != nil {
		uc.logger.Warn("CreateBooking: failed to count bookings after lock timeout: %v", err)
		return fmt.Errorf("%w: %v", ErrSlotBusy, lockErr)
	}
	if taken >= uc.calendar.Capacity {
		uc.logger.Warn("CreateBooking: slot %s %s not available, %d/%d spots taken",
			date.Format(domain.DateFormat), label, taken, uc.calendar.Capacity)
		return ErrSlotNotAvailable
	}
	return fmt.Errorf("%w: %v", ErrSlotBusy, lockErr)
}

func (uc *UseCase) observe(err error) {
	if uc.metrics == nil {
		return
	}

	switch {
	case err == nil:
		uc.metrics.ObserveAdmission(ResultCreated)
	case errors.Is(err, domain.ErrSlotUnavailable):
		uc.metrics.ObserveAdmission(ResultSlotUnavailable)
	case errors.Is(err, domain.ErrConflict):
		uc.metrics.ObserveAdmission(ResultConflict)
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrForbidden):
		uc.metrics.ObserveAdmission(ResultRejected)
	default:
		uc.metrics.ObserveAdmission(ResultError)
	}
}

// storeError переводит ошибку хранилища в ошибку use case
func storeError(op string, err error) error {
	if txmanager.IsSerializationFailure(err) || errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("%w: %s: %v", ErrConflict, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}

// classifyTxError ошибки начала/фиксации транзакции приводятся к таксономии use case
func classifyTxError(err error) error {
	switch {
	case errors.Is(err, ErrSlotNotAvailable), errors.Is(err, ErrConflict), errors.Is(err, ErrInternal):
		return err
	case errors.Is(err, txmanager.ErrSerializationFailure):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
