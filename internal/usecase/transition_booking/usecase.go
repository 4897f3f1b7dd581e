package transition_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/septic-booking-service/internal/domain"
	"github.com/m04kA/septic-booking-service/internal/integrations/userservice"
	"github.com/m04kA/septic-booking-service/pkg/txmanager"
)

// UseCase use case для перехода бронирования между статусами
type UseCase struct {
	bookingRepo BookingRepository
	userClient  UserServiceClient
	txManager   TransactionManager
	metrics     MetricsRecorder
	logger      Logger
}

// NewUseCase создает новый экземпляр use case.
// metrics может быть nil, если метрики выключены.
func NewUseCase(
	bookingRepo BookingRepository,
	userClient UserServiceClient,
	txManager TransactionManager,
	metrics MetricsRecorder,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		userClient:  userClient,
		txManager:   txManager,
		metrics:     metrics,
		logger:      logger,
	}
}

// Execute проверяет и применяет переход статуса.
// Чтение, проверка версии, запись статуса и журнала выполняются в одной транзакции.
// При любой ошибке бронирование остаётся без изменений.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*domain.Booking, error) {
	var from domain.BookingStatus
	result, err := uc.execute(ctx, req, &from)
	uc.observe(from, req, err)
	return result, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request, from *domain.BookingStatus) (*domain.Booking, error) {
	target, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("TransitionBooking: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("TransitionBooking: booking id=%d -> %s by actor=%d(%s)",
		req.BookingID, target, req.Actor.ID, req.Actor.Role)

	// Техника проверяем до транзакции: сетевой вызов не должен удерживать блокировку строки
	if req.TechnicianID != nil && req.Actor.Role.IsBackOffice() {
		if err := uc.checkTechnician(ctx, *req.TechnicianID); err != nil {
			return nil, err
		}
	}

	var result *domain.Booking

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		current, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				uc.logger.Warn("TransitionBooking: booking id=%d not found", req.BookingID)
				return ErrBookingNotFound
			}
			uc.logger.Error("TransitionBooking: failed to get booking id=%d: %v", req.BookingID, err)
			return storeError("get booking", err)
		}
		*from = current.Status

		update, err := domain.PlanTransition(current, target, req.Actor, req.payload())
		if err != nil {
			uc.logger.Warn("TransitionBooking: booking id=%d %s -> %s rejected: %v",
				req.BookingID, current.Status, target, err)
			return err
		}

		updated, err := uc.bookingRepo.ApplyLifecycle(txCtx, update)
		if err != nil {
			uc.logger.Error("TransitionBooking: failed to apply transition for booking id=%d: %v", req.BookingID, err)
			return storeError("apply transition", err)
		}

		if err := uc.bookingRepo.AppendHistory(txCtx, &update.Change); err != nil {
			uc.logger.Error("TransitionBooking: failed to append history for booking id=%d: %v", req.BookingID, err)
			return storeError("append history", err)
		}

		result = updated
		return nil
	})
	if err != nil {
		return nil, classifyTxError(err)
	}

	uc.logger.Info("TransitionBooking: booking id=%d moved %s -> %s (version=%d)",
		result.ID, *from, result.Status, result.Version)
	return result, nil
}

// checkTechnician проверяет, что назначаемый пользователь является активным техником.
// При недоступности UserService назначение принимается без проверки.
func (uc *UseCase) checkTechnician(ctx context.Context, technicianID int64) error {
	if technicianID <= 0 {
		return fmt.Errorf("%w: technicianId must be positive", ErrInvalidInput)
	}

	user, err := uc.userClient.GetUserWithGracefulDegradation(ctx, technicianID)
	switch {
	case err == nil:
		if err := validateTechnician(user); err != nil {
			uc.logger.Warn("TransitionBooking: user id=%d is not an active technician (role=%s)", technicianID, user.Role)
			return err
		}
		return nil
	case userservice.IsNotFound(err):
		uc.logger.Warn("TransitionBooking: technician id=%d not found", technicianID)
		return ErrTechnicianNotFound
	case errors.Is(err, userservice.ErrServiceDegraded):
		uc.logger.Warn("TransitionBooking: skipping technician check for id=%d: %v", technicianID, err)
		return nil
	default:
		uc.logger.Error("TransitionBooking: failed to get technician id=%d: %v", technicianID, err)
		return fmt.Errorf("%w: failed to get technician: %v", ErrInternal, err)
	}
}

func (uc *UseCase) observe(from domain.BookingStatus, req *Request, err error) {
	if uc.metrics == nil || req == nil {
		return
	}

	fromLabel := string(from)
	if fromLabel == "" {
		fromLabel = "unknown"
	}

	// Метка целевого статуса только из фиксированного набора
	toLabel := LabelInvalid
	if target := normalizeTarget(req.Target); target.IsValid() {
		toLabel = string(target)
	}

	var result string
	switch {
	case err == nil:
		result = ResultApplied
	case errors.Is(err, domain.ErrConflict):
		result = ResultConflict
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrNotFound):
		result = ResultRejected
	default:
		result = ResultError
	}

	uc.metrics.ObserveTransition(fromLabel, toLabel, result)
}

// storeError переводит ошибку хранилища в ошибку use case
func storeError(op string, err error) error {
	if txmanager.IsSerializationFailure(err) || errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("%w: %s: %v", ErrConflict, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}

// classifyTxError ошибки, не относящиеся к таксономии, считаются сбоем хранилища
func classifyTxError(err error) error {
	switch {
	case errors.Is(err, txmanager.ErrSerializationFailure) && !errors.Is(err, ErrConflict):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrStoreUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
