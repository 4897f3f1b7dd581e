package cancel_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/septic-booking-service/internal/domain"
	"github.com/m04kA/septic-booking-service/internal/usecase/transition_booking"
)

// Request модель запроса на отмену бронирования клиентом
type Request struct {
	Actor     domain.Actor
	BookingID int64
	Reason    *string
}

// UseCase отмена бронирования клиентом.
// Отменить можно только своё бронирование и только в статусе pending.
type UseCase struct {
	transitioner Transitioner
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(transitioner Transitioner, logger Logger) *UseCase {
	return &UseCase{
		transitioner: transitioner,
		logger:       logger,
	}
}

// Execute отменяет бронирование
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*domain.Booking, error) {
	if req == nil || req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: bookingId must be positive", ErrInvalidInput)
	}
	if req.Reason != nil && len(*req.Reason) > domain.MaxReasonLength {
		return nil, fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxReasonLength)
	}

	uc.logger.Info("CancelBooking: booking id=%d by actor=%d(%s)", req.BookingID, req.Actor.ID, req.Actor.Role)

	booking, err := uc.transitioner.Execute(ctx, &transition_booking.Request{
		Actor:     req.Actor,
		BookingID: req.BookingID,
		Target:    string(domain.StatusCancelled),
		Reason:    req.Reason,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			uc.logger.Warn("CancelBooking: booking id=%d cannot be cancelled: %v", req.BookingID, err)
			return nil, fmt.Errorf("%w: %v", ErrCannotCancel, err)
		}
		return nil, err
	}

	uc.logger.Info("CancelBooking: booking id=%d cancelled, slot released", booking.ID)
	return booking, nil
}
