package cancel_booking

import (
	"errors"
	"io"
	"net/http"

	"github.com/m04kA/septic-booking-service/internal/api/handlers"
	"github.com/m04kA/septic-booking-service/internal/api/middleware"
	"github.com/m04kA/septic-booking-service/internal/domain"
	"github.com/m04kA/septic-booking-service/internal/service/bookings/models"
	cancelBooking "github.com/m04kA/septic-booking-service/internal/usecase/cancel_booking"
	transitionBooking "github.com/m04kA/septic-booking-service/internal/usecase/transition_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingActor       = "отсутствует пользователь"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgCannotCancel       = "бронирование не может быть отменено"
	msgConflict           = "бронирование изменено другим запросом, повторите попытку"
	msgInvalidInput       = "некорректные данные отмены"
)

type Handler struct {
	useCase CancelBookingUseCase
	logger  Logger
}

func NewHandler(useCase CancelBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/cancel - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PATCH /bookings/{id}/cancel - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}

	var req CancelBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("PATCH /bookings/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	booking, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(actor, bookingID))
	if err != nil {
		var msg string
		switch {
		case errors.Is(err, transitionBooking.ErrBookingNotFound):
			msg = msgNotFound
		case errors.Is(err, domain.ErrForbidden):
			msg = msgForbidden
		case errors.Is(err, cancelBooking.ErrCannotCancel):
			msg = msgCannotCancel
		case errors.Is(err, domain.ErrConflict):
			msg = msgConflict
		default:
			msg = msgInvalidInput
		}

		if handlers.StatusFromError(err) >= http.StatusInternalServerError {
			h.logger.Error("PATCH /bookings/{id}/cancel - Failed to cancel booking: booking_id=%d, error=%v", bookingID, err)
		} else {
			h.logger.Warn("PATCH /bookings/{id}/cancel - Cancel rejected: booking_id=%d, user_id=%d, error=%v",
				bookingID, actor.ID, err)
		}
		handlers.RespondDomainError(w, err, msg)
		return
	}

	h.logger.Info("PATCH /bookings/{id}/cancel - Booking cancelled successfully: booking_id=%d, user_id=%d",
		bookingID, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainBooking(booking))
}
