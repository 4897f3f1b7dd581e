package transition_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/septic-booking-service/internal/api/handlers"
	"github.com/m04kA/septic-booking-service/internal/api/middleware"
	"github.com/m04kA/septic-booking-service/internal/domain"
	"github.com/m04kA/septic-booking-service/internal/service/bookings/models"
	transitionBooking "github.com/m04kA/septic-booking-service/internal/usecase/transition_booking"
)

const (
	msgInvalidBookingID     = "некорректный ID бронирования"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingActor         = "отсутствует пользователь"
	msgNotFound             = "бронирование не найдено"
	msgForbidden            = "недостаточно прав для смены статуса"
	msgInvalidTransition    = "недопустимый переход статуса"
	msgProofRequired        = "для завершения нужен фотоотчёт"
	msgTechnicianRequired   = "не назначен техник"
	msgTechnicianNotFound   = "техник не найден"
	msgInvalidTechnician    = "пользователь не является активным техником"
	msgUnexpectedPayload    = "данные неприменимы к целевому статусу"
	msgConflict             = "бронирование изменено другим запросом, повторите попытку"
	msgInvalidTransitionReq = "некорректные данные смены статуса"
)

type Handler struct {
	useCase TransitionBookingUseCase
	logger  Logger
}

func NewHandler(useCase TransitionBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/status - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PATCH /bookings/{id}/status - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}

	var req TransitionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	booking, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(actor, bookingID))
	if err != nil {
		msg := messageFor(err)
		if handlers.StatusFromError(err) >= http.StatusInternalServerError {
			h.logger.Error("PATCH /bookings/{id}/status - Failed to change status: booking_id=%d, target=%s, error=%v",
				bookingID, req.Status, err)
		} else {
			h.logger.Warn("PATCH /bookings/{id}/status - Transition rejected: booking_id=%d, target=%s, user_id=%d, role=%s, error=%v",
				bookingID, req.Status, actor.ID, actor.Role, err)
		}
		handlers.RespondDomainError(w, err, msg)
		return
	}

	h.logger.Info("PATCH /bookings/{id}/status - Status changed: booking_id=%d, status=%s, user_id=%d",
		bookingID, booking.Status, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainBooking(booking))
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, transitionBooking.ErrBookingNotFound):
		return msgNotFound
	case errors.Is(err, transitionBooking.ErrTechnicianNotFound):
		return msgTechnicianNotFound
	case errors.Is(err, transitionBooking.ErrInvalidTechnician):
		return msgInvalidTechnician
	case errors.Is(err, domain.ErrProofRequired):
		return msgProofRequired
	case errors.Is(err, domain.ErrTechnicianRequired):
		return msgTechnicianRequired
	case errors.Is(err, domain.ErrUnexpectedPayload):
		return msgUnexpectedPayload
	case errors.Is(err, domain.ErrForbidden):
		return msgForbidden
	case errors.Is(err, domain.ErrInvalidTransition):
		return msgInvalidTransition
	case errors.Is(err, domain.ErrConflict):
		return msgConflict
	default:
		return msgInvalidTransitionReq
	}
}
