package create_booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/septic-booking-service/internal/api/handlers"
	"github.com/m04kA/septic-booking-service/internal/api/middleware"
	"github.com/m04kA/septic-booking-service/internal/service/bookings/models"
	createBooking "github.com/m04kA/septic-booking-service/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidDate         = "некорректный формат даты бронирования, ожидается YYYY-MM-DD"
	msgMissingActor        = "отсутствует пользователь"
	msgSlotNotAvailable    = "выбранный временной слот недоступен"
	msgSlotBusy            = "слот бронируется другим запросом, повторите попытку"
	msgServiceNotFound     = "услуга не найдена"
	msgServiceInactive     = "услуга недоступна для бронирования"
	msgCustomerNotFound    = "клиент не найден"
	msgInvalidCustomer     = "пользователь не является активным клиентом"
	msgInvalidBookingDate  = "дата бронирования в прошлом"
	msgDateTooFar          = "дата бронирования слишком далеко в будущем"
	msgInvalidTimeSlot     = "некорректный временной слот"
	msgTooLateToBook       = "слишком поздно для бронирования этого слота"
	msgUnsupportedPayment  = "неподдерживаемый способ оплаты"
	msgForbidden           = "нельзя создать бронирование для другого клиента"
	msgInvalidBookingInput = "некорректные данные бронирования"
)

type Handler struct {
	useCase  CreateBookingUseCase
	location *time.Location
	logger   Logger
}

func NewHandler(useCase CreateBookingUseCase, location *time.Location, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		location: location,
		logger:   logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(actor, h.location)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse date %q: %v", req.Date, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		h.respondError(w, err, useCaseReq)
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, customer_id=%d, slot=%s %s",
		result.ID, result.CustomerID, req.Date, result.SlotTime)
	handlers.RespondJSON(w, http.StatusCreated, models.FromDomainBooking(result))
}

func (h *Handler) respondError(w http.ResponseWriter, err error, req *createBooking.Request) {
	var msg string
	switch {
	case errors.Is(err, createBooking.ErrSlotNotAvailable):
		msg = msgSlotNotAvailable
	case errors.Is(err, createBooking.ErrSlotBusy):
		msg = msgSlotBusy
	case errors.Is(err, createBooking.ErrServiceNotFound):
		msg = msgServiceNotFound
	case errors.Is(err, createBooking.ErrServiceInactive):
		msg = msgServiceInactive
	case errors.Is(err, createBooking.ErrCustomerNotFound):
		msg = msgCustomerNotFound
	case errors.Is(err, createBooking.ErrInvalidCustomer):
		msg = msgInvalidCustomer
	case errors.Is(err, createBooking.ErrInvalidDate):
		msg = msgInvalidBookingDate
	case errors.Is(err, createBooking.ErrDateTooFarInFuture):
		msg = msgDateTooFar
	case errors.Is(err, createBooking.ErrInvalidTimeSlot):
		msg = msgInvalidTimeSlot
	case errors.Is(err, createBooking.ErrTooLateToBook):
		msg = msgTooLateToBook
	case errors.Is(err, createBooking.ErrUnsupportedPaymentMethod):
		msg = msgUnsupportedPayment
	case errors.Is(err, createBooking.ErrAccessDenied):
		msg = msgForbidden
	default:
		msg = msgInvalidBookingInput
	}

	if handlers.StatusFromError(err) >= http.StatusInternalServerError {
		h.logger.Error("POST /bookings - Failed to create booking: customer_id=%d, service_id=%d, error=%v",
			req.CustomerID, req.ServiceID, err)
	} else {
		h.logger.Warn("POST /bookings - Booking rejected: customer_id=%d, service_id=%d, slot=%s, error=%v",
			req.CustomerID, req.ServiceID, req.SlotTime, err)
	}
	handlers.RespondDomainError(w, err, msg)
}
