package get_available_slots

import (
	"net/http"
	"time"

	"github.com/m04kA/septic-booking-service/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/septic-booking-service/internal/usecase/get_available_slots"
)

const (
	msgMissingDate = "не указана дата"
	msgInvalidDate = "некорректный формат даты, ожидается YYYY-MM-DD"
)

type Handler struct {
	useCase  GetAvailableSlotsUseCase
	location *time.Location
	logger   Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, location *time.Location, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		location: location,
		logger:   logger,
	}
}

// Handle GET /api/v1/slots?date=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := handlers.ParseDate(dateStr, h.location)
	if err != nil {
		h.logger.Warn("GET /slots - Invalid date %q: %v", dateStr, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{Date: date})
	if err != nil {
		h.logger.Error("GET /slots - Failed to get available slots: date=%s, error=%v", dateStr, err)
		handlers.RespondDomainError(w, err, msgInvalidDate)
		return
	}

	h.logger.Info("GET /slots - Available slots retrieved: date=%s, available=%d", dateStr, len(result.Labels))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
