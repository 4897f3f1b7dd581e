package get_technician_bookings

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/septic-booking-service/internal/api/handlers"
	"github.com/m04kA/septic-booking-service/internal/api/middleware"
	"github.com/m04kA/septic-booking-service/internal/service/bookings"
	"github.com/m04kA/septic-booking-service/internal/service/bookings/models"
)

const (
	msgInvalidTechnicianID = "некорректный ID техника"
	msgMissingActor        = "отсутствует пользователь"
	msgInvalidParams       = "некорректные параметры запроса"
	msgForbidden           = "доступ запрещен"
)

type Handler struct {
	service  BookingService
	location *time.Location
	logger   Logger
}

func NewHandler(service BookingService, location *time.Location, logger Logger) *Handler {
	return &Handler{
		service:  service,
		location: location,
		logger:   logger,
	}
}

// Handle GET /api/v1/technicians/{technicianId}/bookings
// Query params: status, date, from, to (опционально). Назначенные технику работы, включая завершённые.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	technicianID, err := handlers.PathInt64(r, "technicianId")
	if err != nil {
		h.logger.Warn("GET /technicians/{id}/bookings - Invalid technician ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTechnicianID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /technicians/{id}/bookings - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}

	filter, err := handlers.ParseListFilter(r.URL.Query(), h.location)
	if err != nil {
		h.logger.Warn("GET /technicians/{id}/bookings - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.GetTechnicianBookings(r.Context(), &models.GetTechnicianBookingsRequest{
		Actor:        actor,
		TechnicianID: technicianID,
		ListFilter:   filter,
	})
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /technicians/{id}/bookings - Access denied: technician_id=%d, user_id=%d", technicianID, actor.ID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /technicians/{id}/bookings - Failed to get bookings: technician_id=%d, error=%v", technicianID, err)
			handlers.RespondDomainError(w, err, msgInvalidParams)
		}
		return
	}

	h.logger.Info("GET /technicians/{id}/bookings - Bookings retrieved successfully: technician_id=%d, count=%d",
		technicianID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result.Bookings)
}
