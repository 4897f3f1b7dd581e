package export_bookings

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/m04kA/septic-booking-service/internal/api/handlers"
	"github.com/m04kA/septic-booking-service/internal/api/handlers/list_bookings"
	"github.com/m04kA/septic-booking-service/internal/api/middleware"
	"github.com/m04kA/septic-booking-service/internal/service/bookings"
)

const (
	msgMissingActor  = "отсутствует пользователь"
	msgInvalidParams = "некорректные параметры запроса"
	msgForbidden     = "выгрузка доступна только менеджеру"
)

type Handler struct {
	service  ExportService
	location *time.Location
	logger   Logger
}

func NewHandler(service ExportService, location *time.Location, logger Logger) *Handler {
	return &Handler{
		service:  service,
		location: location,
		logger:   logger,
	}
}

// Handle GET /api/v1/bookings/export
// Принимает те же фильтры, что и GET /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /bookings/export - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}

	serviceReq, err := list_bookings.ToServiceRequest(actor, r.URL.Query(), h.location)
	if err != nil {
		h.logger.Warn("GET /bookings/export - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	data, err := h.service.ExportXLSX(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /bookings/export - Access denied: user_id=%d, role=%s", actor.ID, actor.Role)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /bookings/export - Failed to export bookings: user_id=%d, error=%v", actor.ID, err)
			handlers.RespondDomainError(w, err, msgInvalidParams)
		}
		return
	}

	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().In(h.location).Format("20060102_150405"))
	h.logger.Info("GET /bookings/export - Export generated: user_id=%d, bytes=%d", actor.ID, len(data))
	handlers.RespondXLSX(w, fileName, data)
}
