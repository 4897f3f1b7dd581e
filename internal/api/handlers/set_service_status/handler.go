package set_service_status

import (
	"errors"
	"net/http"

	"github.com/m04kA/septic-booking-service/internal/api/handlers"
	"github.com/m04kA/septic-booking-service/internal/api/middleware"
	"github.com/m04kA/septic-booking-service/internal/service/catalog"
)

const (
	msgInvalidServiceID   = "некорректный ID услуги"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingActor       = "отсутствует пользователь"
	msgNotFound           = "услуга не найдена"
	msgForbidden          = "доступ запрещен"
	msgInvalidStatus      = "некорректный статус услуги"
)

type Handler struct {
	service CatalogService
	logger  Logger
}

func NewHandler(service CatalogService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/services/{serviceId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	serviceID, err := handlers.PathInt64(r, "serviceId")
	if err != nil {
		h.logger.Warn("PATCH /services/{id}/status - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PATCH /services/{id}/status - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}

	var req SetStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /services/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := h.service.SetStatus(r.Context(), actor, serviceID, req.Status); err != nil {
		switch {
		case errors.Is(err, catalog.ErrServiceNotFound):
			h.logger.Warn("PATCH /services/{id}/status - Service not found: service_id=%d", serviceID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, catalog.ErrAccessDenied):
			h.logger.Warn("PATCH /services/{id}/status - Access denied: service_id=%d, user_id=%d", serviceID, actor.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, catalog.ErrInvalidInput):
			h.logger.Warn("PATCH /services/{id}/status - Invalid status %q", req.Status)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("PATCH /services/{id}/status - Failed to set status: service_id=%d, error=%v", serviceID, err)
			handlers.RespondDomainError(w, err, msgInvalidStatus)
		}
		return
	}

	h.logger.Info("PATCH /services/{id}/status - Status updated: service_id=%d, status=%s", serviceID, req.Status)
	handlers.RespondJSON(w, http.StatusOK, StatusResponse{ID: serviceID, Status: req.Status})
}
