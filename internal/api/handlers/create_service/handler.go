package create_service

import (
	"errors"
	"net/http"

	"github.com/m04kA/septic-booking-service/internal/api/handlers"
	"github.com/m04kA/septic-booking-service/internal/api/middleware"
	"github.com/m04kA/septic-booking-service/internal/service/catalog"
	"github.com/m04kA/septic-booking-service/internal/service/catalog/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingActor       = "отсутствует пользователь"
	msgForbidden          = "доступ запрещен"
	msgInvalidData        = "некорректные данные услуги"
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

// Handle POST /api/v1/services
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /services - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}

	var req models.CreateServiceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /services - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.Actor = actor

	// Сервис сам проверит права менеджера
	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrAccessDenied):
			h.logger.Warn("POST /services - Access denied: user_id=%d, role=%s", actor.ID, actor.Role)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, catalog.ErrInvalidInput):
			h.logger.Warn("POST /services - Invalid data: %v", err)
			handlers.RespondBadRequest(w, msgInvalidData)

		default:
			h.logger.Error("POST /services - Failed to create service: error=%v", err)
			handlers.RespondDomainError(w, err, msgInvalidData)
		}
		return
	}

	h.logger.Info("POST /services - Service created successfully: service_id=%d, user_id=%d", result.ID, actor.ID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
