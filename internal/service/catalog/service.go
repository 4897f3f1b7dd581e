package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/septic-booking-service/internal/domain"
	"github.com/m04kA/septic-booking-service/internal/service/catalog/models"
)

// Service сервис каталога услуг
type Service struct {
	serviceRepo ServiceRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса каталога
func NewService(serviceRepo ServiceRepository, logger Logger) *Service {
	return &Service{
		serviceRepo: serviceRepo,
		logger:      logger,
	}
}

// Create создает новую активную услугу.
// Доступно только менеджеру.
func (s *Service) Create(ctx context.Context, req *models.CreateServiceRequest) (*models.ServiceResponse, error) {
	s.logger.Info("Create: creating service %q by actor=%d(%s)", req.Name, req.Actor.ID, req.Actor.Role)

	if req.Actor.Role != domain.RoleManager {
		s.logger.Warn("Create: access denied for actor=%d(%s)", req.Actor.ID, req.Actor.Role)
		return nil, ErrAccessDenied
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := validateService(req); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	created, err := s.serviceRepo.Create(ctx, req.ToDomain())
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: successfully created service id=%d", created.ID)
	return models.FromDomainService(created), nil
}

// GetByID получает услугу по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.ServiceResponse, error) {
	svc, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("GetByID: service id=%d not found", id)
			return nil, ErrServiceNotFound
		}
		s.logger.Error("GetByID: repository error for service id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainService(svc), nil
}

// List возвращает услуги каталога; onlyActive скрывает снятые с продажи
func (s *Service) List(ctx context.Context, onlyActive bool) (*models.ServiceListResponse, error) {
	services, err := s.serviceRepo.List(ctx, onlyActive)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainServiceList(services), nil
}

// SetStatus снимает услугу с продажи или возвращает её.
// Существующие бронирования не меняются: цена и длительность в них зафиксированы.
func (s *Service) SetStatus(ctx context.Context, actor domain.Actor, id int64, status string) error {
	s.logger.Info("SetStatus: service id=%d -> %s by actor=%d(%s)", id, status, actor.ID, actor.Role)

	if actor.Role != domain.RoleManager {
		s.logger.Warn("SetStatus: access denied for actor=%d(%s)", actor.ID, actor.Role)
		return ErrAccessDenied
	}

	st := domain.ServiceStatus(status)
	if st != domain.ServiceActive && st != domain.ServiceInactive {
		return fmt.Errorf("%w: unknown service status %q", ErrInvalidInput, status)
	}

	if err := s.serviceRepo.UpdateStatus(ctx, id, st); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("SetStatus: service id=%d not found", id)
			return ErrServiceNotFound
		}
		s.logger.Error("SetStatus: repository error for service id=%d: %v", id, err)
		return fmt.Errorf("%w: SetStatus - repository error: %v", ErrInternal, err)
	}

	return nil
}

// validateService проверяет данные услуги
func validateService(req *models.CreateServiceRequest) error {
	if req.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(req.Name) > domain.MaxServiceNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidInput, domain.MaxServiceNameLength)
	}
	if req.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if req.DurationHours < domain.MinServiceDurationHours {
		return fmt.Errorf("%w: durationHours must be at least %d", ErrInvalidInput, domain.MinServiceDurationHours)
	}
	for _, ref := range req.ImageRefs {
		if strings.TrimSpace(ref) == "" {
			return fmt.Errorf("%w: image reference must not be empty", ErrInvalidInput)
		}
	}
	return nil
}
