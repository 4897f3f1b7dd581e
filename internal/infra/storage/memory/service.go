package memory

import (
	"context"
	"sort"

	"github.com/m04kA/septic-booking-service/internal/domain"
	"github.com/m04kA/septic-booking-service/internal/infra/storage/service"
)

// ServiceRepository каталог услуг в памяти
type ServiceRepository struct {
	s *Store
}

// NewServiceRepository создает репозиторий услуг поверх хранилища
func NewServiceRepository(s *Store) *ServiceRepository {
	return &ServiceRepository{s: s}
}

func cloneService(svc *domain.Service) *domain.Service {
	c := *svc
	if svc.ImageRefs != nil {
		c.ImageRefs = append([]string(nil), svc.ImageRefs...)
	}
	return &c
}

// Create создает новую услугу
func (r *ServiceRepository) Create(ctx context.Context, svc *domain.Service) (*domain.Service, error) {
	unlock := r.s.lock(ctx)
	defer unlock()

	r.s.nextServiceID++
	now := r.s.now()
	svc.ID = r.s.nextServiceID
	svc.CreatedAt = now
	svc.UpdatedAt = now
	r.s.services[svc.ID] = cloneService(svc)

	id := svc.ID
	r.s.onRollback(ctx, func() {
		delete(r.s.services, id)
		r.s.nextServiceID--
	})

	return svc, nil
}

// GetByID получает услугу по ID
func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	unlock := r.s.lock(ctx)
	defer unlock()

	svc, ok := r.s.services[id]
	if !ok {
		return nil, service.ErrServiceNotFound
	}
	return cloneService(svc), nil
}

// List получает услуги каталога по возрастанию ID
func (r *ServiceRepository) List(ctx context.Context, onlyActive bool) ([]*domain.Service, error) {
	unlock := r.s.lock(ctx)
	defer unlock()

	result := make([]*domain.Service, 0, len(r.s.services))
	for _, svc := range r.s.services {
		if onlyActive && !svc.IsActive() {
			continue
		}
		result = append(result, cloneService(svc))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// UpdateStatus активирует или деактивирует услугу
func (r *ServiceRepository) UpdateStatus(ctx context.Context, id int64, status domain.ServiceStatus) error {
	unlock := r.s.lock(ctx)
	defer unlock()

	svc, ok := r.s.services[id]
	if !ok {
		return service.ErrServiceNotFound
	}

	previous := svc.Status
	svc.Status = status
	svc.UpdatedAt = r.s.now()
	r.s.onRollback(ctx, func() {
		svc.Status = previous
	})
	return nil
}
