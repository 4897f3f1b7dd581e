package models

import (
	"time"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

// CreateServiceRequest запрос на создание услуги
type CreateServiceRequest struct {
	Actor         domain.Actor `json:"-"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Price         int64        `json:"price"` // в минимальных единицах валюты
	DurationHours int          `json:"durationHours"`
	ImageRefs     []string     `json:"imageRefs,omitempty"`
	ShowOnHome    bool         `json:"showOnHome"`
}

// ToDomain конвертирует запрос в domain модель активной услуги
func (r *CreateServiceRequest) ToDomain() *domain.Service {
	return &domain.Service{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		DurationHours: r.DurationHours,
		Status:        domain.ServiceActive,
		ImageRefs:     r.ImageRefs,
		ShowOnHome:    r.ShowOnHome,
	}
}

// ServiceResponse ответ с данными услуги
type ServiceResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         int64     `json:"price"`
	DurationHours int       `json:"durationHours"`
	Status        string    `json:"status"`
	ImageRefs     []string  `json:"imageRefs"`
	ShowOnHome    bool      `json:"showOnHome"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ServiceListResponse ответ со списком услуг
type ServiceListResponse struct {
	Services []ServiceResponse `json:"services"`
}

// FromDomainService конвертирует domain модель в DTO
func FromDomainService(s *domain.Service) *ServiceResponse {
	if s == nil {
		return nil
	}

	refs := s.ImageRefs
	if refs == nil {
		refs = []string{}
	}

	return &ServiceResponse{
		ID:            s.ID,
		Name:          s.Name,
		Description:   s.Description,
		Price:         s.Price,
		DurationHours: s.DurationHours,
		Status:        string(s.Status),
		ImageRefs:     refs,
		ShowOnHome:    s.ShowOnHome,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// FromDomainServiceList конвертирует список услуг в DTO
func FromDomainServiceList(services []*domain.Service) *ServiceListResponse {
	resp := &ServiceListResponse{Services: make([]ServiceResponse, 0, len(services))}
	for _, s := range services {
		resp.Services = append(resp.Services, *FromDomainService(s))
	}
	return resp
}
