package domain

import "time"

// ServiceStatus статус услуги в каталоге
type ServiceStatus string

const (
	ServiceActive   ServiceStatus = "active"
	ServiceInactive ServiceStatus = "inactive"
)

// Service represents a bookable septic service offering
type Service struct {
	ID            int64
	Name          string
	Description   string
	Price         int64 // в минимальных единицах валюты
	DurationHours int
	Status        ServiceStatus
	ImageRefs     []string
	ShowOnHome    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsActive returns true if the service can be booked
func (s *Service) IsActive() bool {
	return s.Status == ServiceActive
}
