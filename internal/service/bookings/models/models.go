package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// ListFilter общие параметры фильтрации списков
type ListFilter struct {
	StartDate       *time.Time // Начало периода (опционально)
	EndDate         *time.Time // Конец периода (опционально)
	Status          *string    // Фильтр по статусу (опционально)
	IncludeInactive bool       // Включить завершённые, отменённые и отклонённые
}

// GetCustomerBookingsRequest запрос на получение бронирований клиента
type GetCustomerBookingsRequest struct {
	Actor      domain.Actor
	CustomerID int64
	ListFilter
}

// GetTechnicianBookingsRequest запрос на получение бронирований техника
type GetTechnicianBookingsRequest struct {
	Actor        domain.Actor
	TechnicianID int64
	ListFilter
}

// ListBookingsRequest запрос персонала на выборку бронирований
type ListBookingsRequest struct {
	Actor        domain.Actor
	CustomerID   *int64
	TechnicianID *int64
	ListFilter
}

// ToDomainFilter конвертирует параметры в domain фильтр
func (f ListFilter) ToDomainFilter() (domain.BookingFilter, error) {
	filter := domain.BookingFilter{
		StartDate:       f.StartDate,
		EndDate:         f.EndDate,
		IncludeInactive: f.IncludeInactive,
	}

	// Конвертируем статус если указан
	if f.Status != nil {
		status, err := ToDomainBookingStatus(*f.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID            int64    `json:"id"`
	CustomerID    int64    `json:"customerId"`
	ServiceID     int64    `json:"serviceId"`
	TechnicianID  *int64   `json:"technicianId,omitempty"`
	Date          string   `json:"date"` // "2025-10-15"
	Time          string   `json:"time"` // "09:00 AM"
	Status        string   `json:"status"`
	ServiceName   string   `json:"serviceName"`
	Price         int64    `json:"price"`
	DurationHours int      `json:"durationHours"`
	PaymentMethod string   `json:"paymentMethod"`
	Notes         *string  `json:"notes,omitempty"`
	ProofImages   []string `json:"proofImages,omitempty"`
	Version       int64    `json:"version"`

	CancellationReason *string `json:"cancellationReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// StatusChangeResponse запись журнала статусов
type StatusChangeResponse struct {
	FromStatus *string   `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	ActorID    int64     `json:"actorId"`
	ActorRole  string    `json:"actorRole"`
	Reason     *string   `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HistoryResponse журнал статусов бронирования
type HistoryResponse struct {
	BookingID int64                  `json:"bookingId"`
	Changes   []StatusChangeResponse `json:"changes"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
		ID:                 b.ID,
		CustomerID:         b.CustomerID,
		ServiceID:          b.ServiceID,
		TechnicianID:       b.TechnicianID,
		Date:               b.BookingDate.Format(domain.DateFormat),
		Time:               b.SlotTime.String(),
		Status:             string(b.Status),
		ServiceName:        b.ServiceName,
		Price:              b.Price,
		DurationHours:      b.DurationHours,
		PaymentMethod:      string(b.PaymentMethod),
		Notes:              b.Notes,
		ProofImages:        b.ProofImages,
		Version:            b.Version,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, b := range bookings {
		if dto := FromDomainBooking(b); dto != nil {
			resp.Bookings = append(resp.Bookings, *dto)
		}
	}

	return resp
}

// FromDomainHistory конвертирует журнал статусов в DTO
func FromDomainHistory(bookingID int64, changes []*domain.StatusChange) *HistoryResponse {
	resp := &HistoryResponse{
		BookingID: bookingID,
		Changes:   make([]StatusChangeResponse, 0, len(changes)),
	}

	for _, c := range changes {
		var from *string
		if c.FromStatus != nil {
			s := string(*c.FromStatus)
			from = &s
		}
		resp.Changes = append(resp.Changes, StatusChangeResponse{
			FromStatus: from,
			ToStatus:   string(c.ToStatus),
			ActorID:    c.ActorID,
			ActorRole:  string(c.ActorRole),
			Reason:     c.Reason,
			CreatedAt:  c.CreatedAt,
		})
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(strings.ToLower(strings.TrimSpace(status)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s, nil
}
