package create_booking

import (
	"time"

	"github.com/m04kA/septic-booking-service/internal/api/handlers"
	"github.com/m04kA/septic-booking-service/internal/domain"
	createBooking "github.com/m04kA/septic-booking-service/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	CustomerID    int64   `json:"customerId,omitempty"` // По умолчанию текущий пользователь
	ServiceID     int64   `json:"serviceId"`
	Date          string  `json:"date"` // "2025-10-15"
	Time          string  `json:"time"` // "09:00 AM"
	Notes         *string `json:"notes,omitempty"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(actor domain.Actor, loc *time.Location) (*createBooking.Request, error) {
	date, err := handlers.ParseDate(r.Date, loc)
	if err != nil {
		return nil, err
	}

	customerID := r.CustomerID
	if customerID == 0 {
		customerID = actor.ID
	}

	paymentMethod := r.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = string(domain.PaymentCash)
	}

	return &createBooking.Request{
		Actor:         actor,
		CustomerID:    customerID,
		ServiceID:     r.ServiceID,
		Date:          date,
		SlotTime:      r.Time,
		Notes:         r.Notes,
		PaymentMethod: paymentMethod,
	}, nil
}
