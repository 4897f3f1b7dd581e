package cancel_booking

import (
	"github.com/m04kA/septic-booking-service/internal/domain"
	cancelBooking "github.com/m04kA/septic-booking-service/internal/usecase/cancel_booking"
)

// CancelBookingRequest HTTP request model, тело необязательно
type CancelBookingRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *CancelBookingRequest) ToUseCaseRequest(actor domain.Actor, bookingID int64) *cancelBooking.Request {
	return &cancelBooking.Request{
		Actor:     actor,
		BookingID: bookingID,
		Reason:    r.CancellationReason,
	}
}
