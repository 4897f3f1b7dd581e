package transition_booking

import (
	"github.com/m04kA/septic-booking-service/internal/domain"
	transitionBooking "github.com/m04kA/septic-booking-service/internal/usecase/transition_booking"
)

// TransitionRequest HTTP request model
type TransitionRequest struct {
	Status       string   `json:"status"`
	TechnicianID *int64   `json:"technicianId,omitempty"`
	ProofImages  []string `json:"proofImages,omitempty"`
	Reason       *string  `json:"reason,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *TransitionRequest) ToUseCaseRequest(actor domain.Actor, bookingID int64) *transitionBooking.Request {
	return &transitionBooking.Request{
		Actor:        actor,
		BookingID:    bookingID,
		Target:       r.Status,
		TechnicianID: r.TechnicianID,
		ProofImages:  r.ProofImages,
		Reason:       r.Reason,
	}
}
