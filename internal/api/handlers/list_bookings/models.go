package list_bookings

import (
	"fmt"
	"net/url"
	"time"

	"github.com/m04kA/septic-booking-service/internal/api/handlers"
	"github.com/m04kA/septic-booking-service/internal/domain"
	"github.com/m04kA/septic-booking-service/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров:
// customerId, technicianId, status, date, from, to, includeInactive
func ToServiceRequest(actor domain.Actor, q url.Values, loc *time.Location) (*models.ListBookingsRequest, error) {
	filter, err := handlers.ParseListFilter(q, loc)
	if err != nil {
		return nil, err
	}

	customerID, err := handlers.ParseOptionalInt64(q.Get("customerId"))
	if err != nil {
		return nil, fmt.Errorf("invalid customerId: %w", err)
	}

	technicianID, err := handlers.ParseOptionalInt64(q.Get("technicianId"))
	if err != nil {
		return nil, fmt.Errorf("invalid technicianId: %w", err)
	}

	return &models.ListBookingsRequest{
		Actor:        actor,
		CustomerID:   customerID,
		TechnicianID: technicianID,
		ListFilter:   filter,
	}, nil
}
