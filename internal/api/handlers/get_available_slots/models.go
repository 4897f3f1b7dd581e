package get_available_slots

import (
	"github.com/m04kA/septic-booking-service/internal/domain"
	getAvailableSlots "github.com/m04kA/septic-booking-service/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date   string          `json:"date"`
	Labels []string        `json:"labels"` // Свободные слоты в порядке шаблона
	Slots  []AvailableSlot `json:"slots"`
}

// AvailableSlot занятость слота
type AvailableSlot struct {
	Time           string `json:"time"`
	AvailableSpots int    `json:"availableSpots"`
	TakenSpots     int    `json:"takenSpots"`
	TotalSpots     int    `json:"totalSpots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	labels := make([]string, len(resp.Labels))
	for i, l := range resp.Labels {
		labels[i] = l.String()
	}

	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			Time:           slot.Label.String(),
			AvailableSpots: slot.Available,
			TakenSpots:     slot.Taken,
			TotalSpots:     slot.Capacity,
		}
	}

	return &AvailableSlotsResponse{
		Date:   resp.Date.Format(domain.DateFormat),
		Labels: labels,
		Slots:  slots,
	}
}
