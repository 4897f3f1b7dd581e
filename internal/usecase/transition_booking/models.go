package transition_booking

import "github.com/m04kA/septic-booking-service/internal/domain"

// Исходы перехода для метрик
const (
	ResultApplied  = "applied"
	ResultRejected = "rejected"
	ResultConflict = "conflict"
	ResultError    = "error"

	// LabelInvalid метка для нераспознанного целевого статуса
	LabelInvalid = "invalid"
)

// Request модель запроса на смену статуса бронирования
type Request struct {
	Actor        domain.Actor
	BookingID    int64
	Target       string   // Целевой статус
	TechnicianID *int64   // Назначение техника (confirmed, in-progress)
	ProofImages  []string // Фотоотчёт (completed)
	Reason       *string  // Причина (cancelled, declined)
}

func (r *Request) payload() domain.TransitionPayload {
	return domain.TransitionPayload{
		TechnicianID: r.TechnicianID,
		ProofImages:  r.ProofImages,
		Reason:       r.Reason,
	}
}
