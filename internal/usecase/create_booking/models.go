package create_booking

import (
	"time"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

// Исходы создания бронирования для метрик
const (
	ResultCreated         = "created"
	ResultSlotUnavailable = "slot_unavailable"
	ResultRejected        = "rejected"
	ResultConflict        = "conflict"
	ResultError           = "error"
)

// Request модель запроса на создание бронирования
type Request struct {
	Actor         domain.Actor // Кто создаёт бронирование
	CustomerID    int64        // Для кого (клиент может бронировать только для себя)
	ServiceID     int64        // ID услуги
	Date          time.Time    // Дата бронирования в часовом поясе бизнеса
	SlotTime      string       // Метка слота, например "09:00 AM"
	Notes         *string      // Дополнительные заметки (опционально)
	PaymentMethod string       // Способ оплаты ("cash")
}
