package get_available_slots

import (
	"time"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	Date time.Time // Календарная дата в часовом поясе бизнеса
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date   time.Time          // Дата, на которую запрашивались слоты
	Labels []domain.SlotLabel // Свободные метки в порядке шаблона
	Slots  []Slot             // Занятость каждого слота шаблона
}

// Slot занятость одного слота
type Slot struct {
	Label     domain.SlotLabel
	Available int // Количество свободных мест
	Taken     int // Занято нетерминальными бронированиями
	Capacity  int // Общее количество мест
}
