package domain

import (
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in-progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusDeclined   BookingStatus = "declined"
)

// PaymentMethod способ оплаты, зафиксированный при бронировании
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
)

// supportedPaymentMethods допустимые способы оплаты
var supportedPaymentMethods = map[PaymentMethod]struct{}{
	PaymentCash: {},
}

// IsSupported returns true if the payment method is accepted
func (p PaymentMethod) IsSupported() bool {
	_, ok := supportedPaymentMethods[p]
	return ok
}

// Booking represents a septic service visit booked by a customer
type Booking struct {
	ID           int64
	CustomerID   int64
	ServiceID    int64
	TechnicianID *int64
	BookingDate  time.Time
	SlotTime     SlotLabel
	Status       BookingStatus

	// Снимок данных услуги на момент бронирования
	ServiceName   string
	Price         int64 // в минимальных единицах валюты
	DurationHours int

	PaymentMethod PaymentMethod
	Notes         *string
	ProofImages   []string

	CancellationReason *string

	// Version увеличивается при каждом переходе статуса
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal returns true if the booking can not change status anymore
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusDeclined
}

// OccupiesSlot returns true if a booking in this status holds its slot
func (s BookingStatus) OccupiesSlot() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusInProgress
}

// IsValid returns true if the status is one of the known statuses
func (s BookingStatus) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsActive returns true if the booking still occupies its slot
func (b *Booking) IsActive() bool {
	return b.Status.OccupiesSlot()
}

// HasTechnician returns true if a technician is assigned
func (b *Booking) HasTechnician() bool {
	return b.TechnicianID != nil
}

// Clone возвращает копию бронирования, не разделяющую срезы и указатели с оригиналом
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	c := *b
	if b.TechnicianID != nil {
		id := *b.TechnicianID
		c.TechnicianID = &id
	}
	if b.Notes != nil {
		n := *b.Notes
		c.Notes = &n
	}
	if b.CancellationReason != nil {
		r := *b.CancellationReason
		c.CancellationReason = &r
	}
	if b.ProofImages != nil {
		c.ProofImages = append([]string(nil), b.ProofImages...)
	}
	return &c
}

// BookingFilter фильтр для выборки бронирований
type BookingFilter struct {
	CustomerID      *int64         // Бронирования клиента
	TechnicianID    *int64         // Бронирования, назначенные технику
	StartDate       *time.Time     // Начало периода (опционально)
	EndDate         *time.Time     // Конец периода (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать завершённые, отменённые и отклонённые
}

// Matches проверяет, подходит ли бронирование под фильтр
func (f BookingFilter) Matches(b *Booking) bool {
	if f.CustomerID != nil && b.CustomerID != *f.CustomerID {
		return false
	}
	if f.TechnicianID != nil && (b.TechnicianID == nil || *b.TechnicianID != *f.TechnicianID) {
		return false
	}
	if f.StartDate != nil && DateOnly(b.BookingDate).Before(DateOnly(*f.StartDate)) {
		return false
	}
	if f.EndDate != nil && DateOnly(b.BookingDate).After(DateOnly(*f.EndDate)) {
		return false
	}
	if f.Status != nil {
		return b.Status == *f.Status
	}
	if !f.IncludeInactive && !b.IsActive() {
		return false
	}
	return true
}

// StatusChange запись журнала переходов статуса бронирования
type StatusChange struct {
	ID         int64
	BookingID  int64
	FromStatus *BookingStatus // nil для создания
	ToStatus   BookingStatus
	ActorID    int64
	ActorRole  Role
	Reason     *string
	CreatedAt  time.Time
}

// LifecycleUpdate атомарное изменение бронирования при переходе статуса
type LifecycleUpdate struct {
	BookingID          int64
	ExpectedVersion    int64
	Status             BookingStatus
	TechnicianID       *int64
	ProofImages        []string
	CancellationReason *string
	Change             StatusChange
}

// DateOnly обнуляет время, оставляя только календарную дату
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsSameDay проверяет, что две даты относятся к одному и тому же дню
func IsSameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// IsDateInPast проверяет, что дата раньше сегодняшнего дня
func IsDateInPast(date, now time.Time) bool {
	y, m, d := date.Date()
	dateOnly := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return dateOnly.Before(DateOnly(now))
}
