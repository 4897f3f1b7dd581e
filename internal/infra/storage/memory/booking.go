package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/septic-booking-service/internal/domain"
	"github.com/m04kA/septic-booking-service/internal/infra/storage/booking"
)

// BookingRepository бронирования и журнал статусов в памяти
type BookingRepository struct {
	s *Store
}

// NewBookingRepository создает репозиторий бронирований поверх хранилища
func NewBookingRepository(s *Store) *BookingRepository {
	return &BookingRepository{s: s}
}

func sameDate(a, b time.Time) bool {
	return a.Format(domain.DateFormat) == b.Format(domain.DateFormat)
}

// Create создает бронирование с версией 1
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	unlock := r.s.lock(ctx)
	defer unlock()

	r.s.nextBookingID++
	now := r.s.now()

	b.ID = r.s.nextBookingID
	b.Version = 1
	b.CreatedAt = now
	b.UpdatedAt = now
	r.s.bookings[b.ID] = b.Clone()

	id := b.ID
	r.s.onRollback(ctx, func() {
		delete(r.s.bookings, id)
		r.s.nextBookingID--
	})

	return b, nil
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	unlock := r.s.lock(ctx)
	defer unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return b.Clone(), nil
}

// LockSlot внутри транзакции хранилище уже заблокировано целиком
func (r *BookingRepository) LockSlot(ctx context.Context, _ time.Time, _ domain.SlotLabel) error {
	if !r.s.inTx(ctx) {
		return booking.ErrNotInTransaction
	}
	return nil
}

// CountActiveInSlot считает бронирования в нетерминальных статусах, занимающие слот
func (r *BookingRepository) CountActiveInSlot(ctx context.Context, date time.Time, label domain.SlotLabel) (int, error) {
	unlock := r.s.lock(ctx)
	defer unlock()

	count := 0
	for _, b := range r.s.bookings {
		if b.IsActive() && b.SlotTime == label && sameDate(b.BookingDate, date) {
			count++
		}
	}
	return count, nil
}

// ListActiveByDate получает бронирования на дату, занимающие слоты
func (r *BookingRepository) ListActiveByDate(ctx context.Context, date time.Time) ([]*domain.Booking, error) {
	unlock := r.s.lock(ctx)
	defer unlock()

	result := make([]*domain.Booking, 0)
	for _, b := range r.s.bookings {
		if b.IsActive() && sameDate(b.BookingDate, date) {
			result = append(result, b.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// List получает бронирования по фильтру в порядке: дата по убыванию, затем новые первыми
func (r *BookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
	unlock := r.s.lock(ctx)
	defer unlock()

	result := make([]*domain.Booking, 0)
	for _, b := range r.s.bookings {
		if filter.Matches(b) {
			result = append(result, b.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		di, dj := result[i].BookingDate.Format(domain.DateFormat), result[j].BookingDate.Format(domain.DateFormat)
		if di != dj {
			return di > dj
		}
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// ApplyLifecycle применяет переход статуса с проверкой версии
func (r *BookingRepository) ApplyLifecycle(ctx context.Context, upd *domain.LifecycleUpdate) (*domain.Booking, error) {
	unlock := r.s.lock(ctx)
	defer unlock()

	current, ok := r.s.bookings[upd.BookingID]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	if current.Version != upd.ExpectedVersion {
		return nil, fmt.Errorf("%w: booking_id=%d expected_version=%d", booking.ErrVersionConflict, upd.BookingID, upd.ExpectedVersion)
	}

	previous := current.Clone()

	next := current.Clone()
	next.Status = upd.Status
	next.TechnicianID = upd.TechnicianID
	next.ProofImages = upd.ProofImages
	next.CancellationReason = upd.CancellationReason
	next.Version++
	next.UpdatedAt = r.s.now()

	// Копируем ещё раз, чтобы не разделять указатели из upd
	r.s.bookings[upd.BookingID] = next.Clone()
	r.s.onRollback(ctx, func() {
		r.s.bookings[previous.ID] = previous
	})

	return next.Clone(), nil
}

// AppendHistory добавляет запись в журнал переходов статуса
func (r *BookingRepository) AppendHistory(ctx context.Context, change *domain.StatusChange) error {
	unlock := r.s.lock(ctx)
	defer unlock()

	if _, ok := r.s.bookings[change.BookingID]; !ok {
		return booking.ErrBookingNotFound
	}

	r.s.nextHistoryID++
	change.ID = r.s.nextHistoryID
	change.CreatedAt = r.s.now()

	stored := *change
	r.s.history[change.BookingID] = append(r.s.history[change.BookingID], &stored)

	bookingID := change.BookingID
	r.s.onRollback(ctx, func() {
		entries := r.s.history[bookingID]
		r.s.history[bookingID] = entries[:len(entries)-1]
		r.s.nextHistoryID--
	})

	return nil
}

// GetHistory журнал переходов бронирования в хронологическом порядке
func (r *BookingRepository) GetHistory(ctx context.Context, bookingID int64) ([]*domain.StatusChange, error) {
	unlock := r.s.lock(ctx)
	defer unlock()

	entries := r.s.history[bookingID]
	result := make([]*domain.StatusChange, 0, len(entries))
	for _, e := range entries {
		c := *e
		result = append(result, &c)
	}
	return result, nil
}
