package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/septic-booking-service/internal/domain"
	"github.com/m04kA/septic-booking-service/internal/infra/storage/booking"
	"github.com/m04kA/septic-booking-service/internal/infra/storage/service"
)

var june1 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func newBooking(customerID int64, date time.Time, label domain.SlotLabel) *domain.Booking {
	return &domain.Booking{
		CustomerID:    customerID,
		ServiceID:     1,
		BookingDate:   date,
		SlotTime:      label,
		Status:        domain.StatusPending,
		ServiceName:   "Siphoning",
		Price:         150000,
		DurationHours: 2,
		PaymentMethod: domain.PaymentCash,
	}
}

func TestBookingRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository(NewStore())

	created, err := repo.Create(ctx, newBooking(1, june1, "09:00 AM"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, int64(1), created.Version)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.SlotTime, got.SlotTime)

	// Изменение возвращённой копии не затрагивает хранилище
	got.Status = domain.StatusCancelled
	again, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, again.Status)

	_, err = repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingRepository_CountActiveInSlot(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository(NewStore())

	_, err := repo.Create(ctx, newBooking(1, june1, "09:00 AM"))
	require.NoError(t, err)
	cancelled := newBooking(2, june1, "09:00 AM")
	cancelled.Status = domain.StatusCancelled
	_, err = repo.Create(ctx, cancelled)
	require.NoError(t, err)
	_, err = repo.Create(ctx, newBooking(3, june1.AddDate(0, 0, 1), "09:00 AM"))
	require.NoError(t, err)

	count, err := repo.CountActiveInSlot(ctx, june1, "09:00 AM")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	active, err := repo.ListActiveByDate(ctx, june1)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestBookingRepository_ApplyLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository(NewStore())

	b, err := repo.Create(ctx, newBooking(1, june1, "09:00 AM"))
	require.NoError(t, err)

	techID := int64(7)
	updated, err := repo.ApplyLifecycle(ctx, &domain.LifecycleUpdate{
		BookingID:       b.ID,
		ExpectedVersion: 1,
		Status:          domain.StatusConfirmed,
		TechnicianID:    &techID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)
	require.NotNil(t, updated.TechnicianID)
	assert.Equal(t, techID, *updated.TechnicianID)

	// Устаревшая версия
	_, err = repo.ApplyLifecycle(ctx, &domain.LifecycleUpdate{
		BookingID:       b.ID,
		ExpectedVersion: 1,
		Status:          domain.StatusDeclined,
	})
	assert.ErrorIs(t, err, booking.ErrVersionConflict)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
}

func TestStore_TransactionRollback(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewBookingRepository(store)

	existing, err := repo.Create(ctx, newBooking(1, june1, "08:00 AM"))
	require.NoError(t, err)

	errBoom := errors.New("boom")
	err = store.DoSerializable(ctx, func(ctx context.Context) error {
		require.NoError(t, repo.LockSlot(ctx, june1, "09:00 AM"))

		b, err := repo.Create(ctx, newBooking(2, june1, "09:00 AM"))
		require.NoError(t, err)
		require.NoError(t, repo.AppendHistory(ctx, &domain.StatusChange{BookingID: b.ID, ToStatus: domain.StatusPending}))

		_, err = repo.ApplyLifecycle(ctx, &domain.LifecycleUpdate{
			BookingID:       existing.ID,
			ExpectedVersion: existing.Version,
			Status:          domain.StatusCancelled,
		})
		require.NoError(t, err)
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	count, err := repo.CountActiveInSlot(ctx, june1, "09:00 AM")
	require.NoError(t, err)
	assert.Zero(t, count)

	got, err := repo.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, int64(1), got.Version)

	history, err := repo.GetHistory(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, history)

	// Идентификатор переиспользуется после отката
	next, err := repo.Create(ctx, newBooking(3, june1, "10:00 AM"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.ID)
}

func TestBookingRepository_LockSlotRequiresTransaction(t *testing.T) {
	repo := NewBookingRepository(NewStore())
	assert.ErrorIs(t, repo.LockSlot(context.Background(), june1, "09:00 AM"), booking.ErrNotInTransaction)
}

func TestBookingRepository_List(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	store := NewStore(WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	repo := NewBookingRepository(store)

	first, _ := repo.Create(ctx, newBooking(1, june1, "08:00 AM"))
	second, _ := repo.Create(ctx, newBooking(1, june1.AddDate(0, 0, 2), "08:00 AM"))
	third, _ := repo.Create(ctx, newBooking(1, june1, "09:00 AM"))
	other, _ := repo.Create(ctx, newBooking(2, june1, "10:00 AM"))

	techID := int64(9)
	_, err := repo.ApplyLifecycle(ctx, &domain.LifecycleUpdate{
		BookingID: other.ID, ExpectedVersion: 1, Status: domain.StatusConfirmed, TechnicianID: &techID,
	})
	require.NoError(t, err)
	_, err = repo.ApplyLifecycle(ctx, &domain.LifecycleUpdate{
		BookingID: first.ID, ExpectedVersion: 1, Status: domain.StatusCancelled,
	})
	require.NoError(t, err)

	customerID := int64(1)
	list, err := repo.List(ctx, domain.BookingFilter{CustomerID: &customerID, IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{second.ID, third.ID, first.ID}, []int64{list[0].ID, list[1].ID, list[2].ID})

	list, err = repo.List(ctx, domain.BookingFilter{CustomerID: &customerID})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = repo.List(ctx, domain.BookingFilter{TechnicianID: &techID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, other.ID, list[0].ID)

	end := june1
	list, err = repo.List(ctx, domain.BookingFilter{EndDate: &end, IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestServiceRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewServiceRepository(NewStore())

	svc, err := repo.Create(ctx, &domain.Service{Name: "Siphoning", Price: 150000, DurationHours: 2, Status: domain.ServiceActive})
	require.NoError(t, err)
	assert.Equal(t, int64(1), svc.ID)

	require.NoError(t, repo.UpdateStatus(ctx, svc.ID, domain.ServiceInactive))
	got, err := repo.GetByID(ctx, svc.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive())

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = repo.GetByID(ctx, 5)
	assert.ErrorIs(t, err, service.ErrServiceNotFound)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, 5, domain.ServiceActive), domain.ErrNotFound)
}
