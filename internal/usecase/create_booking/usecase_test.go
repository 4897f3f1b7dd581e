package create_booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/m04kA/septic-booking-service/internal/domain"
	"github.com/m04kA/septic-booking-service/internal/infra/storage/memory"
	"github.com/m04kA/septic-booking-service/internal/integrations/userservice"
	"github.com/m04kA/septic-booking-service/pkg/logger"
	"github.com/m04kA/septic-booking-service/pkg/slotlock"
	"github.com/m04kA/septic-booking-service/pkg/txmanager"
)

var manila = time.FixedZone("PHT", 8*60*60)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

// fakeUsers справочник пользователей; down имитирует недоступный UserService
type fakeUsers struct {
	users map[int64]*domain.User
	down  bool
}

func (f *fakeUsers) GetUserWithGracefulDegradation(_ context.Context, id int64) (*domain.User, error) {
	if f.down {
		return nil, fmt.Errorf("%w: user_id=%d", userservice.ErrServiceDegraded, id)
	}
	u, ok := f.users[id]
	if !ok {
		return nil, userservice.ErrUserNotFound
	}
	return u, nil
}

type countingMetrics struct {
	mu      sync.Mutex
	results map[string]int
}

func (m *countingMetrics) ObserveAdmission(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.results == nil {
		m.results = make(map[string]int)
	}
	m.results[result]++
}

type fixture struct {
	uc       *UseCase
	bookings *memory.BookingRepository
	services *memory.ServiceRepository
	users    *fakeUsers
	metrics  *countingMetrics
	service  *domain.Service
}

func newFixture(t *testing.T, cal domain.Calendar) *fixture {
	t.Helper()

	store := memory.NewStore()
	f := &fixture{
		bookings: memory.NewBookingRepository(store),
		services: memory.NewServiceRepository(store),
		users: &fakeUsers{users: map[int64]*domain.User{
			10: {ID: 10, Role: domain.RoleCustomer, IsActive: true},
			11: {ID: 11, Role: domain.RoleCustomer, IsActive: false},
			30: {ID: 30, Role: domain.RoleTechnician, IsActive: true},
		}},
		metrics: &countingMetrics{},
	}

	svc, err := f.services.Create(context.Background(), &domain.Service{
		Name:          "Septic tank siphoning",
		Price:         150000,
		DurationHours: 2,
		Status:        domain.ServiceActive,
	})
	require.NoError(t, err)
	f.service = svc

	f.uc = NewUseCase(f.bookings, f.services, f.users, store, slotlock.NewLocal(), cal, f.metrics, logger.Nop())
	f.uc.SetTimeProvider(fixedTime{time.Date(2025, 5, 20, 10, 0, 0, 0, manila)})
	return f
}

func (f *fixture) request(customerID int64, slot string) *Request {
	return &Request{
		Actor:         domain.Actor{ID: customerID, Role: domain.RoleCustomer},
		CustomerID:    customerID,
		ServiceID:     f.service.ID,
		Date:          time.Date(2025, 6, 1, 0, 0, 0, 0, manila),
		SlotTime:      slot,
		PaymentMethod: "cash",
	}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(t, domain.NewDefaultCalendar())
	notes := "gate code 1234"
	req := f.request(10, "9:00 am")
	req.Notes = &notes

	b, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.NotZero(t, b.ID)
	assert.Equal(t, domain.StatusPending, b.Status)
	assert.Equal(t, domain.SlotLabel("09:00 AM"), b.SlotTime)
	assert.Equal(t, int64(150000), b.Price)
	assert.Equal(t, 2, b.DurationHours)
	assert.Equal(t, "Septic tank siphoning", b.ServiceName)
	assert.Equal(t, domain.PaymentCash, b.PaymentMethod)
	assert.Nil(t, b.TechnicianID)
	assert.Empty(t, b.ProofImages)
	assert.Equal(t, notes, *b.Notes)

	history, err := f.bookings.GetHistory(context.Background(), b.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].FromStatus)
	assert.Equal(t, domain.StatusPending, history[0].ToStatus)
	assert.Equal(t, 1, f.metrics.results[ResultCreated])
}

func TestExecute_PriceSnapshot(t *testing.T) {
	f := newFixture(t, domain.NewDefaultCalendar())
	b, err := f.uc.Execute(context.Background(), f.request(10, "09:00 AM"))
	require.NoError(t, err)

	// Деактивация услуги не влияет на существующие бронирования
	require.NoError(t, f.services.UpdateStatus(context.Background(), f.service.ID, domain.ServiceInactive))
	got, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(150000), got.Price)

	_, err = f.uc.Execute(context.Background(), f.request(10, "10:00 AM"))
	assert.ErrorIs(t, err, ErrServiceInactive)
}

func TestExecute_SecondBookingForSameSlotFails(t *testing.T) {
	f := newFixture(t, domain.NewDefaultCalendar())

	_, err := f.uc.Execute(context.Background(), f.request(10, "09:00 AM"))
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), f.request(10, "09:00 AM"))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
	assert.Equal(t, 1, f.metrics.results[ResultSlotUnavailable])

	count, err := f.bookings.CountActiveInSlot(context.Background(), time.Date(2025, 6, 1, 0, 0, 0, 0, manila), "09:00 AM")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestExecute_ConcurrentAdmission(t *testing.T) {
	for _, capacity := range []int{1, 3} {
		t.Run(fmt.Sprintf("capacity %d", capacity), func(t *testing.T) {
			cal := domain.NewDefaultCalendar()
			cal.Capacity = capacity
			f := newFixture(t, cal)

			const n = 25
			var (
				mu          sync.Mutex
				successes   int
				unavailable int
			)

			var g errgroup.Group
			for i := 0; i < n; i++ {
				g.Go(func() error {
					_, err := f.uc.Execute(context.Background(), f.request(10, "09:00 AM"))
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						successes++
					case errors.Is(err, domain.ErrSlotUnavailable):
						unavailable++
					default:
						return err
					}
					return nil
				})
			}
			require.NoError(t, g.Wait())

			assert.Equal(t, capacity, successes)
			assert.Equal(t, n-capacity, unavailable)

			count, err := f.bookings.CountActiveInSlot(context.Background(), time.Date(2025, 6, 1, 0, 0, 0, 0, manila), "09:00 AM")
			require.NoError(t, err)
			assert.Equal(t, capacity, count)
		})
	}
}

func TestExecute_ReleasedSlotCanBeBookedAgain(t *testing.T) {
	f := newFixture(t, domain.NewDefaultCalendar())
	ctx := context.Background()

	b, err := f.uc.Execute(ctx, f.request(10, "09:00 AM"))
	require.NoError(t, err)

	_, err = f.bookings.ApplyLifecycle(ctx, &domain.LifecycleUpdate{
		BookingID:       b.ID,
		ExpectedVersion: b.Version,
		Status:          domain.StatusCancelled,
	})
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, f.request(10, "09:00 AM"))
	assert.NoError(t, err)
}

func TestExecute_Validation(t *testing.T) {
	f := newFixture(t, domain.NewDefaultCalendar())

	tests := []struct {
		name    string
		modify  func(r *Request)
		wantErr error
	}{
		{"missing customer", func(r *Request) { r.CustomerID = 0 }, ErrInvalidInput},
		{"missing date", func(r *Request) { r.Date = time.Time{} }, ErrInvalidInput},
		{"missing time", func(r *Request) { r.SlotTime = "" }, ErrInvalidInput},
		{"unparsable time", func(r *Request) { r.SlotTime = "noon" }, ErrInvalidTimeSlot},
		{"time outside template", func(r *Request) { r.SlotTime = "12:00 PM" }, ErrInvalidTimeSlot},
		{"past date", func(r *Request) { r.Date = time.Date(2025, 5, 19, 0, 0, 0, 0, manila) }, ErrInvalidDate},
		{"too late today", func(r *Request) {
			r.Date = time.Date(2025, 5, 20, 0, 0, 0, 0, manila)
			r.SlotTime = "10:00 AM"
		}, ErrTooLateToBook},
		{"unsupported payment", func(r *Request) { r.PaymentMethod = "card" }, ErrUnsupportedPaymentMethod},
		{"unknown service", func(r *Request) { r.ServiceID = 999 }, ErrServiceNotFound},
		{"unknown customer", func(r *Request) {
			r.CustomerID = 12
			r.Actor.ID = 12
		}, ErrCustomerNotFound},
		{"inactive customer", func(r *Request) {
			r.CustomerID = 11
			r.Actor.ID = 11
		}, ErrInvalidCustomer},
		{"booking for a technician", func(r *Request) {
			r.CustomerID = 30
			r.Actor = domain.Actor{ID: 1, Role: domain.RoleStaff}
		}, ErrInvalidCustomer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request(10, "09:00 AM")
			tt.modify(req)
			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	list, err := f.bookings.List(context.Background(), domain.BookingFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestExecute_ActorRules(t *testing.T) {
	f := newFixture(t, domain.NewDefaultCalendar())

	req := f.request(10, "09:00 AM")
	req.Actor = domain.Actor{ID: 99, Role: domain.RoleCustomer}
	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	req.Actor = domain.Actor{ID: 30, Role: domain.RoleTechnician}
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	req.Actor = domain.Actor{ID: 1, Role: domain.RoleStaff}
	b, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(10), b.CustomerID)

	history, err := f.bookings.GetHistory(context.Background(), b.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.RoleStaff, history[0].ActorRole)
}

func TestExecute_UserServiceDegraded(t *testing.T) {
	f := newFixture(t, domain.NewDefaultCalendar())
	f.users.down = true

	_, err := f.uc.Execute(context.Background(), f.request(12, "09:00 AM"))
	assert.NoError(t, err)
}

// failingTx имитирует ошибку фиксации транзакции
type failingTx struct{ err error }

func (f failingTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return f.err
}

func TestExecute_TransactionFailures(t *testing.T) {
	tests := []struct {
		name    string
		txErr   error
		wantErr error
	}{
		{"serialization failure", fmt.Errorf("%w: could not serialize", txmanager.ErrSerializationFailure), domain.ErrConflict},
		{"commit failure", fmt.Errorf("%w: connection reset", txmanager.ErrCommitTx), domain.ErrStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, domain.NewDefaultCalendar())
			store := memory.NewStore()
			repo := memory.NewBookingRepository(store)
			uc := NewUseCase(&inTxRepo{repo, store}, f.services, f.users, failingTx{tt.txErr}, slotlock.NewLocal(),
				domain.NewDefaultCalendar(), nil, logger.Nop())
			uc.SetTimeProvider(fixedTime{time.Date(2025, 5, 20, 10, 0, 0, 0, manila)})

			_, err := uc.Execute(context.Background(), f.request(10, "09:00 AM"))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// inTxRepo выполняет LockSlot внутри транзакции хранилища, чтобы работать с failingTx
type inTxRepo struct {
	*memory.BookingRepository
	store *memory.Store
}

func (r *inTxRepo) LockSlot(ctx context.Context, date time.Time, label domain.SlotLabel) error {
	return r.store.Do(ctx, func(ctx context.Context) error {
		return r.BookingRepository.LockSlot(ctx, date, label)
	})
}

func TestExecute_SlotLockTimeout(t *testing.T) {
	f := newFixture(t, domain.NewDefaultCalendar())
	locker := slotlock.NewLocal()
	f.uc.locker = locker

	req := f.request(10, "09:00 AM")
	unlock, err := locker.Lock(context.Background(), slotlock.Key(req.Date, "09:00 AM"))
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = f.uc.Execute(ctx, req)
	assert.ErrorIs(t, err, ErrSlotBusy)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestExecute_SlotLockTimeoutOnFullSlot(t *testing.T) {
	f := newFixture(t, domain.NewDefaultCalendar())
	locker := slotlock.NewLocal()
	f.uc.locker = locker

	_, err := f.uc.Execute(context.Background(), f.request(10, "09:00 AM"))
	require.NoError(t, err)

	req := f.request(10, "09:00 AM")
	unlock, err := locker.Lock(context.Background(), slotlock.Key(req.Date, "09:00 AM"))
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = f.uc.Execute(ctx, req)
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
	assert.NotErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, f.metrics.results[ResultSlotUnavailable])
}
