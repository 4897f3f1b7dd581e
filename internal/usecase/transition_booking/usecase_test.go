package transition_booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/m04kA/septic-booking-service/internal/domain"
	"github.com/m04kA/septic-booking-service/internal/infra/storage/booking"
	"github.com/m04kA/septic-booking-service/internal/infra/storage/memory"
	"github.com/m04kA/septic-booking-service/internal/integrations/userservice"
	"github.com/m04kA/septic-booking-service/pkg/logger"
	"github.com/m04kA/septic-booking-service/pkg/metrics"
)

var (
	customer = domain.Actor{ID: 10, Role: domain.RoleCustomer}
	staff    = domain.Actor{ID: 20, Role: domain.RoleStaff}
	manager  = domain.Actor{ID: 21, Role: domain.RoleManager}
	tech     = domain.Actor{ID: 30, Role: domain.RoleTechnician}
)

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

type recordedTransition struct{ from, to, result string }

type fakeMetrics struct {
	mu   sync.Mutex
	seen []recordedTransition
}

func (m *fakeMetrics) ObserveTransition(from, to, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, recordedTransition{from, to, result})
}

type fixture struct {
	uc      *UseCase
	repo    *memory.BookingRepository
	users   *fakeUsers
	metrics *fakeMetrics
}

func newFixture() *fixture {
	store := memory.NewStore()
	f := &fixture{
		repo: memory.NewBookingRepository(store),
		users: &fakeUsers{users: map[int64]*domain.User{
			10: {ID: 10, Role: domain.RoleCustomer, IsActive: true},
			30: {ID: 30, Role: domain.RoleTechnician, IsActive: true},
			31: {ID: 31, Role: domain.RoleTechnician, IsActive: false},
		}},
		metrics: &fakeMetrics{},
	}
	f.uc = NewUseCase(f.repo, f.users, store, f.metrics, logger.Nop())
	return f
}

// seed создает бронирование сразу в нужном статусе
func (f *fixture) seed(t *testing.T, status domain.BookingStatus) *domain.Booking {
	t.Helper()

	b := &domain.Booking{
		CustomerID:    10,
		ServiceID:     1,
		BookingDate:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		SlotTime:      "09:00 AM",
		Status:        status,
		ServiceName:   "Siphoning",
		Price:         150000,
		DurationHours: 2,
		PaymentMethod: domain.PaymentCash,
	}
	if status != domain.StatusPending {
		techID := int64(30)
		b.TechnicianID = &techID
	}
	if status == domain.StatusCompleted {
		b.ProofImages = []string{"proof/1.jpg"}
	}

	created, err := f.repo.Create(context.Background(), b)
	require.NoError(t, err)
	return created.Clone()
}

// actorFor участник, которому разрешён переход (или staff, если пара вне таблицы)
func actorFor(from, to domain.BookingStatus) domain.Actor {
	switch {
	case domain.RoleCanTransition(domain.RoleCustomer, from, to):
		return customer
	case domain.RoleCanTransition(domain.RoleTechnician, from, to):
		return tech
	default:
		return staff
	}
}

func TestExecute_TransitionGrid(t *testing.T) {
	for _, from := range domain.AllStatuses {
		for _, to := range domain.AllStatuses {
			t.Run(fmt.Sprintf("%s to %s", from, to), func(t *testing.T) {
				f := newFixture()
				before := f.seed(t, from)

				req := &Request{Actor: actorFor(from, to), BookingID: before.ID, Target: string(to)}
				if to == domain.StatusCompleted {
					req.ProofImages = []string{"proof/after.jpg"}
				}

				got, err := f.uc.Execute(context.Background(), req)

				after, getErr := f.repo.GetByID(context.Background(), before.ID)
				require.NoError(t, getErr)
				history, histErr := f.repo.GetHistory(context.Background(), before.ID)
				require.NoError(t, histErr)

				if !domain.CanTransition(from, to) {
					assert.ErrorIs(t, err, domain.ErrInvalidTransition)
					assert.Equal(t, before, after)
					assert.Empty(t, history)
					return
				}

				require.NoError(t, err)
				assert.Equal(t, to, got.Status)
				assert.Equal(t, before.Version+1, after.Version)
				require.Len(t, history, 1)
				assert.Equal(t, from, *history[0].FromStatus)
				assert.Equal(t, to, history[0].ToStatus)
			})
		}
	}
}

func TestExecute_FullLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := f.seed(t, domain.StatusPending)
	techID := int64(30)

	confirmed, err := f.uc.Execute(ctx, &Request{Actor: staff, BookingID: b.ID, Target: "confirmed", TechnicianID: &techID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.TechnicianID)
	assert.Equal(t, techID, *confirmed.TechnicianID)

	started, err := f.uc.Execute(ctx, &Request{Actor: tech, BookingID: b.ID, Target: "in-progress"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, started.Status)

	_, err = f.uc.Execute(ctx, &Request{Actor: tech, BookingID: b.ID, Target: "completed"})
	assert.ErrorIs(t, err, domain.ErrProofRequired)

	unchanged, err := f.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, unchanged.Status)
	assert.Equal(t, started.Version, unchanged.Version)

	completed, err := f.uc.Execute(ctx, &Request{
		Actor:       tech,
		BookingID:   b.ID,
		Target:      "completed",
		ProofImages: []string{"proof/1.jpg", "proof/2.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, completed.Status)
	assert.Equal(t, []string{"proof/1.jpg", "proof/2.jpg"}, completed.ProofImages)
	assert.Equal(t, int64(4), completed.Version)

	history, err := f.repo.GetHistory(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, domain.RoleStaff, history[0].ActorRole)
	assert.Equal(t, domain.RoleTechnician, history[2].ActorRole)

	// Терминальный статус
	_, err = f.uc.Execute(ctx, &Request{Actor: manager, BookingID: b.ID, Target: "declined"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestExecute_Authorization(t *testing.T) {
	ctx := context.Background()

	t.Run("customer may not confirm", func(t *testing.T) {
		f := newFixture()
		b := f.seed(t, domain.StatusPending)
		_, err := f.uc.Execute(ctx, &Request{Actor: customer, BookingID: b.ID, Target: "confirmed"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("technician may not start a booking assigned to someone else", func(t *testing.T) {
		f := newFixture()
		b := f.seed(t, domain.StatusConfirmed)
		_, err := f.uc.Execute(ctx, &Request{Actor: domain.Actor{ID: 32, Role: domain.RoleTechnician}, BookingID: b.ID, Target: "in-progress"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("staff may not complete", func(t *testing.T) {
		f := newFixture()
		b := f.seed(t, domain.StatusInProgress)
		_, err := f.uc.Execute(ctx, &Request{Actor: staff, BookingID: b.ID, Target: "completed", ProofImages: []string{"x"}})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestExecute_TechnicianAssignment(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		technicianID int64
		down         bool
		wantErr      error
	}{
		{name: "active technician", technicianID: 30},
		{name: "unknown user", technicianID: 99, wantErr: ErrTechnicianNotFound},
		{name: "customer is not a technician", technicianID: 10, wantErr: ErrInvalidTechnician},
		{name: "inactive technician", technicianID: 31, wantErr: ErrInvalidTechnician},
		{name: "user service down", technicianID: 99, down: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.users.down = tt.down
			b := f.seed(t, domain.StatusPending)

			id := tt.technicianID
			got, err := f.uc.Execute(ctx, &Request{Actor: staff, BookingID: b.ID, Target: "confirmed", TechnicianID: &id})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, id, *got.TechnicianID)
		})
	}
}

func TestExecute_StartRequiresTechnician(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b := f.seed(t, domain.StatusPending)
	_, err := f.uc.Execute(ctx, &Request{Actor: staff, BookingID: b.ID, Target: "confirmed"})
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, &Request{Actor: staff, BookingID: b.ID, Target: "in-progress"})
	assert.ErrorIs(t, err, domain.ErrTechnicianRequired)

	techID := int64(30)
	got, err := f.uc.Execute(ctx, &Request{Actor: staff, BookingID: b.ID, Target: "in-progress", TechnicianID: &techID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, got.Status)
}

func TestExecute_DeclineRecordsReason(t *testing.T) {
	f := newFixture()
	b := f.seed(t, domain.StatusConfirmed)
	reason := "truck broke down"

	got, err := f.uc.Execute(context.Background(), &Request{Actor: manager, BookingID: b.ID, Target: "declined", Reason: &reason})
	require.NoError(t, err)
	require.NotNil(t, got.CancellationReason)
	assert.Equal(t, reason, *got.CancellationReason)

	history, err := f.repo.GetHistory(context.Background(), b.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, reason, *history[0].Reason)
}

func TestExecute_ConcurrentConfirm(t *testing.T) {
	f := newFixture()
	b := f.seed(t, domain.StatusPending)

	const n = 10
	var (
		mu       sync.Mutex
		applied  int
		rejected int
	)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := f.uc.Execute(context.Background(), &Request{Actor: staff, BookingID: b.ID, Target: "confirmed"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				applied++
			case errors.Is(err, domain.ErrInvalidTransition):
				rejected++
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 1, applied)
	assert.Equal(t, n-1, rejected)

	history, err := f.repo.GetHistory(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestExecute_InvalidInput(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Execute(context.Background(), &Request{Actor: staff, BookingID: 1, Target: "archived"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), &Request{Actor: staff, BookingID: 0, Target: "confirmed"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), &Request{Actor: domain.Actor{ID: 1, Role: "admin"}, BookingID: 1, Target: "confirmed"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExecute_UnknownTargetMetricLabel(t *testing.T) {
	f := newFixture()
	b := f.seed(t, domain.StatusPending)

	_, err := f.uc.Execute(context.Background(), &Request{Actor: staff, BookingID: b.ID, Target: "  Confirmed "})
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), &Request{Actor: staff, BookingID: b.ID, Target: "archived"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, []recordedTransition{
		{"pending", "confirmed", ResultApplied},
		{"unknown", LabelInvalid, ResultRejected},
	}, f.metrics.seen)
}

func TestExecute_TransitionSeriesStayBounded(t *testing.T) {
	store := memory.NewStore()
	m := metrics.New("septic-booking")
	uc := NewUseCase(memory.NewBookingRepository(store), &fakeUsers{}, store, m, logger.Nop())

	for i := 0; i < 200; i++ {
		_, err := uc.Execute(context.Background(), &Request{Actor: staff, BookingID: 1, Target: fmt.Sprintf("junk-%d", i)})
		require.ErrorIs(t, err, ErrInvalidInput)
	}

	count, err := testutil.GatherAndCount(m.Registry(), "booking_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestExecute_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Execute(context.Background(), &Request{Actor: staff, BookingID: 42, Target: "confirmed"})
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.Len(t, f.metrics.seen, 1)
	assert.Equal(t, recordedTransition{"unknown", "confirmed", ResultRejected}, f.metrics.seen[0])
}

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*domain.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingRepo) ApplyLifecycle(ctx context.Context, upd *domain.LifecycleUpdate) (*domain.Booking, error) {
	args := m.Called(ctx, upd)
	if b := args.Get(0); b != nil {
		return b.(*domain.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingRepo) AppendHistory(ctx context.Context, change *domain.StatusChange) error {
	return m.Called(ctx, change).Error(0)
}

type passthroughTx struct{}

func (passthroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestExecute_StoreErrors(t *testing.T) {
	pending := &domain.Booking{ID: 7, CustomerID: 10, Status: domain.StatusPending, SlotTime: "09:00 AM", Version: 2}

	t.Run("version conflict", func(t *testing.T) {
		repo := &mockBookingRepo{}
		repo.On("GetByID", mock.Anything, int64(7)).Return(pending.Clone(), nil)
		repo.On("ApplyLifecycle", mock.Anything, mock.MatchedBy(func(u *domain.LifecycleUpdate) bool {
			return u.ExpectedVersion == 2 && u.Status == domain.StatusConfirmed
		})).Return(nil, fmt.Errorf("%w: booking_id=7", booking.ErrVersionConflict))

		metrics := &fakeMetrics{}
		uc := NewUseCase(repo, &fakeUsers{}, passthroughTx{}, metrics, logger.Nop())
		_, err := uc.Execute(context.Background(), &Request{Actor: staff, BookingID: 7, Target: "confirmed"})
		assert.ErrorIs(t, err, ErrConflict)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, []recordedTransition{{"pending", "confirmed", ResultConflict}}, metrics.seen)
		repo.AssertNotCalled(t, "AppendHistory", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := &mockBookingRepo{}
		repo.On("GetByID", mock.Anything, int64(7)).Return(nil, errors.New("connection refused"))

		uc := NewUseCase(repo, &fakeUsers{}, passthroughTx{}, nil, logger.Nop())
		_, err := uc.Execute(context.Background(), &Request{Actor: staff, BookingID: 7, Target: "confirmed"})
		assert.ErrorIs(t, err, ErrInternal)
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})
}
