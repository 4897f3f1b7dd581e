package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

// Store хранилище в памяти процесса: бронирования, журнал статусов и каталог услуг.
// Все операции сериализуются одним мьютексом; транзакция удерживает его до своего завершения.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	bookings map[int64]*domain.Booking
	history  map[int64][]*domain.StatusChange
	services map[int64]*domain.Service

	nextBookingID int64
	nextHistoryID int64
	nextServiceID int64
}

// Option настройка хранилища
type Option func(*Store)

// WithClock задаёт источник времени для created_at/updated_at
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore создает пустое хранилище
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:      time.Now,
		bookings: make(map[int64]*domain.Booking),
		history:  make(map[int64][]*domain.StatusChange),
		services: make(map[int64]*domain.Service),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type txKey struct{}

// tx журнал отмены изменений текущей транзакции
type tx struct {
	store *Store
	undo  []func()
}

func (t *tx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

// Do выполняет fn атомарно: при ошибке все изменения откатываются
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.run(ctx, fn)
}

// DoSerializable то же, что Do: транзакции в памяти всегда последовательны
func (s *Store) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.run(ctx, fn)
}

func (s *Store) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{store: s}
	defer func() {
		if p := recover(); p != nil {
			t.rollback()
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		t.rollback()
		return err
	}
	return nil
}

func (s *Store) currentTx(ctx context.Context) *tx {
	t, ok := ctx.Value(txKey{}).(*tx)
	if !ok || t.store != s {
		return nil
	}
	return t
}

func (s *Store) inTx(ctx context.Context) bool {
	return s.currentTx(ctx) != nil
}

// lock берёт мьютекс, если вызов не внутри транзакции этого хранилища
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// onRollback регистрирует отмену изменения для текущей транзакции
func (s *Store) onRollback(ctx context.Context, undo func()) {
	if t := s.currentTx(ctx); t != nil {
		t.undo = append(t.undo, undo)
	}
}
