package slotlock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrLockTimeout не удалось захватить блокировку за отведённое время
	ErrLockTimeout = errors.New("slotlock: timed out waiting for lock")

	// ErrLockBackend сбой хранилища блокировок
	ErrLockBackend = errors.New("slotlock: backend error")
)

// Locker взаимное исключение по ключу слота (дата + метка)
type Locker interface {
	// Lock блокирует ключ и возвращает функцию освобождения
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Key формирует ключ блокировки слота
func Key(date time.Time, label string) string {
	return fmt.Sprintf("slot:%s:%s", date.Format("2006-01-02"), label)
}

// Local блокировки внутри одного процесса
type Local struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{} // буфер 1: занятое место означает захваченную блокировку
	refs int
}

// NewLocal создает локальный Locker
func NewLocal() *Local {
	return &Local{locks: make(map[string]*entry)}
}

// Lock ждёт освобождения ключа или отмены контекста
func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, fmt.Errorf("%w: %s: %w", ErrLockTimeout, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(key, e)
		})
	}, nil
}

func (l *Local) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}
