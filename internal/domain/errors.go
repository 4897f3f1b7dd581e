package domain

import "errors"

// Базовая таксономия ошибок ядра бронирования.
// Ошибки пакетов usecase/service оборачивают их, поэтому errors.Is работает на обоих уровнях.
var (
	// ErrValidation некорректные входные данные, хранилище не затрагивается
	ErrValidation = errors.New("validation error")

	// ErrSlotUnavailable слот заполнен на момент создания бронирования
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrInvalidTransition переход статуса не разрешён из текущего состояния
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrForbidden роль участника не может выполнить операцию
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound бронирование, услуга или пользователь не найдены
	ErrNotFound = errors.New("not found")

	// ErrConflict бронирование изменено параллельным запросом
	ErrConflict = errors.New("concurrent modification")

	// ErrStoreUnavailable сбой хранилища
	ErrStoreUnavailable = errors.New("store unavailable")
)
