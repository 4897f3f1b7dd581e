package booking

import (
	"errors"
	"fmt"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = fmt.Errorf("booking.repository: booking not found: %w", domain.ErrNotFound)

	// ErrVersionConflict бронирование изменено другой транзакцией между чтением и записью
	ErrVersionConflict = fmt.Errorf("booking.repository: version conflict: %w", domain.ErrConflict)

	// ErrNotInTransaction блокировка слота вызвана вне транзакции
	ErrNotInTransaction = errors.New("booking.repository: slot lock requires a transaction")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
