package userservice

import (
	"errors"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

var (
	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("userservice client: user not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("userservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("userservice client: invalid response")

	// ErrServiceDegraded UserService недоступен, вызывающий может продолжить без данных пользователя
	ErrServiceDegraded = errors.New("userservice unavailable: graceful degradation applied")
)

// IsNotFound проверяет, что пользователь отсутствует
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, domain.ErrNotFound)
}
