package catalog

import (
	"fmt"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = fmt.Errorf("catalog: service not found: %w", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда у участника нет прав на изменение каталога
	ErrAccessDenied = fmt.Errorf("catalog: access denied: %w", domain.ErrForbidden)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("catalog: invalid input data: %w", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = fmt.Errorf("catalog: internal error: %w", domain.ErrStoreUnavailable)
)
