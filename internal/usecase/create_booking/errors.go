package create_booking

import (
	"fmt"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("create_booking: invalid input data: %w", domain.ErrValidation)

	// ErrInvalidDate возвращается, когда дата бронирования в прошлом
	ErrInvalidDate = fmt.Errorf("create_booking: booking date is in the past: %w", domain.ErrValidation)

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advanceBookingDays
	ErrDateTooFarInFuture = fmt.Errorf("create_booking: date is too far in the future: %w", domain.ErrValidation)

	// ErrInvalidTimeSlot возвращается, когда метки нет в шаблоне слотов
	ErrInvalidTimeSlot = fmt.Errorf("create_booking: invalid time slot: %w", domain.ErrValidation)

	// ErrTooLateToBook возвращается, когда попытка забронировать слот нарушает minBookingNoticeMinutes
	ErrTooLateToBook = fmt.Errorf("create_booking: too late to book this slot: %w", domain.ErrValidation)

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = fmt.Errorf("create_booking: service not found: %w", domain.ErrValidation)

	// ErrServiceInactive возвращается, когда услуга снята с продажи
	ErrServiceInactive = fmt.Errorf("create_booking: service is not active: %w", domain.ErrValidation)

	// ErrCustomerNotFound возвращается, когда клиент не найден в UserService
	ErrCustomerNotFound = fmt.Errorf("create_booking: customer not found: %w", domain.ErrValidation)

	// ErrInvalidCustomer возвращается, когда пользователь не является активным клиентом
	ErrInvalidCustomer = fmt.Errorf("create_booking: user is not an active customer: %w", domain.ErrValidation)

	// ErrUnsupportedPaymentMethod возвращается при неизвестном способе оплаты
	ErrUnsupportedPaymentMethod = fmt.Errorf("create_booking: unsupported payment method: %w", domain.ErrValidation)

	// ErrAccessDenied возвращается, когда участник не может бронировать от имени клиента
	ErrAccessDenied = fmt.Errorf("create_booking: actor may not book for this customer: %w", domain.ErrForbidden)

	// ErrSlotNotAvailable возвращается, когда выбранный слот недоступен (все места заняты)
	ErrSlotNotAvailable = fmt.Errorf("create_booking: slot is not available: %w", domain.ErrSlotUnavailable)

	// ErrSlotBusy возвращается, когда не дождались блокировки слота
	ErrSlotBusy = fmt.Errorf("create_booking: slot is being booked by another request: %w", domain.ErrConflict)

	// ErrConflict возвращается при конфликте сериализации транзакций
	ErrConflict = fmt.Errorf("create_booking: concurrent modification: %w", domain.ErrConflict)

	// ErrInternal возвращается при сбое хранилища
	ErrInternal = fmt.Errorf("create_booking: internal error: %w", domain.ErrStoreUnavailable)
)
