package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

// validateRequest валидирует входные данные запроса и нормализует метку слота
func validateRequest(req *Request) (domain.SlotLabel, error) {
	if req == nil {
		return "", fmt.Errorf("%w: request is required", ErrInvalidInput)
	}

	if !req.Actor.Role.IsValid() || req.Actor.ID <= 0 {
		return "", fmt.Errorf("%w: actor is required", ErrInvalidInput)
	}

	if req.CustomerID <= 0 {
		return "", fmt.Errorf("%w: customerId must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return "", fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return "", fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.SlotTime == "" {
		return "", fmt.Errorf("%w: time is required", ErrInvalidInput)
	}

	label, err := domain.ParseSlotLabel(req.SlotTime)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTimeSlot, err)
	}

	if !domain.PaymentMethod(req.PaymentMethod).IsSupported() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPaymentMethod, req.PaymentMethod)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return "", fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return label, nil
}

// validateActor проверяет, что участник может бронировать для указанного клиента
func validateActor(actor domain.Actor, customerID int64) error {
	switch {
	case actor.Role == domain.RoleCustomer && actor.ID == customerID:
		return nil
	case actor.Role.IsBackOffice():
		return nil
	default:
		return ErrAccessDenied
	}
}

// validateSlot проверяет дату и метку по календарю
func validateSlot(cal domain.Calendar, date time.Time, label domain.SlotLabel, now time.Time) error {
	if domain.IsDateInPast(date, now) {
		return ErrInvalidDate
	}

	if !cal.IsDateBookable(date, now) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, cal.AdvanceBookingDays)
	}

	if !cal.HasLabel(label) {
		return fmt.Errorf("%w: %s is not in the daily template", ErrInvalidTimeSlot, label)
	}

	if !cal.MeetsNotice(date, label, now) {
		return fmt.Errorf("%w: must book at least %d minutes in advance", ErrTooLateToBook, cal.MinBookingNoticeMinutes)
	}

	return nil
}

// validateCustomer проверяет учётную запись клиента
func validateCustomer(user *domain.User) error {
	if user.Role != domain.RoleCustomer || !user.IsActive {
		return ErrInvalidCustomer
	}
	return nil
}
