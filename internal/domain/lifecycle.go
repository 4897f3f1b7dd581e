package domain

import (
	"fmt"
	"strings"
)

var (
	// ErrProofRequired завершение без фотоотчёта
	ErrProofRequired = fmt.Errorf("%w: proof images are required to complete a booking", ErrValidation)

	// ErrTechnicianRequired начало работ без назначенного техника
	ErrTechnicianRequired = fmt.Errorf("%w: technician must be assigned", ErrValidation)

	// ErrUnexpectedPayload данные, неприменимые к целевому статусу
	ErrUnexpectedPayload = fmt.Errorf("%w: payload is not applicable to the target status", ErrValidation)

	// ErrNotOwner клиент пытается изменить чужое бронирование
	ErrNotOwner = fmt.Errorf("%w: booking belongs to another customer", ErrForbidden)

	// ErrNotAssigned техник не назначен на бронирование
	ErrNotAssigned = fmt.Errorf("%w: booking is not assigned to this technician", ErrForbidden)
)

// Transition пара (из, в) машины состояний
type Transition struct {
	From BookingStatus
	To   BookingStatus
}

// allowedTransitions таблица допустимых переходов.
// Из терминальных статусов переходов нет.
var allowedTransitions = map[BookingStatus]map[BookingStatus]bool{
	StatusPending:    {StatusCancelled: true, StatusConfirmed: true, StatusDeclined: true},
	StatusConfirmed:  {StatusInProgress: true, StatusDeclined: true},
	StatusInProgress: {StatusCompleted: true, StatusDeclined: true},
	StatusCompleted:  {},
	StatusCancelled:  {},
	StatusDeclined:   {},
}

// staffTransitions переходы, доступные персоналу и менеджеру
var staffTransitions = map[Transition]bool{
	{StatusPending, StatusConfirmed}:    true,
	{StatusPending, StatusDeclined}:     true,
	{StatusConfirmed, StatusInProgress}: true,
	{StatusConfirmed, StatusDeclined}:   true,
	{StatusInProgress, StatusDeclined}:  true,
}

// roleCapabilities какие переходы разрешены каждой роли
var roleCapabilities = map[Role]map[Transition]bool{
	RoleCustomer: {
		{StatusPending, StatusCancelled}: true,
	},
	RoleStaff:   staffTransitions,
	RoleManager: staffTransitions,
	RoleTechnician: {
		{StatusConfirmed, StatusInProgress}: true,
		{StatusInProgress, StatusCompleted}: true,
	},
}

// CanTransition проверяет, что пара (from, to) есть в таблице переходов
func CanTransition(from, to BookingStatus) bool {
	targets, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// RoleCanTransition проверяет, что роль может выполнить переход
func RoleCanTransition(role Role, from, to BookingStatus) bool {
	caps, ok := roleCapabilities[role]
	if !ok {
		return false
	}
	return caps[Transition{From: from, To: to}]
}

// TransitionPayload дополнительные данные перехода
type TransitionPayload struct {
	TechnicianID *int64
	ProofImages  []string
	Reason       *string
}

// PlanTransition проверяет переход и формирует атомарное изменение бронирования.
// Бронирование не изменяется; версия и время записи проставляются хранилищем.
func PlanTransition(b *Booking, to BookingStatus, actor Actor, payload TransitionPayload) (*LifecycleUpdate, error) {
	if !to.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}
	if !actor.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, actor.Role)
	}

	// 1. Таблица переходов
	if !CanTransition(b.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, to)
	}

	// 2. Права роли
	if !RoleCanTransition(actor.Role, b.Status, to) {
		return nil, fmt.Errorf("%w: role %s may not move booking %s -> %s", ErrForbidden, actor.Role, b.Status, to)
	}

	// 3. Принадлежность бронирования
	switch actor.Role {
	case RoleCustomer:
		if b.CustomerID != actor.ID {
			return nil, ErrNotOwner
		}
	case RoleTechnician:
		if b.TechnicianID == nil || *b.TechnicianID != actor.ID {
			return nil, ErrNotAssigned
		}
	}

	// 4. Данные перехода
	if err := validatePayload(to, actor, payload); err != nil {
		return nil, err
	}

	update := &LifecycleUpdate{
		BookingID:          b.ID,
		ExpectedVersion:    b.Version,
		Status:             to,
		TechnicianID:       b.TechnicianID,
		CancellationReason: b.CancellationReason,
		Change: StatusChange{
			BookingID:  b.ID,
			FromStatus: statusPtr(b.Status),
			ToStatus:   to,
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Reason:     payload.Reason,
		},
	}

	if payload.TechnicianID != nil {
		id := *payload.TechnicianID
		update.TechnicianID = &id
	}

	switch to {
	case StatusInProgress:
		if update.TechnicianID == nil {
			return nil, ErrTechnicianRequired
		}
	case StatusCompleted:
		update.ProofImages = append([]string(nil), payload.ProofImages...)
	case StatusCancelled, StatusDeclined:
		if payload.Reason != nil {
			reason := *payload.Reason
			update.CancellationReason = &reason
		}
	}

	return update, nil
}

// validatePayload проверяет, что данные перехода применимы к целевому статусу
func validatePayload(to BookingStatus, actor Actor, payload TransitionPayload) error {
	if payload.TechnicianID != nil {
		if to != StatusConfirmed && to != StatusInProgress {
			return fmt.Errorf("%w: technician can only be assigned on confirm or start", ErrUnexpectedPayload)
		}
		if !actor.Role.IsBackOffice() {
			return fmt.Errorf("%w: only staff can assign a technician", ErrForbidden)
		}
		if *payload.TechnicianID <= 0 {
			return fmt.Errorf("%w: technicianId must be positive", ErrValidation)
		}
	}

	if to == StatusCompleted {
		if len(payload.ProofImages) == 0 {
			return ErrProofRequired
		}
		if len(payload.ProofImages) > MaxProofImages {
			return fmt.Errorf("%w: at most %d proof images allowed", ErrValidation, MaxProofImages)
		}
		for _, ref := range payload.ProofImages {
			if strings.TrimSpace(ref) == "" {
				return fmt.Errorf("%w: proof image reference must not be empty", ErrValidation)
			}
			if len(ref) > MaxProofImageRefLength {
				return fmt.Errorf("%w: proof image reference is too long", ErrValidation)
			}
		}
	} else if len(payload.ProofImages) > 0 {
		return fmt.Errorf("%w: proof images are only accepted on completion", ErrUnexpectedPayload)
	}

	if payload.Reason != nil {
		if to != StatusCancelled && to != StatusDeclined {
			return fmt.Errorf("%w: reason is only accepted on cancel or decline", ErrUnexpectedPayload)
		}
		if len(*payload.Reason) > MaxReasonLength {
			return fmt.Errorf("%w: reason exceeds %d characters", ErrValidation, MaxReasonLength)
		}
	}

	return nil
}

// NewCreationChange запись журнала о создании бронирования
func NewCreationChange(b *Booking, actor Actor) StatusChange {
	return StatusChange{
		BookingID: b.ID,
		ToStatus:  b.Status,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
	}
}

func statusPtr(s BookingStatus) *BookingStatus {
	return &s
}
