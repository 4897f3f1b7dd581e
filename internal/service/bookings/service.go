package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/septic-booking-service/internal/domain"
	"github.com/m04kA/septic-booking-service/internal/service/bookings/models"
)

// Service сервис выборок и отчётов по бронированиям
type Service struct {
	bookingRepo BookingRepository
	userClient  UserServiceClient
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	userClient UserServiceClient,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		userClient:  userClient,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID.
// Видеть бронирование может владелец, назначенный техник и персонал.
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for actor=%d(%s)", id, actor.ID, actor.Role)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	// Проверяем права доступа
	if err := checkAccess(booking, actor); err != nil {
		s.logger.Warn("GetByID: access denied for actor=%d(%s) to booking id=%d", actor.ID, actor.Role, id)
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return models.FromDomainBooking(booking), nil
}

// GetHistory возвращает журнал статусов бронирования
func (s *Service) GetHistory(ctx context.Context, id int64, actor domain.Actor) (*models.HistoryResponse, error) {
	s.logger.Info("GetHistory: fetching history of booking id=%d for actor=%d(%s)", id, actor.ID, actor.Role)

	booking, err := s.getBooking(ctx, "GetHistory", id)
	if err != nil {
		return nil, err
	}

	if err := checkAccess(booking, actor); err != nil {
		s.logger.Warn("GetHistory: access denied for actor=%d(%s) to booking id=%d", actor.ID, actor.Role, id)
		return nil, err
	}

	changes, err := s.bookingRepo.GetHistory(ctx, id)
	if err != nil {
		s.logger.Error("GetHistory: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetHistory - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainHistory(id, changes), nil
}

// GetCustomerBookings история бронирований клиента, от новых к старым.
// Клиент видит только свои бронирования, персонал любые.
func (s *Service) GetCustomerBookings(ctx context.Context, req *models.GetCustomerBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetCustomerBookings: fetching bookings for customer=%d by actor=%d(%s), status=%v",
		req.CustomerID, req.Actor.ID, req.Actor.Role, req.Status)

	if req.CustomerID <= 0 {
		return nil, fmt.Errorf("%w: customerId must be positive", ErrInvalidInput)
	}

	isOwner := req.Actor.Role == domain.RoleCustomer && req.Actor.ID == req.CustomerID
	if !isOwner && !req.Actor.Role.IsBackOffice() {
		s.logger.Warn("GetCustomerBookings: access denied for actor=%d(%s) to customer=%d",
			req.Actor.ID, req.Actor.Role, req.CustomerID)
		return nil, ErrAccessDenied
	}

	filter, err := s.toFilter("GetCustomerBookings", req.ListFilter)
	if err != nil {
		return nil, err
	}
	filter.CustomerID = &req.CustomerID
	filter.IncludeInactive = true

	return s.list(ctx, "GetCustomerBookings", filter)
}

// GetTechnicianBookings бронирования, назначенные технику, от новых к старым.
// Техник видит только свои назначения, персонал любые.
func (s *Service) GetTechnicianBookings(ctx context.Context, req *models.GetTechnicianBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetTechnicianBookings: fetching bookings for technician=%d by actor=%d(%s), status=%v",
		req.TechnicianID, req.Actor.ID, req.Actor.Role, req.Status)

	if req.TechnicianID <= 0 {
		return nil, fmt.Errorf("%w: technicianId must be positive", ErrInvalidInput)
	}

	isSelf := req.Actor.Role == domain.RoleTechnician && req.Actor.ID == req.TechnicianID
	if !isSelf && !req.Actor.Role.IsBackOffice() {
		s.logger.Warn("GetTechnicianBookings: access denied for actor=%d(%s) to technician=%d",
			req.Actor.ID, req.Actor.Role, req.TechnicianID)
		return nil, ErrAccessDenied
	}

	filter, err := s.toFilter("GetTechnicianBookings", req.ListFilter)
	if err != nil {
		return nil, err
	}
	filter.TechnicianID = &req.TechnicianID
	filter.IncludeInactive = true

	return s.list(ctx, "GetTechnicianBookings", filter)
}

// ListBookings выборка бронирований для персонала с гибкой фильтрацией
//
// Примеры использования:
// - Все активные бронирования: ListBookings(ctx, &ListBookingsRequest{Actor: staff})
// - Бронирования на дату: StartDate и EndDate указывают на одну дату
// - Только подтверждённые: Status = "confirmed"
// - Включая завершённые и отменённые: IncludeInactive = true
func (s *Service) ListBookings(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	filter, err := s.staffFilter("ListBookings", req)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, "ListBookings", filter)
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: bookingId must be positive", ErrInvalidInput)
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

func (s *Service) list(ctx context.Context, op string, filter domain.BookingFilter) (*models.BookingListResponse, error) {
	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("%s: repository error: %v", op, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	s.logger.Info("%s: successfully fetched %d bookings", op, len(bookings))
	return models.FromDomainBookingList(bookings), nil
}

// staffFilter проверяет права персонала и собирает фильтр
func (s *Service) staffFilter(op string, req *models.ListBookingsRequest) (domain.BookingFilter, error) {
	logMsg := fmt.Sprintf("%s: actor=%d(%s)", op, req.Actor.ID, req.Actor.Role)
	if req.CustomerID != nil {
		logMsg += fmt.Sprintf(", customer=%d", *req.CustomerID)
	}
	if req.TechnicianID != nil {
		logMsg += fmt.Sprintf(", technician=%d", *req.TechnicianID)
	}
	if req.StartDate != nil && req.EndDate != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info("%s", logMsg)

	if !req.Actor.Role.IsBackOffice() {
		s.logger.Warn("%s: access denied for actor=%d(%s)", op, req.Actor.ID, req.Actor.Role)
		return domain.BookingFilter{}, ErrAccessDenied
	}

	filter, err := s.toFilter(op, req.ListFilter)
	if err != nil {
		return filter, err
	}
	filter.CustomerID = req.CustomerID
	filter.TechnicianID = req.TechnicianID
	return filter, nil
}

func (s *Service) toFilter(op string, f models.ListFilter) (domain.BookingFilter, error) {
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		s.logger.Warn("%s: start date %s is after end date %s", op,
			f.StartDate.Format(domain.DateFormat), f.EndDate.Format(domain.DateFormat))
		return domain.BookingFilter{}, ErrInvalidTimeRange
	}

	filter, err := f.ToDomainFilter()
	if err != nil {
		s.logger.Warn("%s: invalid filter: %v", op, err)
		return filter, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return filter, nil
}

// checkAccess проверяет, что участник имеет доступ к бронированию
func checkAccess(booking *domain.Booking, actor domain.Actor) error {
	switch actor.Role {
	case domain.RoleStaff, domain.RoleManager:
		return nil
	case domain.RoleCustomer:
		if booking.CustomerID == actor.ID {
			return nil
		}
	case domain.RoleTechnician:
		if booking.TechnicianID != nil && *booking.TechnicianID == actor.ID {
			return nil
		}
	}
	return ErrAccessDenied
}
