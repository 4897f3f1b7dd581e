package bookings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/m04kA/septic-booking-service/internal/domain"
	"github.com/m04kA/septic-booking-service/internal/integrations/userservice"
	"github.com/m04kA/septic-booking-service/internal/service/bookings/models"
)

const (
	exportSheetName = "Bookings"

	// maxParallelUserLookups ограничение параллельных запросов к UserService при экспорте
	maxParallelUserLookups = 8
)

var exportHeaders = []string{
	"ID", "Дата", "Время", "Статус", "Услуга", "Цена", "Часы",
	"Клиент", "Телефон", "Техник", "Оплата", "Причина", "Фотоотчёт", "Создано",
}

// ExportXLSX выгружает отфильтрованные бронирования в Excel.
// Доступно только менеджеру. Имена клиентов и техников подтягиваются из UserService;
// при его недоступности колонки остаются пустыми.
func (s *Service) ExportXLSX(ctx context.Context, req *models.ListBookingsRequest) ([]byte, error) {
	if req.Actor.Role != domain.RoleManager {
		s.logger.Warn("ExportXLSX: access denied for actor=%d(%s)", req.Actor.ID, req.Actor.Role)
		return nil, ErrAccessDenied
	}

	filter, err := s.staffFilter("ExportXLSX", req)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ExportXLSX: repository error: %v", err)
		return nil, fmt.Errorf("%w: ExportXLSX - repository error: %v", ErrInternal, err)
	}

	users := s.resolveUsers(ctx, bookings)

	data, err := buildWorkbook(bookings, users)
	if err != nil {
		s.logger.Error("ExportXLSX: failed to build workbook: %v", err)
		return nil, fmt.Errorf("%w: ExportXLSX - build workbook: %v", ErrInternal, err)
	}

	s.logger.Info("ExportXLSX: exported %d bookings (%d bytes)", len(bookings), len(data))
	return data, nil
}

// resolveUsers параллельно получает данные клиентов и техников.
// Ошибки UserService не прерывают выгрузку.
func (s *Service) resolveUsers(ctx context.Context, bookings []*domain.Booking) map[int64]*domain.User {
	ids := make(map[int64]struct{})
	for _, b := range bookings {
		ids[b.CustomerID] = struct{}{}
		if b.TechnicianID != nil {
			ids[*b.TechnicianID] = struct{}{}
		}
	}

	var (
		mu    sync.Mutex
		users = make(map[int64]*domain.User, len(ids))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUserLookups)

	for id := range ids {
		id := id
		g.Go(func() error {
			user, err := s.userClient.GetUserWithGracefulDegradation(gctx, id)
			if err != nil {
				if !userservice.IsNotFound(err) && !errors.Is(err, userservice.ErrServiceDegraded) {
					s.logger.Warn("ExportXLSX: failed to resolve user id=%d: %v", id, err)
				}
				return nil
			}
			mu.Lock()
			users[id] = user
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return users
}

func buildWorkbook(bookings []*domain.Booking, users map[int64]*domain.User) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := f.SetSheetRow(exportSheetName, "A1", &exportHeaders); err != nil {
		return nil, fmt.Errorf("write headers: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
		_ = f.SetCellStyle(exportSheetName, "A1", lastCol+"1", headerStyle)
	}

	for i, b := range bookings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := bookingRow(b, users)
		if err := f.SetSheetRow(exportSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write booking id=%d: %w", b.ID, err)
		}
	}

	_ = f.SetColWidth(exportSheetName, "A", "A", 8)
	_ = f.SetColWidth(exportSheetName, "B", "N", 18)

	// Удаляем стандартный лист
	_ = f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func bookingRow(b *domain.Booking, users map[int64]*domain.User) []interface{} {
	var customerName, customerPhone, technicianName, reason string

	if u, ok := users[b.CustomerID]; ok {
		customerName = u.FullName
		customerPhone = u.Phone
	}
	if b.TechnicianID != nil {
		technicianName = fmt.Sprintf("#%d", *b.TechnicianID)
		if u, ok := users[*b.TechnicianID]; ok {
			technicianName = u.FullName
		}
	}
	if b.CancellationReason != nil {
		reason = *b.CancellationReason
	}

	return []interface{}{
		b.ID,
		b.BookingDate.Format(domain.DateFormat),
		b.SlotTime.String(),
		string(b.Status),
		b.ServiceName,
		float64(b.Price) / 100,
		b.DurationHours,
		customerName,
		customerPhone,
		technicianName,
		string(b.PaymentMethod),
		reason,
		len(b.ProofImages),
		b.CreatedAt.Format("2006-01-02 15:04"),
	}
}
