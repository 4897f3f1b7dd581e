package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/septic-booking-service/internal/domain"
	"github.com/m04kA/septic-booking-service/pkg/psqlbuilder"
	"github.com/m04kA/septic-booking-service/pkg/txmanager"
)

var bookingColumns = []string{
	"id",
	"customer_id",
	"service_id",
	"technician_id",
	"booking_date",
	"slot_time",
	"status",
	"service_name",
	"price",
	"duration_hours",
	"payment_method",
	"notes",
	"proof_images",
	"cancellation_reason",
	"version",
	"created_at",
	"updated_at",
}

var historyColumns = []string{
	"id",
	"booking_id",
	"from_status",
	"to_status",
	"actor_id",
	"actor_role",
	"reason",
	"created_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db  DBExecutor
	loc *time.Location
}

// NewRepository создает новый экземпляр репозитория бронирований.
// loc часовой пояс, в котором интерпретируются календарные даты.
func NewRepository(db DBExecutor, loc *time.Location) *Repository {
	if loc == nil {
		loc = time.UTC
	}
	return &Repository{db: db, loc: loc}
}

// Create создает новое бронирование с версией 1.
// Если в контексте передана активная транзакция, использует её.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"customer_id",
			"service_id",
			"technician_id",
			"booking_date",
			"slot_time",
			"status",
			"service_name",
			"price",
			"duration_hours",
			"payment_method",
			"notes",
			"proof_images",
			"version",
		).
		Values(
			booking.CustomerID,
			booking.ServiceID,
			booking.TechnicianID,
			booking.BookingDate.Format(domain.DateFormat),
			booking.SlotTime,
			booking.Status,
			booking.ServiceName,
			booking.Price,
			booking.DurationHours,
			booking.PaymentMethod,
			booking.Notes,
			toArray(booking.ProofImages),
			1,
		).
		Suffix("RETURNING id, version, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&booking.Version,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID.
// Внутри транзакции строка блокируется (FOR UPDATE) до её завершения.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if txmanager.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := r.scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// LockSlot берёт транзакционную advisory блокировку на слот (дата + метка).
// Освобождается автоматически при COMMIT/ROLLBACK.
func (r *Repository) LockSlot(ctx context.Context, date time.Time, label domain.SlotLabel) error {
	if !txmanager.IsInTransaction(ctx) {
		return ErrNotInTransaction
	}
	executor := txmanager.GetExecutor(ctx, r.db)

	key := fmt.Sprintf("bookings:%s:%s", date.Format(domain.DateFormat), label)
	if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key); err != nil {
		return fmt.Errorf("%w: LockSlot - advisory lock %s: %w", ErrExecQuery, key, err)
	}

	return nil
}

// CountActiveInSlot считает бронирования в нетерминальных статусах, занимающие слот
func (r *Repository) CountActiveInSlot(ctx context.Context, date time.Time, label domain.SlotLabel) (int, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{
			"booking_date": date.Format(domain.DateFormat),
			"slot_time":    label,
			"status":       statusStrings(domain.ActiveStatuses),
		}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountActiveInSlot - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountActiveInSlot - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

// ListActiveByDate получает бронирования на дату, занимающие слоты
func (r *Repository) ListActiveByDate(ctx context.Context, date time.Time) ([]*domain.Booking, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{
			"booking_date": date.Format(domain.DateFormat),
			"status":       statusStrings(domain.ActiveStatuses),
		}).
		OrderBy("created_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveByDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveByDate - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// List получает бронирования по фильтру.
// Сортировка: дата обслуживания по убыванию, затем время создания по убыванию.
//
// Примеры:
//
//	// Активные бронирования клиента
//	filter := domain.BookingFilter{CustomerID: ptr.Ptr(int64(10))}
//
//	// Все бронирования техника за июнь, включая завершённые
//	filter := domain.BookingFilter{TechnicianID: &techID, StartDate: &june1, EndDate: &june30, IncludeInactive: true}
func (r *Repository) List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).From("bookings")

	if filter.CustomerID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.TechnicianID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"technician_id": *filter.TechnicianID})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"booking_date": filter.StartDate.Format(domain.DateFormat)})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"booking_date": filter.EndDate.Format(domain.DateFormat)})
	}

	// Конкретный статус важнее флага IncludeInactive
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)})
	}

	query, args, err := selectBuilder.
		OrderBy("booking_date DESC", "created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// ApplyLifecycle атомарно применяет переход статуса с проверкой версии.
// Статус, техник, фотоотчёт и причина записываются одним UPDATE.
func (r *Repository) ApplyLifecycle(ctx context.Context, upd *domain.LifecycleUpdate) (*domain.Booking, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", upd.Status).
		Set("technician_id", upd.TechnicianID).
		Set("proof_images", toArray(upd.ProofImages)).
		Set("cancellation_reason", upd.CancellationReason).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": upd.BookingID, "version": upd.ExpectedVersion}).
		Suffix("RETURNING " + strings.Join(bookingColumns, ", ")).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ApplyLifecycle - build update query: %v", ErrBuildQuery, err)
	}

	booking, err := r.scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: booking_id=%d expected_version=%d", ErrVersionConflict, upd.BookingID, upd.ExpectedVersion)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: ApplyLifecycle - execute update: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// AppendHistory добавляет запись в журнал переходов статуса
func (r *Repository) AppendHistory(ctx context.Context, change *domain.StatusChange) error {
	executor := txmanager.GetExecutor(ctx, r.db)

	var from *string
	if change.FromStatus != nil {
		s := string(*change.FromStatus)
		from = &s
	}

	query, args, err := psqlbuilder.Insert("booking_status_history").
		Columns("booking_id", "from_status", "to_status", "actor_id", "actor_role", "reason").
		Values(change.BookingID, from, change.ToStatus, change.ActorID, change.ActorRole, change.Reason).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: AppendHistory - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&change.ID, &change.CreatedAt); err != nil {
		return fmt.Errorf("%w: AppendHistory - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// GetHistory журнал переходов бронирования в хронологическом порядке
func (r *Repository) GetHistory(ctx context.Context, bookingID int64) ([]*domain.StatusChange, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(historyColumns...).
		From("booking_status_history").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetHistory - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetHistory - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	history := make([]*domain.StatusChange, 0)
	for rows.Next() {
		var change domain.StatusChange
		if err := rows.Scan(
			&change.ID,
			&change.BookingID,
			&change.FromStatus,
			&change.ToStatus,
			&change.ActorID,
			&change.ActorRole,
			&change.Reason,
			&change.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: GetHistory - scan row: %w", ErrScanRow, err)
		}
		history = append(history, &change)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetHistory - rows error: %w", ErrScanRow, err)
	}

	return history, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		booking     domain.Booking
		proofImages pq.StringArray
	)

	err := row.Scan(
		&booking.ID,
		&booking.CustomerID,
		&booking.ServiceID,
		&booking.TechnicianID,
		&booking.BookingDate,
		&booking.SlotTime,
		&booking.Status,
		&booking.ServiceName,
		&booking.Price,
		&booking.DurationHours,
		&booking.PaymentMethod,
		&booking.Notes,
		&proofImages,
		&booking.CancellationReason,
		&booking.Version,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// DATE приходит как полночь UTC, переносим в часовой пояс бизнеса
	y, m, d := booking.BookingDate.Date()
	booking.BookingDate = time.Date(y, m, d, 0, 0, 0, 0, r.loc)

	if len(proofImages) > 0 {
		booking.ProofImages = []string(proofImages)
	}

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %w", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}

func statusStrings(statuses []domain.BookingStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}

func toArray(values []string) pq.StringArray {
	if values == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(values)
}
