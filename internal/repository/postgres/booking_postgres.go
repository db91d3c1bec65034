package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
	"github.com/itaymdigi/coldtherapylanding/internal/repository"
)

const bookingColumns = `
	id, user_id, package_id, full_name, email, phone, locale, participants,
	preferred_at, notes, status, created_at, updated_at`

type bookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new PostgreSQL booking repository
func NewBookingRepository(db *sqlx.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `
		) VALUES (
			:id, :user_id, :package_id, :full_name, :email, :phone, :locale, :participants,
			:preferred_at, :notes, :status, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var booking domain.Booking
	err := r.db.GetContext(ctx, &booking, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking not found: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &booking, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, booking *domain.Booking) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`,
		booking.ID, booking.Status, booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	return expectRows(result, "booking")
}

// List filters bookings and orders them by preferred date
func (r *bookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, int, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("preferred_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("preferred_at < $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM bookings`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	pageArgs := append(append([]any{}, args...), limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM bookings%s ORDER BY preferred_at ASC LIMIT $%d OFFSET $%d`,
		bookingColumns, where, len(args)+1, len(args)+2)

	bookings := []*domain.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, total, nil
}
