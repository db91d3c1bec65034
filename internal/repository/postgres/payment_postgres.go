package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
	"github.com/itaymdigi/coldtherapylanding/internal/repository"
)

const paymentColumns = `
	id, booking_id, subscription_id, amount_minor, currency, provider,
	provider_ref, status, created_at, updated_at`

type paymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new PostgreSQL payment repository
func NewPaymentRepository(db *sqlx.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `
		) VALUES (
			:id, :booking_id, :subscription_id, :amount_minor, :currency, :provider,
			:provider_ref, :status, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("payment reference: %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

func (r *paymentRepository) GetByProviderRef(ctx context.Context, provider, ref string) (*domain.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE provider = $1 AND provider_ref = $2`, provider, ref)
}

func (r *paymentRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Payment, error) {
	var payment domain.Payment
	if err := r.db.GetContext(ctx, &payment, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payment not found: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET status = :status, provider_ref = :provider_ref, updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, payment)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("payment reference: %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("failed to update payment: %w", err)
	}

	return expectRows(result, "payment")
}
