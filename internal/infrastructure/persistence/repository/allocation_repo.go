package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ledgerline/settlement/internal/application/port"
	"github.com/ledgerline/settlement/internal/domain/entity"
	"github.com/ledgerline/settlement/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// AllocationRepository implements port.AllocationRepository
type AllocationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAllocationRepository creates a new allocation repository
func NewAllocationRepository(db *sql.DB, logger *zap.Logger) port.AllocationRepository {
	return &AllocationRepository{
		db:     db,
		logger: logger,
	}
}

// CreateMany inserts the allocations of one payment in a single statement
func (r *AllocationRepository) CreateMany(ctx context.Context, allocations []*entity.Allocation) error {
	if len(allocations) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO allocations (payment_id, obligation_id, amount_cents, created_at) VALUES `)

	args := make([]interface{}, 0, len(allocations)*4)
	for i, a := range allocations {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?)")
		args = append(args, a.PaymentID, a.ObligationID, a.AmountCents, a.CreatedAt)
	}

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, sb.String(), args...)
	if err != nil {
		r.logger.Error("Failed to create allocations", zap.Error(err))
		return fmt.Errorf("failed to create allocations: %w", err)
	}
	return nil
}

// ListByPayment retrieves a payment's allocations joined with the current
// state of their obligations
func (r *AllocationRepository) ListByPayment(ctx context.Context, paymentID int64) ([]*entity.AllocationWithObligation, error) {
	query := `
		SELECT a.id, a.payment_id, a.obligation_id, a.amount_cents, a.created_at,
			o.id, o.counterparty_id, o.total_cents, o.paid_cents, o.balance_cents,
			o.status, o.issued_at, o.last_updated, o.created_at
		FROM allocations a
		JOIN obligations o ON o.id = a.obligation_id
		WHERE a.payment_id = ?
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, paymentID)
	if err != nil {
		r.logger.Error("Failed to load allocations", zap.Int64("payment_id", paymentID), zap.Error(err))
		return nil, fmt.Errorf("failed to load allocations: %w", err)
	}
	defer rows.Close()

	var result []*entity.AllocationWithObligation
	for rows.Next() {
		var row entity.AllocationWithObligation
		var obligationStatus string

		err := rows.Scan(
			&row.Allocation.ID,
			&row.Allocation.PaymentID,
			&row.Allocation.ObligationID,
			&row.Allocation.AmountCents,
			&row.Allocation.CreatedAt,
			&row.Obligation.ID,
			&row.Obligation.CounterpartyID,
			&row.Obligation.TotalCents,
			&row.Obligation.PaidCents,
			&row.Obligation.BalanceCents,
			&obligationStatus,
			&row.Obligation.IssuedAt,
			&row.Obligation.LastUpdated,
			&row.Obligation.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}

		row.Obligation.Status = entity.ObligationStatus(obligationStatus)
		result = append(result, &row)
	}
	return result, rows.Err()
}

// DeleteByPayment removes every allocation of a payment
func (r *AllocationRepository) DeleteByPayment(ctx context.Context, paymentID int64) error {
	query := `DELETE FROM allocations WHERE payment_id = ?`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, paymentID)
	if err != nil {
		r.logger.Error("Failed to delete allocations", zap.Int64("payment_id", paymentID), zap.Error(err))
		return fmt.Errorf("failed to delete allocations: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.AllocationRepository = (*AllocationRepository)(nil)
