package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ledgerline/settlement/internal/application/port"
	"github.com/ledgerline/settlement/internal/domain/entity"
	"github.com/ledgerline/settlement/internal/domain/settlement"
	"github.com/ledgerline/settlement/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

const obligationColumns = `id, counterparty_id, total_cents, paid_cents, balance_cents, status, issued_at, last_updated, created_at`

// ObligationRepository implements port.ObligationRepository
type ObligationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewObligationRepository creates a new obligation repository
func NewObligationRepository(db *sql.DB, logger *zap.Logger) port.ObligationRepository {
	return &ObligationRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves an obligation by ID
func (r *ObligationRepository) GetByID(ctx context.Context, id int64) (*entity.Obligation, error) {
	query := `SELECT ` + obligationColumns + ` FROM obligations WHERE id = ?`

	obligation, err := scanObligation(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get obligation", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get obligation: %w", err)
	}
	return obligation, nil
}

// GetByIDs retrieves the obligations with the given IDs
func (r *ObligationRepository) GetByIDs(ctx context.Context, ids []int64) ([]*entity.Obligation, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	query := `SELECT ` + obligationColumns + ` FROM obligations WHERE id IN (` + placeholders + `)`

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to get obligations", zap.Error(err))
		return nil, fmt.Errorf("failed to get obligations: %w", err)
	}
	defer rows.Close()

	return collectObligations(rows)
}

// ListByCounterparty retrieves a counterparty's obligations ordered by
// issue date ascending, optionally filtered by status
func (r *ObligationRepository) ListByCounterparty(ctx context.Context, counterpartyID int64, statuses []entity.ObligationStatus) ([]*entity.Obligation, error) {
	query := `SELECT ` + obligationColumns + ` FROM obligations WHERE counterparty_id = ?`
	args := []interface{}{counterpartyID}

	if len(statuses) > 0 {
		placeholders := strings.TrimRight(strings.Repeat("?,", len(statuses)), ",")
		query += ` AND status IN (` + placeholders + `)`
		for _, s := range statuses {
			args = append(args, string(s))
		}
	}
	query += ` ORDER BY issued_at ASC`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list obligations", zap.Int64("counterparty_id", counterpartyID), zap.Error(err))
		return nil, fmt.Errorf("failed to list obligations: %w", err)
	}
	defer rows.Close()

	return collectObligations(rows)
}

// ApplyChange writes one planned obligation update. The last_updated guard
// makes the write optimistic: zero affected rows means a concurrent writer
// moved the obligation first.
func (r *ObligationRepository) ApplyChange(ctx context.Context, change settlement.ObligationChange) error {
	query := `
		UPDATE obligations
		SET paid_cents = ?, balance_cents = ?, status = ?, last_updated = ?
		WHERE id = ? AND last_updated = ?
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		change.PaidCents,
		change.BalanceCents,
		string(change.Status),
		time.Now(),
		change.ObligationID,
		change.PriorUpdated,
	)
	if err != nil {
		r.logger.Error("Failed to update obligation", zap.Int64("id", change.ObligationID), zap.Error(err))
		return fmt.Errorf("failed to update obligation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		r.logger.Error("Obligation changed since read", zap.Int64("id", change.ObligationID))
		return settlement.ErrConcurrencyConflict
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanObligation reads one obligation row
func scanObligation(s scanner) (*entity.Obligation, error) {
	var o entity.Obligation
	var status string

	err := s.Scan(
		&o.ID,
		&o.CounterpartyID,
		&o.TotalCents,
		&o.PaidCents,
		&o.BalanceCents,
		&status,
		&o.IssuedAt,
		&o.LastUpdated,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Status = entity.ObligationStatus(status)
	return &o, nil
}

// collectObligations drains a result set of obligation rows
func collectObligations(rows *sql.Rows) ([]*entity.Obligation, error) {
	var obligations []*entity.Obligation
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan obligation: %w", err)
		}
		obligations = append(obligations, o)
	}
	return obligations, rows.Err()
}

// Verify interface compliance
var _ port.ObligationRepository = (*ObligationRepository)(nil)
