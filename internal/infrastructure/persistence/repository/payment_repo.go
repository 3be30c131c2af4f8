package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ledgerline/settlement/internal/application/port"
	"github.com/ledgerline/settlement/internal/domain/entity"
	"github.com/ledgerline/settlement/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

const paymentColumns = `id, counterparty_id, amount_cents, payment_type, status, initiated_by, initiated_at, approved_at, note, source_of_funds, error_log, created_at`

// PaymentRepository implements port.PaymentRepository
type PaymentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sql.DB, logger *zap.Logger) port.PaymentRepository {
	return &PaymentRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new payment in Pending status
func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (
			counterparty_id, amount_cents, payment_type, status,
			initiated_by, initiated_at, note, source_of_funds, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		payment.CounterpartyID,
		payment.AmountCents,
		string(payment.Type),
		string(payment.Status),
		payment.InitiatedBy,
		payment.InitiatedAt,
		payment.Note,
		payment.SourceOfFunds,
		payment.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create payment", zap.Error(err))
		return fmt.Errorf("failed to create payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	payment.ID = id
	return nil
}

// GetByID retrieves a payment by ID
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = ?`

	payment, err := scanPayment(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get payment", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

// MarkApproved finalizes a payment with its approval metadata
func (r *PaymentRepository) MarkApproved(ctx context.Context, id int64, note, sourceOfFunds string, at time.Time) error {
	query := `UPDATE payments SET status = ?, approved_at = ?, note = ?, source_of_funds = ? WHERE id = ?`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		string(entity.PaymentApproved), at, note, sourceOfFunds, id)
	if err != nil {
		r.logger.Error("Failed to mark payment approved", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark payment approved: %w", err)
	}
	return nil
}

// MarkRejected finalizes a payment as rejected
func (r *PaymentRepository) MarkRejected(ctx context.Context, id int64, note string, at time.Time) error {
	query := `UPDATE payments SET status = ?, approved_at = ?, note = ? WHERE id = ?`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		string(entity.PaymentRejected), at, note, id)
	if err != nil {
		r.logger.Error("Failed to mark payment rejected", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark payment rejected: %w", err)
	}
	return nil
}

// MarkFailed records an initiation failure with its error log
func (r *PaymentRepository) MarkFailed(ctx context.Context, id int64, errorLog string) error {
	query := `UPDATE payments SET status = ?, error_log = ? WHERE id = ?`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		string(entity.PaymentFailed), errorLog, id)
	if err != nil {
		r.logger.Error("Failed to mark payment failed", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}
	return nil
}

// ListByCounterparty retrieves a counterparty's payments newest first
func (r *PaymentRepository) ListByCounterparty(ctx context.Context, counterpartyID int64, limit, offset int) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE counterparty_id = ?
		ORDER BY initiated_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, counterpartyID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list payments", zap.Int64("counterparty_id", counterpartyID), zap.Error(err))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// scanPayment reads one payment row
func scanPayment(s scanner) (*entity.Payment, error) {
	var p entity.Payment
	var paymentType, status string
	var approvedAt sql.NullTime
	var note, sourceOfFunds, errorLog sql.NullString

	err := s.Scan(
		&p.ID,
		&p.CounterpartyID,
		&p.AmountCents,
		&paymentType,
		&status,
		&p.InitiatedBy,
		&p.InitiatedAt,
		&approvedAt,
		&note,
		&sourceOfFunds,
		&errorLog,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Type = entity.PaymentType(paymentType)
	p.Status = entity.PaymentStatus(status)
	if approvedAt.Valid {
		p.ApprovedAt = &approvedAt.Time
	}
	p.Note = note.String
	p.SourceOfFunds = sourceOfFunds.String
	p.ErrorLog = errorLog.String

	return &p, nil
}

// Verify interface compliance
var _ port.PaymentRepository = (*PaymentRepository)(nil)
