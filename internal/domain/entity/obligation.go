package entity

import "time"

// Obligation is one side of a debt relationship: a vendor purchase line
// awaiting payout or a customer invoice line awaiting settlement.
// TotalCents is fixed once the obligation exists; PaidCents and BalanceCents
// are mutated only by the settlement engine.
type Obligation struct {
	ID             int64            `json:"id"`
	CounterpartyID int64            `json:"counterparty_id"`
	TotalCents     int64            `json:"total_cents"`
	PaidCents      int64            `json:"paid_cents"`
	BalanceCents   int64            `json:"balance_cents"`
	Status         ObligationStatus `json:"status"`
	IssuedAt       time.Time        `json:"issued_at"`
	LastUpdated    time.Time        `json:"last_updated"`
	CreatedAt      time.Time        `json:"created_at"`
}
