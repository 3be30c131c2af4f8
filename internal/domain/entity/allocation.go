package entity

import "time"

// Allocation records the portion of one payment applied to one obligation
type Allocation struct {
	ID           int64     `json:"id"`
	PaymentID    int64     `json:"payment_id"`
	ObligationID int64     `json:"obligation_id"`
	AmountCents  int64     `json:"amount_cents"`
	CreatedAt    time.Time `json:"created_at"`
}

// AllocationWithObligation joins an allocation with the current state of
// the obligation it was applied to
type AllocationWithObligation struct {
	Allocation Allocation `json:"allocation"`
	Obligation Obligation `json:"obligation"`
}
