package entity

import "time"

// Payment is a single settlement action against one or more obligations
// belonging to one counterparty. It is created Pending and finishes in
// exactly one of Approved, Rejected or Failed.
type Payment struct {
	ID             int64         `json:"id"`
	CounterpartyID int64         `json:"counterparty_id"`
	AmountCents    int64         `json:"amount_cents"`
	Type           PaymentType   `json:"type"`
	Status         PaymentStatus `json:"status"`
	InitiatedBy    string        `json:"initiated_by"`
	InitiatedAt    time.Time     `json:"initiated_at"`
	ApprovedAt     *time.Time    `json:"approved_at,omitempty"`
	Note           string        `json:"note,omitempty"`
	SourceOfFunds  string        `json:"source_of_funds,omitempty"`
	// ErrorLog is populated only when the payment ends up Failed
	ErrorLog  string    `json:"error_log,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
