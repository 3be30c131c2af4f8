package entity

// ObligationStatus represents the settlement state of an obligation
type ObligationStatus string

const (
	ObligationUnpaid        ObligationStatus = "UNPAID"
	ObligationPartiallyPaid ObligationStatus = "PARTIALLY_PAID"
	ObligationPaid          ObligationStatus = "PAID"
)

// String returns the string representation of the status
func (s ObligationStatus) String() string {
	return string(s)
}

// PaymentStatus represents the lifecycle state of a payment
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentApproved PaymentStatus = "APPROVED"
	PaymentRejected PaymentStatus = "REJECTED"
	PaymentFailed   PaymentStatus = "FAILED"
)

// String returns the string representation of the status
func (s PaymentStatus) String() string {
	return string(s)
}

// PaymentType distinguishes a payment meant to close out every selected
// obligation from one that deliberately covers only part of them
type PaymentType string

const (
	PaymentTypeFull    PaymentType = "FULL"
	PaymentTypePartial PaymentType = "PARTIAL"
)

var validPaymentTypes = map[PaymentType]bool{
	PaymentTypeFull:    true,
	PaymentTypePartial: true,
}

// IsValid returns true if the payment type is one of the known kinds
func (t PaymentType) IsValid() bool {
	return validPaymentTypes[t]
}

// String returns the string representation of the payment type
func (t PaymentType) String() string {
	return string(t)
}
