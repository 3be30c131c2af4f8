package settlement

import "github.com/ledgerline/settlement/internal/domain/entity"

// DeriveStatus computes an obligation's status from its paid and total
// amounts. It is the only place status is derived; stored status must
// always agree with it.
func DeriveStatus(paidCents, totalCents int64) entity.ObligationStatus {
	switch {
	case paidCents <= 0:
		return entity.ObligationUnpaid
	case paidCents >= totalCents:
		return entity.ObligationPaid
	default:
		return entity.ObligationPartiallyPaid
	}
}
