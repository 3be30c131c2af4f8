package settlement

import (
	"sort"
	"time"

	"github.com/ledgerline/settlement/internal/domain/entity"
)

// ObligationChange is one pending obligation update produced by a plan.
// PriorUpdated carries the LastUpdated value observed when the obligation
// was read; persistence uses it as an optimistic concurrency guard.
type ObligationChange struct {
	ObligationID int64
	PaidCents    int64
	BalanceCents int64
	Status       entity.ObligationStatus
	AppliedCents int64
	PriorUpdated time.Time
}

// Plan is the computed effect of one engine operation on a set of
// obligations. RemainingCents is whatever part of the payment amount was
// not consumed by the fold; zero for any amount the validations admit.
type Plan struct {
	Changes        []ObligationChange
	RemainingCents int64
}

// AppliedTotal returns the sum of amounts the plan moves across obligations
func (p Plan) AppliedTotal() int64 {
	var total int64
	for _, c := range p.Changes {
		total += c.AppliedCents
	}
	return total
}

// Allocations materializes the plan's non-zero applications as allocation
// rows for the given payment
func (p Plan) Allocations(paymentID int64, now time.Time) []*entity.Allocation {
	var allocs []*entity.Allocation
	for _, c := range p.Changes {
		if c.AppliedCents <= 0 {
			continue
		}
		allocs = append(allocs, &entity.Allocation{
			PaymentID:    paymentID,
			ObligationID: c.ObligationID,
			AmountCents:  c.AppliedCents,
			CreatedAt:    now,
		})
	}
	return allocs
}

// BuildApplicationPlan folds a payment amount over the candidate
// obligations oldest-first. Each obligation absorbs the smaller of its
// balance and the amount still remaining; obligations past the point the
// money runs out are left untouched.
func BuildApplicationPlan(obligations []*entity.Obligation, amountCents int64) Plan {
	sorted := make([]*entity.Obligation, len(obligations))
	copy(sorted, obligations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].IssuedAt.Before(sorted[j].IssuedAt)
	})

	plan := Plan{RemainingCents: amountCents}
	for _, o := range sorted {
		if plan.RemainingCents <= 0 {
			break
		}
		applied := o.BalanceCents
		if plan.RemainingCents < applied {
			applied = plan.RemainingCents
		}
		if applied <= 0 {
			continue
		}

		newPaid := o.PaidCents + applied
		plan.Changes = append(plan.Changes, ObligationChange{
			ObligationID: o.ID,
			PaidCents:    newPaid,
			BalanceCents: o.TotalCents - newPaid,
			Status:       DeriveStatus(newPaid, o.TotalCents),
			AppliedCents: applied,
			PriorUpdated: o.LastUpdated,
		})
		plan.RemainingCents -= applied
	}
	return plan
}

// BuildApprovalPlan re-derives obligation state for a pending payment from
// its recorded allocations, oldest obligation first. The funds were already
// applied at initiation, so approval does not add them again: it clamps
// paid at the obligation's total, re-derives balance and status from the
// current paid amount, and accounts the allocation against the payment
// amount. With no intervening payments this writes back exactly the state
// initiation produced.
func BuildApprovalPlan(rows []*entity.AllocationWithObligation, amountCents int64) Plan {
	sorted := sortRows(rows, false)

	plan := Plan{RemainingCents: amountCents}
	for _, row := range sorted {
		applied := row.Allocation.AmountCents
		if plan.RemainingCents < applied {
			applied = plan.RemainingCents
		}

		newPaid := row.Obligation.PaidCents
		if newPaid > row.Obligation.TotalCents {
			newPaid = row.Obligation.TotalCents
		}
		plan.Changes = append(plan.Changes, ObligationChange{
			ObligationID: row.Obligation.ID,
			PaidCents:    newPaid,
			BalanceCents: row.Obligation.TotalCents - newPaid,
			Status:       DeriveStatus(newPaid, row.Obligation.TotalCents),
			AppliedCents: applied,
			PriorUpdated: row.Obligation.LastUpdated,
		})
		plan.RemainingCents -= applied
	}
	return plan
}

// BuildReversalPlan unwinds a payment's allocations newest obligation
// first, mirroring a last-applied-first reversal. Paid amounts never go
// below zero even if another payment already pulled the obligation down.
func BuildReversalPlan(rows []*entity.AllocationWithObligation, amountCents int64) Plan {
	sorted := sortRows(rows, true)

	plan := Plan{RemainingCents: amountCents}
	for _, row := range sorted {
		reverse := row.Allocation.AmountCents
		if plan.RemainingCents < reverse {
			reverse = plan.RemainingCents
		}

		newPaid := row.Obligation.PaidCents - reverse
		if newPaid < 0 {
			newPaid = 0
		}
		plan.Changes = append(plan.Changes, ObligationChange{
			ObligationID: row.Obligation.ID,
			PaidCents:    newPaid,
			BalanceCents: row.Obligation.TotalCents - newPaid,
			Status:       DeriveStatus(newPaid, row.Obligation.TotalCents),
			AppliedCents: reverse,
			PriorUpdated: row.Obligation.LastUpdated,
		})
		plan.RemainingCents -= reverse
	}
	return plan
}

// sortRows orders allocation rows by the obligation's issue date
func sortRows(rows []*entity.AllocationWithObligation, newestFirst bool) []*entity.AllocationWithObligation {
	sorted := make([]*entity.AllocationWithObligation, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if newestFirst {
			return sorted[j].Obligation.IssuedAt.Before(sorted[i].Obligation.IssuedAt)
		}
		return sorted[i].Obligation.IssuedAt.Before(sorted[j].Obligation.IssuedAt)
	})
	return sorted
}
