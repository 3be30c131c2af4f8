package lifecycle

import (
	"errors"
	"testing"

	"github.com/ledgerline/settlement/internal/domain/entity"
)

func TestFire(t *testing.T) {
	tests := []struct {
		name    string
		status  entity.PaymentStatus
		trigger Trigger
		want    entity.PaymentStatus
		wantErr bool
	}{
		{"pending can be approved", entity.PaymentPending, TriggerApprove, entity.PaymentApproved, false},
		{"pending can be rejected", entity.PaymentPending, TriggerReject, entity.PaymentRejected, false},
		{"pending can fail", entity.PaymentPending, TriggerFail, entity.PaymentFailed, false},
		{"approved cannot be approved again", entity.PaymentApproved, TriggerApprove, entity.PaymentApproved, true},
		{"approved cannot be rejected", entity.PaymentApproved, TriggerReject, entity.PaymentApproved, true},
		{"rejected cannot be approved", entity.PaymentRejected, TriggerApprove, entity.PaymentRejected, true},
		{"failed cannot be rejected", entity.PaymentFailed, TriggerReject, entity.PaymentFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fire(tt.status, tt.trigger)

			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("Fire() error = %v, want ErrInvalidTransition", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Fire() unexpected error: %v", err)
				return
			}
			if got != tt.want {
				t.Errorf("Fire() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(entity.PaymentPending) {
		t.Error("Pending should not be terminal")
	}
	for _, status := range []entity.PaymentStatus{entity.PaymentApproved, entity.PaymentRejected, entity.PaymentFailed} {
		if !IsTerminal(status) {
			t.Errorf("%s should be terminal", status)
		}
	}
}

func TestCanFire(t *testing.T) {
	if !CanFire(entity.PaymentPending, TriggerApprove) {
		t.Error("approve should be permitted for pending payments")
	}
	if CanFire(entity.PaymentRejected, TriggerApprove) {
		t.Error("approve should not be permitted for rejected payments")
	}
}
