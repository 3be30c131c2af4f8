package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/settlement/internal/application/service"
	"github.com/ledgerline/settlement/internal/domain/entity"
	"github.com/ledgerline/settlement/internal/domain/settlement"
)

type stubSettlementService struct {
	initiateFunc func(ctx context.Context, req service.InitiateRequest) (*entity.Payment, error)
	approveFunc  func(ctx context.Context, paymentID int64, note, sourceOfFunds string) (*entity.Payment, error)
	rejectFunc   func(ctx context.Context, paymentID int64, note string) (*entity.Payment, error)
	getFunc      func(ctx context.Context, paymentID int64) (*entity.Payment, error)
}

func (s *stubSettlementService) Initiate(ctx context.Context, req service.InitiateRequest) (*entity.Payment, error) {
	return s.initiateFunc(ctx, req)
}

func (s *stubSettlementService) Approve(ctx context.Context, paymentID int64, note, sourceOfFunds string) (*entity.Payment, error) {
	return s.approveFunc(ctx, paymentID, note, sourceOfFunds)
}

func (s *stubSettlementService) Reject(ctx context.Context, paymentID int64, note string) (*entity.Payment, error) {
	return s.rejectFunc(ctx, paymentID, note)
}

func (s *stubSettlementService) GetPayment(ctx context.Context, paymentID int64) (*entity.Payment, error) {
	return s.getFunc(ctx, paymentID)
}

func (s *stubSettlementService) ListAllocations(ctx context.Context, paymentID int64) ([]*entity.AllocationWithObligation, error) {
	return nil, nil
}

func (s *stubSettlementService) ListPayments(ctx context.Context, counterpartyID int64, limit, offset int) ([]*entity.Payment, error) {
	return nil, nil
}

type stubObligationService struct {
	listFunc func(ctx context.Context, counterpartyID int64) (*service.OutstandingSummary, error)
}

func (s *stubObligationService) GetObligation(ctx context.Context, id int64) (*entity.Obligation, error) {
	return nil, nil
}

func (s *stubObligationService) ListOutstanding(ctx context.Context, counterpartyID int64) (*service.OutstandingSummary, error) {
	return s.listFunc(ctx, counterpartyID)
}

type noopLogger struct{}

func (l *noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (l *noopLogger) Error(msg string, keysAndValues ...interface{}) {}

func newTestServer(settlementSvc service.SettlementService, obligationSvc service.ObligationService) *Server {
	return NewServer(DefaultServerConfig(), settlementSvc, obligationSvc, &noopLogger{})
}

func postJSON(t *testing.T, server *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)
	return w
}

func TestInitiatePayment_Created(t *testing.T) {
	svc := &stubSettlementService{
		initiateFunc: func(ctx context.Context, req service.InitiateRequest) (*entity.Payment, error) {
			assert.Equal(t, int64(7), req.CounterpartyID)
			assert.Equal(t, entity.PaymentTypePartial, req.Type)
			return &entity.Payment{ID: 5, Status: entity.PaymentPending, AmountCents: req.AmountCents}, nil
		},
	}
	server := newTestServer(svc, &stubObligationService{})

	w := postJSON(t, server, "/api/v1/payments", InitiatePaymentRequest{
		CounterpartyID: 7,
		AmountCents:    60000,
		PaymentType:    "PARTIAL",
		ObligationIDs:  []int64{1, 2},
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestInitiatePayment_ValidationError(t *testing.T) {
	svc := &stubSettlementService{
		initiateFunc: func(ctx context.Context, req service.InitiateRequest) (*entity.Payment, error) {
			return nil, settlement.NewValidationError("partial amount 80000 must be less than outstanding total 80000")
		},
	}
	server := newTestServer(svc, &stubObligationService{})

	w := postJSON(t, server, "/api/v1/payments", InitiatePaymentRequest{
		CounterpartyID: 7,
		AmountCents:    80000,
		PaymentType:    "PARTIAL",
		ObligationIDs:  []int64{1, 2},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "validation", resp.Kind)
}

func TestInitiatePayment_AllocationFailure(t *testing.T) {
	svc := &stubSettlementService{
		initiateFunc: func(ctx context.Context, req service.InitiateRequest) (*entity.Payment, error) {
			return nil, &settlement.AllocationFailure{
				PaymentID: 5,
				Details:   []settlement.FailureDetail{{ObligationID: 2, Message: "disk full"}},
			}
		},
	}
	server := newTestServer(svc, &stubObligationService{})

	w := postJSON(t, server, "/api/v1/payments", InitiatePaymentRequest{
		CounterpartyID: 7,
		AmountCents:    60000,
		PaymentType:    "PARTIAL",
		ObligationIDs:  []int64{1, 2},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "allocation_failure", resp.Kind)
}

func TestApprovePayment_InvalidStateConflict(t *testing.T) {
	svc := &stubSettlementService{
		approveFunc: func(ctx context.Context, paymentID int64, note, sourceOfFunds string) (*entity.Payment, error) {
			return nil, &settlement.InvalidStateTransitionError{
				PaymentID: paymentID,
				Status:    entity.PaymentRejected,
				Action:    "approve",
			}
		},
	}
	server := newTestServer(svc, &stubObligationService{})

	w := postJSON(t, server, "/api/v1/payments/5/approve", ApprovePaymentRequest{Note: "n"})

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_state_transition", resp.Kind)
}

func TestRejectPayment_NotFound(t *testing.T) {
	svc := &stubSettlementService{
		rejectFunc: func(ctx context.Context, paymentID int64, note string) (*entity.Payment, error) {
			return nil, &settlement.NotFoundError{Kind: "payment", ID: paymentID}
		},
	}
	server := newTestServer(svc, &stubObligationService{})

	w := postJSON(t, server, "/api/v1/payments/404/reject", RejectPaymentRequest{})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPayment_InvalidID(t *testing.T) {
	server := newTestServer(&stubSettlementService{}, &stubObligationService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/abc", nil)
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListObligations(t *testing.T) {
	svc := &stubObligationService{
		listFunc: func(ctx context.Context, counterpartyID int64) (*service.OutstandingSummary, error) {
			return &service.OutstandingSummary{
				Obligations:      []*entity.Obligation{{ID: 1, CounterpartyID: counterpartyID, BalanceCents: 50000}},
				OutstandingCents: 50000,
			}, nil
		},
	}
	server := newTestServer(&stubSettlementService{}, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/counterparties/7/obligations", nil)
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}
