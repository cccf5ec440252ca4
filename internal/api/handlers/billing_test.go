package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentphrases/backend/internal/auth"
	"github.com/fluentphrases/backend/internal/billing"
	"github.com/fluentphrases/backend/internal/models"
)

type fakePaymentClient struct {
	pref     *billing.Preference
	prefReq  *billing.PreferenceRequest
	payments map[int64]*billing.Payment
	err      error
}

func (f *fakePaymentClient) CreatePreference(ctx context.Context, req *billing.PreferenceRequest) (*billing.Preference, error) {
	f.prefReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.pref, nil
}

func (f *fakePaymentClient) GetPayment(ctx context.Context, paymentID int64) (*billing.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.payments[paymentID]
	if !ok {
		return nil, &billing.APIError{StatusCode: http.StatusNotFound, Message: "not found"}
	}
	return p, nil
}

func TestCreatePreferenceForFreeUser(t *testing.T) {
	store := newFakeUserStore(&models.User{ID: "u1", Plan: models.PlanFree})
	payments := &fakePaymentClient{pref: &billing.Preference{
		ID:        "pref-1",
		InitPoint: "https://checkout.test/pref-1",
	}}
	h := NewBillingHandler(payments, store, "http://front.test", "http://api.test")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/preference", nil)
	req = req.WithContext(auth.WithUser(req.Context(), &models.User{ID: "u1", Plan: models.PlanFree}))
	rec := httptest.NewRecorder()
	h.CreatePreference(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "pref-1", body["preference_id"])

	require.NotNil(t, payments.prefReq)
	assert.Equal(t, "u1", payments.prefReq.ExternalReference)
	assert.Equal(t, "http://api.test/api/v1/billing/webhook", payments.prefReq.NotificationURL)
}

func TestCreatePreferenceRejectsPremium(t *testing.T) {
	store := newFakeUserStore(&models.User{ID: "u1", Plan: models.PlanPremium})
	h := NewBillingHandler(&fakePaymentClient{}, store, "http://front.test", "http://api.test")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/preference", nil)
	req = req.WithContext(auth.WithUser(req.Context(), &models.User{ID: "u1", Plan: models.PlanPremium}))
	rec := httptest.NewRecorder()
	h.CreatePreference(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestWebhookApprovedPaymentUpgradesUser(t *testing.T) {
	store := newFakeUserStore(&models.User{ID: "u1", Plan: models.PlanFree})
	payments := &fakePaymentClient{payments: map[int64]*billing.Payment{
		42: {ID: 42, Status: billing.PaymentStatusApproved, ExternalReference: "u1"},
	}}
	h := NewBillingHandler(payments, store, "http://front.test", "http://api.test")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhook?type=payment&data.id=42", nil)
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	user, err := store.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanPremium, user.Plan)
}

func TestWebhookPendingPaymentIsIgnored(t *testing.T) {
	store := newFakeUserStore(&models.User{ID: "u1", Plan: models.PlanFree})
	payments := &fakePaymentClient{payments: map[int64]*billing.Payment{
		42: {ID: 42, Status: billing.PaymentStatusPending, ExternalReference: "u1"},
	}}
	h := NewBillingHandler(payments, store, "http://front.test", "http://api.test")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhook?type=payment&data.id=42", nil)
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	user, err := store.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, user.Plan)
}

func TestWebhookLookupFailureAsksForRetry(t *testing.T) {
	store := newFakeUserStore(&models.User{ID: "u1", Plan: models.PlanFree})
	payments := &fakePaymentClient{err: errors.New("provider timeout")}
	h := NewBillingHandler(payments, store, "http://front.test", "http://api.test")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhook?type=payment&data.id=42", nil)
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestWebhookNonPaymentNotificationAcknowledged(t *testing.T) {
	store := newFakeUserStore()
	h := NewBillingHandler(&fakePaymentClient{}, store, "http://front.test", "http://api.test")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhook?type=merchant_order&data.id=7", nil)
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
