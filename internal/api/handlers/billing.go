package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/fluentphrases/backend/internal/auth"
	"github.com/fluentphrases/backend/internal/billing"
	"github.com/fluentphrases/backend/internal/models"
)

// PremiumPriceBRL is the monthly premium subscription price
const PremiumPriceBRL = 9.99

// PaymentClient is the payment provider surface the billing handler needs
type PaymentClient interface {
	CreatePreference(ctx context.Context, req *billing.PreferenceRequest) (*billing.Preference, error)
	GetPayment(ctx context.Context, paymentID int64) (*billing.Payment, error)
}

// BillingHandler handles premium checkout and payment notifications
type BillingHandler struct {
	payments    PaymentClient
	users       UserStore
	frontendURL string
	backendURL  string
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(payments PaymentClient, users UserStore, frontendURL, backendURL string) *BillingHandler {
	return &BillingHandler{
		payments:    payments,
		users:       users,
		frontendURL: frontendURL,
		backendURL:  backendURL,
	}
}

// CreatePreference creates a checkout preference for the premium plan
// POST /api/v1/billing/preference
func (h *BillingHandler) CreatePreference(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	if user.Unlimited() {
		writeError(w, http.StatusConflict, "already_premium", "Account already has unlimited access")
		return
	}

	pref, err := h.payments.CreatePreference(r.Context(), &billing.PreferenceRequest{
		Items: []billing.Item{{
			Title:      "Fluent Phrases Premium",
			Quantity:   1,
			UnitPrice:  PremiumPriceBRL,
			CurrencyID: "BRL",
		}},
		BackURLs: billing.BackURLs{
			Success: h.frontendURL + "/payment/success",
			Failure: h.frontendURL + "/payment/failure",
			Pending: h.frontendURL + "/payment/pending",
		},
		AutoReturn:        "approved",
		NotificationURL:   h.backendURL + "/api/v1/billing/webhook",
		ExternalReference: user.ID,
		Metadata:          map[string]string{"user_id": user.ID},
	})
	if err != nil {
		log.Printf("[billing] CreatePreference error: %v", err)
		writeError(w, http.StatusBadGateway, "payment_provider_error", "Failed to create checkout")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"preference_id": pref.ID,
		"init_point":    pref.InitPoint,
	})
}

// webhookBody is the JSON shape of a payment notification
type webhookBody struct {
	Type string `json:"type"`
	Data struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// Webhook receives payment notifications. The payment is always re-fetched
// from the provider; the notification itself is never trusted.
// POST /api/v1/billing/webhook
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	notifType := r.URL.Query().Get("type")
	paymentID, err := strconv.ParseInt(r.URL.Query().Get("data.id"), 10, 64)

	if err != nil {
		var body webhookBody
		if decodeErr := json.NewDecoder(r.Body).Decode(&body); decodeErr == nil {
			notifType = body.Type
			paymentID, err = body.Data.ID.Int64()
		}
	}

	if notifType != "payment" || err != nil || paymentID == 0 {
		// Not a payment notification; acknowledge so the provider stops
		// retrying.
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ignored"})
		return
	}

	payment, err := h.payments.GetPayment(r.Context(), paymentID)
	if err != nil {
		log.Printf("[billing] Webhook payment lookup error: %v", err)
		// Non-2xx makes the provider retry later.
		writeError(w, http.StatusBadGateway, "payment_provider_error", "Failed to verify payment")
		return
	}

	if payment.Status != billing.PaymentStatusApproved {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ignored", "payment_status": payment.Status})
		return
	}

	userID := payment.ExternalReference
	if userID == "" {
		userID = payment.Metadata["user_id"]
	}
	if userID == "" {
		log.Printf("[billing] Webhook approved payment %d without user reference", paymentID)
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ignored"})
		return
	}

	if err := h.users.SetPlan(r.Context(), userID, models.PlanPremium); err != nil {
		log.Printf("[billing] Webhook SetPlan error for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "server_error", "Failed to upgrade account")
		return
	}

	log.Printf("[billing] user %s upgraded to premium (payment %d)", userID, paymentID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": fmt.Sprintf("user %s upgraded", userID),
	})
}
