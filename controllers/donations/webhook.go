package donations

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"project/database"
	"project/models"
	"project/utils"

	stripe "github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errEventSeen  = errors.New("event already processed")
	errBadPayload = errors.New("bad event payload")
)

// StripeWebhookHandler handles payment gateway callbacks.
// POST /v1/webhooks/stripe
//
// Invalid signatures get 400. Events already seen get 200 without
// reprocessing. Processing failures get 500 so the gateway retries.
// The dedup claim and the event processing share one transaction, so a
// failed delivery rolls back its claim and the retry is processed again.
func StripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteJSON(w, http.StatusMethodNotAllowed, utils.APIResponse{Success: false, Message: "Method not allowed"})
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid body"})
		return
	}

	event, err := utils.ConstructStripeWebhookEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		log.Printf("[webhook] signature verification failed: %v", err)
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid signature"})
		return
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := claimEvent(tx, event); err != nil {
			return err
		}
		return processEvent(tx, event)
	})

	switch {
	case errors.Is(txErr, errEventSeen):
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Already processed"})
	case errors.Is(txErr, errBadPayload):
		log.Printf("[webhook] event %s (%s): %v", event.ID, event.Type, txErr)
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid payload"})
	case txErr != nil:
		log.Printf("[webhook] process event %s (%s): %v", event.ID, event.Type, txErr)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
	default:
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully"})
	}
}

// claimEvent inserts the (provider, event id) dedup row. The unique index
// makes a replayed delivery hit RowsAffected == 0. The claim only survives
// if the enclosing transaction commits.
func claimEvent(tx *gorm.DB, event stripe.Event) error {
	now := time.Now()
	dedup := models.WebhookEvent{
		Provider:        "stripe",
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		ProcessedAt:     &now,
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&dedup)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errEventSeen
	}
	return nil
}

func processEvent(tx *gorm.DB, event stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("%w: %v", errBadPayload, err)
		}
		return handleCheckoutCompleted(tx, &session)
	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return fmt.Errorf("%w: %v", errBadPayload, err)
		}
		return handleIntentSucceeded(tx, &intent)
	case "checkout.session.expired", "payment_intent.payment_failed":
		return markPaymentFailed(tx, metadataPaymentID(eventMetadata(event)))
	default:
		// acknowledged but ignored
		return nil
	}
}

func eventMetadata(event stripe.Event) map[string]string {
	var obj struct {
		Metadata map[string]string `json:"metadata"`
	}
	_ = json.Unmarshal(event.Data.Raw, &obj)
	return obj.Metadata
}

func metadataPaymentID(md map[string]string) uint {
	if md == nil {
		return 0
	}
	id, err := strconv.ParseUint(md["payment_id"], 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

func handleCheckoutCompleted(tx *gorm.DB, session *stripe.CheckoutSession) error {
	paymentID := metadataPaymentID(session.Metadata)

	updates := map[string]interface{}{
		"stripe_session_id": session.ID,
	}
	if session.PaymentIntent != nil {
		updates["stripe_payment_id"] = session.PaymentIntent.ID
	}
	if cd := session.CustomerDetails; cd != nil {
		if cd.Email != "" {
			updates["payer_email"] = cd.Email
		}
		if cd.Name != "" {
			updates["payer_name"] = cd.Name
		}
	}

	return completePayment(tx, paymentID, session.ID, updates)
}

func handleIntentSucceeded(tx *gorm.DB, intent *stripe.PaymentIntent) error {
	paymentID := metadataPaymentID(intent.Metadata)
	updates := map[string]interface{}{
		"stripe_payment_id": intent.ID,
	}
	return completePayment(tx, paymentID, intent.ID, updates)
}

// completePayment flips a pending payment to completed and moves the money
// into the creator's cached aggregates. Runs on the caller's transaction so
// an error unwinds the event claim as well. A payment that is no longer
// pending is left untouched.
func completePayment(tx *gorm.DB, paymentID uint, providerRef string, extraUpdates map[string]interface{}) error {
	var payment models.Payment
	q := tx.Clauses(clause.Locking{Strength: "UPDATE"})
	var err error
	if paymentID != 0 {
		err = q.First(&payment, paymentID).Error
	} else {
		// fallback: correlate by provider reference
		err = q.Where("stripe_session_id = ? OR stripe_payment_id = ?", providerRef, providerRef).First(&payment).Error
	}
	if err != nil {
		return err
	}

	if payment.Status != "pending" {
		return nil
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       "completed",
		"completed_at": now,
	}
	for k, v := range extraUpdates {
		updates[k] = v
	}
	if err := tx.Model(&payment).Updates(updates).Error; err != nil {
		return err
	}

	// Cached aggregates on the profile are the balance source of truth
	if err := tx.Model(&models.Profile{}).Where("id = ?", payment.CreatorID).Updates(map[string]interface{}{
		"total_donations":   gorm.Expr("total_donations + ?", payment.Amount),
		"available_balance": gorm.Expr("available_balance + ?", payment.Amount),
	}).Error; err != nil {
		return err
	}

	// Advance the creator's active goal, if any
	return tx.Model(&models.DonationGoal{}).
		Where("user_id = ? AND active = ?", payment.CreatorID, true).
		Update("current_amount", gorm.Expr("current_amount + ?", payment.Amount)).Error
}

func markPaymentFailed(tx *gorm.DB, paymentID uint) error {
	if paymentID == 0 {
		return nil
	}
	return tx.Model(&models.Payment{}).
		Where("id = ? AND status = ?", paymentID, "pending").
		Update("status", "failed").Error
}
