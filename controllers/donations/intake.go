package donations

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"project/database"
	"project/models"
	"project/utils"

	"gorm.io/gorm"
)

type DonationRequest struct {
	Username   string `json:"username"`
	Amount     int64  `json:"amount"`
	PayerName  string `json:"payer_name"`
	PayerEmail string `json:"payer_email"`
	Message    string `json:"message"`
}

// minDonationAmount returns the configured minimum in grosz (default 1 PLN).
func minDonationAmount(db *gorm.DB) int64 {
	var setting models.Setting
	if err := db.Model(&models.Setting{}).Select("min_donation").Take(&setting).Error; err == nil && setting.MinDonation > 0 {
		return setting.MinDonation
	}
	return 100
}

// PingHandler reports whether the payment gateway is reachable.
// GET /v1/donations/ping
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if err := utils.StripePing(); err != nil {
		log.Printf("[donations] gateway ping failed: %v", err)
		utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{Success: false, Message: "Płatności są chwilowo niedostępne"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK"})
}

// CreateDonationHandler starts a hosted checkout donation.
// POST /v1/donations
func CreateDonationHandler(w http.ResponseWriter, r *http.Request) {
	var req DonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid JSON"})
		return
	}

	db := database.DB

	// Validate amount before touching the gateway
	if min := minDonationAmount(db); req.Amount < min {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Minimalna kwota wsparcia to " + utils.FormatPLN(min) + " zł",
		})
		return
	}

	profile, ok := findCreator(w, db, req.Username)
	if !ok {
		return
	}

	// Gateway liveness check before inserting a pending row
	if err := utils.StripePing(); err != nil {
		log.Printf("[donations] gateway unavailable: %v", err)
		utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{Success: false, Message: "Płatności są chwilowo niedostępne, spróbuj ponownie później"})
		return
	}

	payment := newPendingPayment(profile.ID, &req, "checkout")
	if err := db.Create(&payment).Error; err != nil {
		log.Printf("[donations] DB create payment error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	sessionID, checkoutURL, err := utils.CreateStripeCheckoutSession(payment.ID, profile.ID, profile.DisplayName, req.PayerEmail, req.Amount)
	if err != nil {
		// Compensating delete so abandoned intents don't pile up as pending rows
		if delErr := db.Delete(&models.Payment{}, payment.ID).Error; delErr != nil {
			log.Printf("[donations] compensating delete failed for payment %d: %v", payment.ID, delErr)
		}
		log.Printf("[donations] create session error: %v", err)
		utils.WriteJSON(w, http.StatusBadGateway, utils.APIResponse{Success: false, Message: "Nie udało się rozpocząć płatności, spróbuj ponownie"})
		return
	}

	if err := db.Model(&models.Payment{}).Where("id = ?", payment.ID).Update("stripe_session_id", sessionID).Error; err != nil {
		log.Printf("[donations] save session id error for payment %d: %v", payment.ID, err)
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"id":  payment.ID,
			"url": checkoutURL,
		},
	})
}

// CreateDonationIntentHandler starts an embedded (elements) donation and
// returns the client secret for the payment intent.
// POST /v1/donations/intent
func CreateDonationIntentHandler(w http.ResponseWriter, r *http.Request) {
	var req DonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid JSON"})
		return
	}

	db := database.DB

	if min := minDonationAmount(db); req.Amount < min {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Minimalna kwota wsparcia to " + utils.FormatPLN(min) + " zł",
		})
		return
	}

	profile, ok := findCreator(w, db, req.Username)
	if !ok {
		return
	}

	if err := utils.StripePing(); err != nil {
		log.Printf("[donations] gateway unavailable: %v", err)
		utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{Success: false, Message: "Płatności są chwilowo niedostępne, spróbuj ponownie później"})
		return
	}

	payment := newPendingPayment(profile.ID, &req, "intent")
	if err := db.Create(&payment).Error; err != nil {
		log.Printf("[donations] DB create payment error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	intentID, clientSecret, err := utils.CreateStripePaymentIntent(payment.ID, profile.ID, req.Amount)
	if err != nil {
		if delErr := db.Delete(&models.Payment{}, payment.ID).Error; delErr != nil {
			log.Printf("[donations] compensating delete failed for payment %d: %v", payment.ID, delErr)
		}
		log.Printf("[donations] create intent error: %v", err)
		utils.WriteJSON(w, http.StatusBadGateway, utils.APIResponse{Success: false, Message: "Nie udało się rozpocząć płatności, spróbuj ponownie"})
		return
	}

	if err := db.Model(&models.Payment{}).Where("id = ?", payment.ID).Update("stripe_payment_id", intentID).Error; err != nil {
		log.Printf("[donations] save intent id error for payment %d: %v", payment.ID, err)
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"id":            payment.ID,
			"client_secret": clientSecret,
		},
	})
}

func findCreator(w http.ResponseWriter, db *gorm.DB, username string) (*models.Profile, bool) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "username is required"})
		return nil, false
	}
	var profile models.Profile
	if err := db.Where("username = ?", username).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Nie znaleziono twórcy"})
			return nil, false
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return nil, false
	}
	return &profile, true
}

func newPendingPayment(creatorID uint, req *DonationRequest, paymentType string) models.Payment {
	p := models.Payment{
		CreatorID:   creatorID,
		Amount:      req.Amount,
		Currency:    "pln",
		Status:      "pending",
		PaymentType: paymentType,
	}
	if s := strings.TrimSpace(req.PayerName); s != "" {
		p.PayerName = &s
	}
	if s := strings.TrimSpace(req.PayerEmail); s != "" {
		p.PayerEmail = &s
	}
	if s := strings.TrimSpace(req.Message); s != "" {
		p.Message = &s
	}
	return p
}
