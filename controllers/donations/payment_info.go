package donations

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"project/database"
	"project/models"
	"project/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type PaymentInfoRequest struct {
	StripePaymentID string `json:"stripe_payment_id"`
	CreatorID       uint   `json:"creator_id"`
	PayerName       string `json:"payer_name"`
	PayerEmail      string `json:"payer_email"`
	Message         string `json:"message"`
}

// UpdatePaymentInfoHandler stores the processor's payment reference and any
// supporter details after the embedded payment confirms (success page
// callback). The money has already moved by the time this is called, so a
// recording failure must never read as a failed payment: we still answer
// success, flag recorded=false and point the supporter at support.
// POST /v1/donations/{id}/payment-info
func UpdatePaymentInfoHandler(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	paymentID, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || paymentID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid payment id"})
		return
	}

	var req PaymentInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid JSON"})
		return
	}

	db := database.DB

	var payment models.Payment
	if err := db.First(&payment, uint(paymentID)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Nie znaleziono płatności"})
			return
		}
		log.Printf("[donations] payment-info lookup error for %d: %v", paymentID, err)
		// Lenient policy: lookup failure after a completed charge still reports success
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
			Success: true,
			Message: "Płatność została przyjęta, ale nie udało się zapisać danych. Skontaktuj się z pomocą techniczną.",
			Data:    map[string]interface{}{"recorded": false},
		})
		return
	}

	if req.CreatorID != 0 && req.CreatorID != payment.CreatorID {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Nie znaleziono płatności"})
		return
	}

	updates := map[string]interface{}{}
	if s := strings.TrimSpace(req.StripePaymentID); s != "" {
		updates["stripe_payment_id"] = s
	}
	if s := strings.TrimSpace(req.PayerName); s != "" {
		updates["payer_name"] = s
	}
	if s := strings.TrimSpace(req.PayerEmail); s != "" {
		updates["payer_email"] = s
	}
	if s := strings.TrimSpace(req.Message); s != "" {
		updates["message"] = s
	}
	if len(updates) == 0 {
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{"recorded": true}})
		return
	}

	if err := db.Model(&models.Payment{}).Where("id = ?", payment.ID).Updates(updates).Error; err != nil {
		log.Printf("[donations] payment-info update error for %d: %v", payment.ID, err)
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
			Success: true,
			Message: "Płatność została przyjęta, ale nie udało się zapisać danych. Skontaktuj się z pomocą techniczną.",
			Data:    map[string]interface{}{"recorded": false},
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Dziękujemy za wsparcie!",
		Data:    map[string]interface{}{"recorded": true},
	})
}
