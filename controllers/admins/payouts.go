package admins

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"project/database"
	"project/models"
	"project/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errNotPending = errors.New("not pending")

type PayoutResponse struct {
	ID            uint   `json:"id"`
	UserID        uint   `json:"user_id"`
	Username      string `json:"username"`
	DisplayName   string `json:"display_name"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	SwiftCode     string `json:"swift_code"`
	Amount        int64  `json:"amount"`
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

// GET /v1/admin/payouts
func GetPayouts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	status := r.URL.Query().Get("status")
	userID := r.URL.Query().Get("user_id")
	search := r.URL.Query().Get("search")

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	db := database.DB
	query := db.Model(&models.Payout{}).
		Joins("JOIN profiles ON payouts.user_id = profiles.id").
		Joins("JOIN bank_accounts ON payouts.bank_account_id = bank_accounts.id")

	if status != "" {
		query = query.Where("payouts.status = ?", status)
	}
	if userID != "" {
		query = query.Where("payouts.user_id = ?", userID)
	}
	if search != "" {
		query = query.Where("payouts.reference LIKE ? OR profiles.username LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	type PayoutWithDetails struct {
		models.Payout
		Username      string
		DisplayName   string
		BankName      string
		AccountNumber string
		SwiftCode     string
	}

	var payouts []PayoutWithDetails
	query.Select("payouts.*, profiles.username, profiles.display_name, bank_accounts.bank_name, bank_accounts.account_number, bank_accounts.swift_code").
		Offset(offset).
		Limit(limit).
		Order("payouts.created_at ASC").
		Find(&payouts)

	response := make([]PayoutResponse, 0, len(payouts))
	for _, p := range payouts {
		response = append(response, PayoutResponse{
			ID:            p.ID,
			UserID:        p.UserID,
			Username:      p.Username,
			DisplayName:   p.DisplayName,
			BankName:      p.BankName,
			AccountNumber: p.AccountNumber,
			SwiftCode:     p.SwiftCode,
			Amount:        p.Amount,
			Reference:     p.Reference,
			Status:        p.Status,
			CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"payouts":     response,
			"total":       total,
			"page":        page,
			"limit":       limit,
			"total_pages": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// CompletePayout marks a pending payout as paid out. The creator's cached
// balance is debited here, not at request time, so a rejected payout never
// touches the cache.
// POST /v1/admin/payouts/{id}/complete
func CompletePayout(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nieprawidłowy identyfikator wypłaty"})
		return
	}

	var payout models.Payout
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payout, id).Error; err != nil {
			return err
		}
		if payout.Status != "pending" {
			return errNotPending
		}

		payout.Status = "completed"
		if err := tx.Save(&payout).Error; err != nil {
			return err
		}

		// Keep the cached balance non-negative even if aggregates drifted.
		return tx.Model(&models.Profile{}).
			Where("id = ?", payout.UserID).
			Update("available_balance", gorm.Expr("GREATEST(available_balance - ?, 0)", payout.Amount)).Error
	})

	switch {
	case txErr == gorm.ErrRecordNotFound:
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Nie znaleziono wypłaty"})
		return
	case txErr == errNotPending:
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Tylko oczekujące wypłaty mogą zostać zrealizowane"})
		return
	case txErr != nil:
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Nie udało się zapisać zmian"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Wypłata została zrealizowana",
		Data: map[string]interface{}{
			"id":        payout.ID,
			"reference": payout.Reference,
			"status":    payout.Status,
		},
	})
}

// RejectPayout releases the reservation. Pending payouts never debited the
// cache, so rejection only flips the status.
// POST /v1/admin/payouts/{id}/reject
func RejectPayout(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nieprawidłowy identyfikator wypłaty"})
		return
	}

	var payout models.Payout
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payout, id).Error; err != nil {
			return err
		}
		if payout.Status != "pending" {
			return errNotPending
		}
		payout.Status = "rejected"
		return tx.Save(&payout).Error
	})

	switch {
	case txErr == gorm.ErrRecordNotFound:
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Nie znaleziono wypłaty"})
		return
	case txErr == errNotPending:
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Tylko oczekujące wypłaty mogą zostać odrzucone"})
		return
	case txErr != nil:
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Nie udało się zapisać zmian"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Wypłata została odrzucona",
		Data: map[string]interface{}{
			"id":        payout.ID,
			"reference": payout.Reference,
			"status":    payout.Status,
		},
	})
}
