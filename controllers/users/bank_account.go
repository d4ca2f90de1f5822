package users

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"project/database"
	"project/models"
	"project/utils"

	"gorm.io/gorm"
)

var (
	// Polish NRB is 26 digits; also accepted with the PL IBAN prefix
	accountNumberRe = regexp.MustCompile(`^(PL)?[0-9]{26}$`)
	swiftRe         = regexp.MustCompile(`^[A-Z0-9]{8}([A-Z0-9]{3})?$`)
)

type SaveBankAccountRequest struct {
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	SwiftCode     string `json:"swift_code"`
}

// SaveBankAccountHandler inserts or replaces the user's payout account.
// Each creator keeps a single current account; saving again overwrites it.
// PUT /v1/users/bank-account
func SaveBankAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req SaveBankAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid request"})
		return
	}

	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	req.AccountNumber = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(req.AccountNumber), " ", ""))
	req.BankName = strings.TrimSpace(req.BankName)
	req.SwiftCode = strings.ToUpper(strings.TrimSpace(req.SwiftCode))

	if !accountNumberRe.MatchString(req.AccountNumber) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nieprawidłowy numer rachunku"})
		return
	}
	if len(req.BankName) < 2 || len(req.BankName) > 100 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nieprawidłowa nazwa banku"})
		return
	}
	if req.SwiftCode != "" && !swiftRe.MatchString(req.SwiftCode) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nieprawidłowy kod SWIFT"})
		return
	}

	db := database.DB

	var acc models.BankAccount
	err := db.Where("user_id = ?", uid).First(&acc).Error
	switch {
	case err == nil:
		acc.AccountNumber = req.AccountNumber
		acc.BankName = req.BankName
		acc.SwiftCode = req.SwiftCode
		if err := db.Save(&acc).Error; err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Nie udało się zapisać rachunku"})
			return
		}
	case err == gorm.ErrRecordNotFound:
		acc = models.BankAccount{
			UserID:        uid,
			AccountNumber: req.AccountNumber,
			BankName:      req.BankName,
			SwiftCode:     req.SwiftCode,
		}
		if err := db.Create(&acc).Error; err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Nie udało się zapisać rachunku"})
			return
		}
	default:
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Rachunek został zapisany",
		Data: map[string]interface{}{
			"bank_account": map[string]interface{}{
				"id":             acc.ID,
				"bank_name":      acc.BankName,
				"swift_code":     acc.SwiftCode,
				"account_number": MaskAccountNumber(acc.AccountNumber),
			},
		},
	})
}

// GetBankAccountHandler returns the user's current payout account.
// GET /v1/users/bank-account
func GetBankAccountHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	db := database.DB

	var acc models.BankAccount
	if err := db.Where("user_id = ?", uid).First(&acc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Nie znaleziono rachunku"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"bank_account": map[string]interface{}{
				"id":             acc.ID,
				"bank_name":      acc.BankName,
				"swift_code":     acc.SwiftCode,
				"account_number": MaskAccountNumber(acc.AccountNumber),
			},
		},
	})
}
