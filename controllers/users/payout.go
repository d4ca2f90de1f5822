package users

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"project/database"
	"project/models"
	"project/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// errInsufficientBalance is a sentinel used inside the payout transaction.
var errInsufficientBalance = errors.New("insufficient_balance")

// Balance holds the figures used for payout admission.
type Balance struct {
	Cached           int64
	TotalDonations   int64
	CompletedPayouts int64
	PendingPayouts   int64
	Available        int64
}

// AvailableBalance computes what a creator may withdraw. The cached profile
// balance and the ledger recomputed from payments/payouts can drift; the
// payable amount is the lower of the two, never negative.
func AvailableBalance(cached, totalDonations, completedPayouts, pendingPayouts int64) int64 {
	byCache := cached - pendingPayouts
	byLedger := totalDonations - completedPayouts - pendingPayouts
	avail := byCache
	if byLedger < avail {
		avail = byLedger
	}
	if avail < 0 {
		avail = 0
	}
	return avail
}

// LoadBalance reads the cached aggregate and the payout sums for a user.
func LoadBalance(db *gorm.DB, uid uint) (*Balance, error) {
	var profile models.Profile
	if err := db.First(&profile, uid).Error; err != nil {
		return nil, err
	}

	var completed, pending int64
	if err := db.Model(&models.Payout{}).
		Where("user_id = ? AND status = ?", uid, "completed").
		Select("COALESCE(SUM(amount),0)").Scan(&completed).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Payout{}).
		Where("user_id = ? AND status = ?", uid, "pending").
		Select("COALESCE(SUM(amount),0)").Scan(&pending).Error; err != nil {
		return nil, err
	}

	return &Balance{
		Cached:           profile.AvailableBalance,
		TotalDonations:   profile.TotalDonations,
		CompletedPayouts: completed,
		PendingPayouts:   pending,
		Available:        AvailableBalance(profile.AvailableBalance, profile.TotalDonations, completed, pending),
	}, nil
}

type PayoutRequest struct {
	Amount string `json:"amount"` // PLN, e.g. "150.00"
}

// PayoutHandler creates a pending payout request.
// POST /v1/users/payouts
func PayoutHandler(w http.ResponseWriter, r *http.Request) {
	var req PayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid JSON"})
		return
	}

	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	amount, err := utils.ParsePLN(req.Amount)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nieprawidłowa kwota"})
		return
	}

	db := database.DB

	// Payouts require verified identity
	var verification models.Verification
	if err := db.First(&verification, "user_id = ?", uid).Error; err != nil || verification.KYCStatus != "verified" {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Wypłaty wymagają zweryfikowanej tożsamości"})
		return
	}

	minPayout := int64(1000)
	maxPayout := int64(0)
	var setting models.Setting
	if err := db.Model(&models.Setting{}).Select("min_payout, max_payout").Take(&setting).Error; err == nil {
		if setting.MinPayout > 0 {
			minPayout = setting.MinPayout
		}
		maxPayout = setting.MaxPayout
	}
	if amount < minPayout {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Minimalna kwota wypłaty to " + utils.FormatPLN(minPayout) + " zł"})
		return
	}
	if maxPayout > 0 && amount > maxPayout {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Maksymalna kwota wypłaty to " + utils.FormatPLN(maxPayout) + " zł"})
		return
	}

	var acc models.BankAccount
	if err := db.Where("user_id = ?", uid).First(&acc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Dodaj najpierw rachunek bankowy"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	reference := utils.GeneratePayoutReference(uid)

	var payout models.Payout
	if err := db.Transaction(func(tx *gorm.DB) error {
		// Lock the profile row so concurrent requests can't both pass admission
		var lockedProfile models.Profile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&lockedProfile, uid).Error; err != nil {
			return err
		}

		var completed, pending int64
		if err := tx.Model(&models.Payout{}).
			Where("user_id = ? AND status = ?", uid, "completed").
			Select("COALESCE(SUM(amount),0)").Scan(&completed).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Payout{}).
			Where("user_id = ? AND status = ?", uid, "pending").
			Select("COALESCE(SUM(amount),0)").Scan(&pending).Error; err != nil {
			return err
		}

		available := AvailableBalance(lockedProfile.AvailableBalance, lockedProfile.TotalDonations, completed, pending)
		if amount > available {
			return errInsufficientBalance
		}

		// The cached balance is only debited when an admin completes the
		// payout; a pending request just reserves the amount via the sums.
		payout = models.Payout{
			UserID:        uid,
			BankAccountID: acc.ID,
			Amount:        amount,
			Reference:     reference,
			Status:        "pending",
		}
		return tx.Create(&payout).Error
	}); err != nil {
		if errors.Is(err, errInsufficientBalance) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Niewystarczające środki"})
			return
		}
		log.Printf("[payout] create error for user %d: %v", uid, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Wniosek o wypłatę został przyjęty",
		Data: map[string]interface{}{
			"payout": map[string]interface{}{
				"id":             payout.ID,
				"reference":      payout.Reference,
				"amount":         payout.Amount,
				"bank_name":      acc.BankName,
				"account_number": MaskAccountNumber(acc.AccountNumber),
				"status":         payout.Status,
				"created_at":     payout.CreatedAt.Format(time.RFC3339),
			},
		},
	})
}

// ListPayoutsHandler returns the user's payouts, newest first.
// GET /v1/users/payouts
func ListPayoutsHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	pageStr := r.URL.Query().Get("page")
	limitStr := r.URL.Query().Get("limit")
	searchQuery := strings.TrimSpace(r.URL.Query().Get("search"))

	page, _ := strconv.Atoi(pageStr)
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(limitStr)
	if limit < 1 {
		limit = 10
	}

	db := database.DB

	countQuery := db.Model(&models.Payout{}).Where("user_id = ?", uid)
	if searchQuery != "" {
		countQuery = countQuery.Where("reference LIKE ?", "%"+searchQuery+"%")
	}

	var totalRows int64
	if err := countQuery.Count(&totalRows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve payout data"})
		return
	}

	totalPages := int(math.Ceil(float64(totalRows) / float64(limit)))
	offset := (page - 1) * limit

	var payouts []models.Payout
	query := db.Preload("BankAccount").Where("user_id = ?", uid)
	if searchQuery != "" {
		query = query.Where("reference LIKE ?", "%"+searchQuery+"%")
	}
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&payouts).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve payout data"})
		return
	}

	var resp []map[string]interface{}
	for _, p := range payouts {
		bankName := ""
		accountNumber := ""
		if p.BankAccount != nil {
			bankName = p.BankAccount.BankName
			accountNumber = MaskAccountNumber(p.BankAccount.AccountNumber)
		}
		resp = append(resp, map[string]interface{}{
			"id":             p.ID,
			"reference":      p.Reference,
			"amount":         p.Amount,
			"status":         p.Status,
			"bank_name":      bankName,
			"account_number": accountNumber,
			"created_at":     p.CreatedAt.Format(time.RFC3339),
		})
	}

	responseData := map[string]interface{}{
		"data": resp,
		"pagination": map[string]interface{}{
			"page":        page,
			"limit":       limit,
			"total_rows":  totalRows,
			"total_pages": totalPages,
		},
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    responseData,
	})
}

func MaskAccountNumber(accountNumber string) string {
	if len(accountNumber) <= 6 {
		return accountNumber
	}
	return accountNumber[:4] + "****" + accountNumber[len(accountNumber)-4:]
}
