package admins

import (
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

type VerificationResponse struct {
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	KYCStatus   string `json:"kyc_status"`
	DocumentURL string `json:"document_url,omitempty"`
	SubmittedAt string `json:"submitted_at"`
}

// GetVerifications lists KYC submissions. Document links are presigned and
// short-lived, the bucket prefix itself is private.
// GET /v1/admin/verifications
func GetVerifications(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	status := r.URL.Query().Get("status")
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if status == "" {
		status = "pending"
	}
	offset := (page - 1) * limit

	db := database.DB
	query := db.Model(&models.Verification{}).
		Joins("JOIN profiles ON verifications.user_id = profiles.id").
		Joins("JOIN users ON verifications.user_id = users.id").
		Where("verifications.kyc_status = ?", status)

	var total int64
	query.Count(&total)

	type VerificationWithDetails struct {
		models.Verification
		Username    string
		DisplayName string
		Email       string
	}

	var rows []VerificationWithDetails
	query.Select("verifications.*, profiles.username, profiles.display_name, users.email").
		Offset(offset).
		Limit(limit).
		Order("verifications.updated_at ASC").
		Find(&rows)

	response := make([]VerificationResponse, 0, len(rows))
	for _, v := range rows {
		item := VerificationResponse{
			UserID:      v.UserID,
			Username:    v.Username,
			DisplayName: v.DisplayName,
			Email:       v.Email,
			KYCStatus:   v.KYCStatus,
			SubmittedAt: v.UpdatedAt.Format(time.RFC3339),
		}
		if v.DocumentURL != nil && *v.DocumentURL != "" {
			if signed, err := utils.GenerateSignedURL(*v.DocumentURL, 900); err == nil {
				item.DocumentURL = signed
			}
		}
		response = append(response, item)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"verifications": response,
			"total":         total,
			"page":          page,
			"limit":         limit,
			"total_pages":   int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

func reviewKYC(w http.ResponseWriter, r *http.Request, newStatus, successMsg string) {
	userID, err := strconv.ParseUint(mux.Vars(r)["user_id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nieprawidłowy identyfikator użytkownika"})
		return
	}

	var verification models.Verification
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&verification, "user_id = ?", userID).Error; err != nil {
			return err
		}
		if verification.KYCStatus != "pending" {
			return errNotPending
		}
		verification.KYCStatus = newStatus
		return tx.Save(&verification).Error
	})

	switch {
	case txErr == gorm.ErrRecordNotFound:
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Nie znaleziono weryfikacji"})
		return
	case txErr == errNotPending:
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Tylko oczekujące weryfikacje mogą zostać rozpatrzone"})
		return
	case txErr != nil:
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Nie udało się zapisać zmian"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: successMsg,
		Data: map[string]interface{}{
			"user_id":    verification.UserID,
			"kyc_status": verification.KYCStatus,
		},
	})
}

// POST /v1/admin/verifications/{user_id}/approve
func ApproveVerification(w http.ResponseWriter, r *http.Request) {
	reviewKYC(w, r, "verified", "Tożsamość została zweryfikowana")
}

// POST /v1/admin/verifications/{user_id}/reject
func RejectVerification(w http.ResponseWriter, r *http.Request) {
	reviewKYC(w, r, "rejected", "Weryfikacja została odrzucona")
}
