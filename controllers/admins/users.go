package admins

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"project/database"
	"project/models"
	"project/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type CreatorListItem struct {
	ID             uint   `json:"id"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	Status         string `json:"status"`
	KYCStatus      string `json:"kyc_status"`
	TotalDonations int64  `json:"total_donations"`
	CreatedAt      string `json:"created_at"`
}

// GET /v1/admin/users
func GetUsers(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	status := r.URL.Query().Get("status")
	search := r.URL.Query().Get("search")

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	db := database.DB
	query := db.Model(&models.User{}).
		Joins("JOIN profiles ON users.id = profiles.id").
		Joins("LEFT JOIN verifications ON users.id = verifications.user_id")

	if status != "" {
		query = query.Where("users.status = ?", status)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("users.email LIKE ? OR profiles.username LIKE ? OR profiles.display_name LIKE ?", like, like, like)
	}

	var total int64
	query.Count(&total)

	type userRow struct {
		ID             uint
		Email          string
		Username       string
		DisplayName    string
		Status         string
		KYCStatus      *string
		TotalDonations int64
		CreatedAt      time.Time
	}
	var rows []userRow
	query.Select("users.id, users.email, users.status, users.created_at, profiles.username, profiles.display_name, profiles.total_donations, verifications.kyc_status").
		Offset(offset).
		Limit(limit).
		Order("users.created_at DESC").
		Find(&rows)

	response := make([]CreatorListItem, 0, len(rows))
	for _, row := range rows {
		kyc := "not_started"
		if row.KYCStatus != nil {
			kyc = *row.KYCStatus
		}
		response = append(response, CreatorListItem{
			ID:             row.ID,
			Email:          row.Email,
			Username:       row.Username,
			DisplayName:    row.DisplayName,
			Status:         row.Status,
			KYCStatus:      kyc,
			TotalDonations: row.TotalDonations,
			CreatedAt:      row.CreatedAt.Format(time.RFC3339),
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"users":       response,
			"total":       total,
			"page":        page,
			"limit":       limit,
			"total_pages": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// GET /v1/admin/users/{id}
func GetUserDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nieprawidłowy identyfikator użytkownika"})
		return
	}

	db := database.DB
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Nie znaleziono użytkownika"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	var profile models.Profile
	_ = db.First(&profile, user.ID).Error

	var verification models.Verification
	_ = db.First(&verification, "user_id = ?", user.ID).Error

	var personal models.PersonalData
	hasPersonal := db.First(&personal, "user_id = ?", user.ID).Error == nil

	var completedPayouts, pendingPayouts int64
	db.Model(&models.Payout{}).
		Where("user_id = ? AND status = ?", user.ID, "completed").
		Select("COALESCE(SUM(amount),0)").Scan(&completedPayouts)
	db.Model(&models.Payout{}).
		Where("user_id = ? AND status = ?", user.ID, "pending").
		Select("COALESCE(SUM(amount),0)").Scan(&pendingPayouts)

	data := map[string]interface{}{
		"user":         user,
		"profile":      profile,
		"verification": verification,
		"balance": map[string]interface{}{
			"available":         profile.AvailableBalance,
			"total_donations":   profile.TotalDonations,
			"completed_payouts": completedPayouts,
			"pending_payouts":   pendingPayouts,
		},
	}
	if hasPersonal {
		data["personal_data"] = personal
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    data,
	})
}

type updateUserStatusRequest struct {
	Status string `json:"status"`
}

// PUT /v1/admin/users/{id}/status
func UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nieprawidłowy identyfikator użytkownika"})
		return
	}

	var req updateUserStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request body"})
		return
	}
	if req.Status != "Active" && req.Status != "Inactive" && req.Status != "Suspend" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nieprawidłowy status"})
		return
	}

	db := database.DB
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Nie znaleziono użytkownika"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	if err := db.Model(&user).Update("status", req.Status).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Nie udało się zapisać zmian"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Status użytkownika został zaktualizowany",
		Data: map[string]interface{}{
			"id":     user.ID,
			"status": req.Status,
		},
	})
}
