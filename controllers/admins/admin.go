package admins

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"project/database"
	"project/models"
	"project/utils"
)

func adminIDFromRequest(r *http.Request) int64 {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return 0
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	_, claims, err := utils.ValidateAccessToken(tokenString)
	if err != nil {
		return 0
	}
	var adminID int64
	if rawID, ok := claims["id"]; ok {
		switch v := rawID.(type) {
		case float64:
			adminID = int64(v)
		case int64:
			adminID = v
		case int:
			adminID = int64(v)
		case string:
			var n int64
			_, _ = fmt.Sscanf(v, "%d", &n)
			adminID = n
		}
	}
	return adminID
}

// GET /v1/admin/profile
func GetAdminProfile(w http.ResponseWriter, r *http.Request) {
	adminID := adminIDFromRequest(r)
	if adminID == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
			Success: false,
			Message: "Unauthorized: Invalid token",
		})
		return
	}

	var admin models.Admin
	if err := database.DB.First(&admin, adminID).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
			Success: false,
			Message: "Nie znaleziono administratora",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    admin,
	})
}

type updateAdminProfileRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// PUT /v1/admin/profile
func UpdateAdminProfile(w http.ResponseWriter, r *http.Request) {
	adminID := adminIDFromRequest(r)
	if adminID == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
			Success: false,
			Message: "Unauthorized: Invalid token",
		})
		return
	}

	var req updateAdminProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	var admin models.Admin
	if err := database.DB.First(&admin, adminID).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
			Success: false,
			Message: "Nie znaleziono administratora",
		})
		return
	}

	updates := map[string]interface{}{}
	if strings.TrimSpace(req.Username) != "" {
		updates["username"] = strings.TrimSpace(req.Username)
	}
	if strings.TrimSpace(req.Name) != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if strings.TrimSpace(req.Email) != "" {
		updates["email"] = strings.TrimSpace(req.Email)
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&admin).Updates(updates).Error; err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
				Success: false,
				Message: "Nie udało się zaktualizować profilu",
			})
			return
		}
		database.DB.First(&admin, adminID)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Profil został zaktualizowany",
		Data:    admin,
	})
}

type updateAdminPasswordRequest struct {
	CurrentPassword      string `json:"current_password"`
	NewPassword          string `json:"new_password"`
	ConfirmationPassword string `json:"confirmation_password"`
}

// PUT /v1/admin/password
func UpdateAdminPassword(w http.ResponseWriter, r *http.Request) {
	adminID := adminIDFromRequest(r)
	if adminID == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
			Success: false,
			Message: "Unauthorized: Invalid token",
		})
		return
	}

	var req updateAdminPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	if strings.TrimSpace(req.CurrentPassword) == "" || strings.TrimSpace(req.NewPassword) == "" || strings.TrimSpace(req.ConfirmationPassword) == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Wszystkie pola hasła są wymagane",
		})
		return
	}
	if len(req.NewPassword) < 8 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Hasło musi mieć co najmniej 8 znaków",
		})
		return
	}
	if req.NewPassword != req.ConfirmationPassword {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Potwierdzenie hasła nie jest zgodne",
		})
		return
	}

	var admin models.Admin
	if err := database.DB.First(&admin, adminID).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
			Success: false,
			Message: "Nie znaleziono administratora",
		})
		return
	}

	if !admin.ValidatePassword(req.CurrentPassword) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
			Success: false,
			Message: "Obecne hasło jest nieprawidłowe",
		})
		return
	}

	admin.Password = req.NewPassword
	if err := admin.HashPassword(); err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Nie udało się ustawić nowego hasła",
		})
		return
	}
	if err := database.DB.Model(&admin).Update("password", admin.Password).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Nie udało się zapisać nowego hasła",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Hasło zostało zaktualizowane",
	})
}
