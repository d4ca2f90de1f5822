package auth

import (
	"net/http"
	"strings"
	"time"

	"project/database"
	"project/middleware"
	"project/models"
	"project/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,emailok"`
	Password string `json:"password" validate:"required,pwdmin"`
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	// Check maintenance mode
	var appSetting models.Setting
	if err := database.DB.Model(&models.Setting{}).Select("maintenance, name").Take(&appSetting).Error; err == nil && appSetting.Maintenance {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Trwa przerwa techniczna. Spróbuj ponownie później.",
			Data:    map[string]interface{}{"maintenance": true, "application": appSetting.Name},
		})
		return
	}

	db := database.DB

	var user models.User
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Nieprawidłowy e-mail lub hasło"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	// Only Active users can login
	status := strings.ToLower(user.Status)
	if status != "active" {
		if status == "suspend" {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Twoje konto zostało zawieszone, skontaktuj się z administratorem"})
			return
		}
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Twoje konto jest nieaktywne, skontaktuj się z administratorem"})
		return
	}

	// check account lockout
	if locked, retry := middleware.IsAccountLocked(user.ID); locked {
		utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{Success: false, Message: "Zbyt wiele prób logowania. Spróbuj ponownie później.", Data: map[string]interface{}{"retry_after_seconds": int(retry.Seconds())}})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		middleware.RecordFailedLogin(user.ID)
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Nieprawidłowy e-mail lub hasło"})
		return
	}

	middleware.ResetFailedLogin(user.ID)

	tokenExpiry := 15 * time.Minute
	exp := time.Now().Add(tokenExpiry)

	accessToken, err := utils.GenerateAccessTokenWithExpiry(user.ID, "user", tokenExpiry)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Logowanie nie powiodło się"})
		return
	}
	refreshJTI, _, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Nie udało się zapisać tokenu odświeżania"})
		return
	}

	var profile models.Profile
	_ = db.First(&profile, user.ID).Error

	var setting models.Setting
	err = db.Model(&models.Setting{}).
		Select("name, company, logo, min_donation, min_payout, max_payout, link_help, link_terms").
		Take(&setting).Error
	healthy := true
	if err != nil {
		healthy = false
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Zalogowano pomyślnie!",
		Data: map[string]interface{}{
			"access_token":  accessToken,
			"access_expire": exp.UTC().Format(time.RFC3339),
			"refresh_token": refreshJTI,
			"user": map[string]interface{}{
				"id":           user.ID,
				"email":        user.Email,
				"account_type": user.AccountType,
				"username":     profile.Username,
				"display_name": profile.DisplayName,
				"avatar_url":   profile.AvatarURL,
			},
			"application": map[string]interface{}{
				"name":         setting.Name,
				"company":      setting.Company,
				"logo":         setting.Logo,
				"min_donation": setting.MinDonation,
				"min_payout":   setting.MinPayout,
				"max_payout":   setting.MaxPayout,
				"link_help":    setting.LinkHelp,
				"link_terms":   setting.LinkTerms,
				"healthy":      healthy,
			},
		},
	})
}
