package users

import (
	"errors"
	"net/http"

	"project/database"
	"project/models"
	"project/utils"

	"gorm.io/gorm"
)

func InfoHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB
	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	var profile models.Profile
	_ = db.First(&profile, uid).Error

	var verification models.Verification
	_ = db.First(&verification, "user_id = ?", uid).Error

	balance, err := LoadBalance(db, uid)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

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
		Message: "Successfully",
		Data: map[string]interface{}{
			"user": map[string]interface{}{
				"id":              user.ID,
				"email":           user.Email,
				"account_type":    user.AccountType,
				"username":        profile.Username,
				"display_name":    profile.DisplayName,
				"bio":             profile.Bio,
				"avatar_url":      profile.AvatarURL,
				"social_links":    profile.SocialLinks,
				"total_donations": profile.TotalDonations,
				"kyc_status":      verification.KYCStatus,
				"phone_verified":  verification.PhoneVerified,
			},
			"balance": map[string]interface{}{
				"available":         balance.Available,
				"total_donations":   balance.TotalDonations,
				"completed_payouts": balance.CompletedPayouts,
				"pending_payouts":   balance.PendingPayouts,
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
