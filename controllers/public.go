package controllers

import (
	"net/http"
	"strings"

	"project/database"
	"project/models"
	"project/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// CreatorPageHandler serves the public donation page data. No auth, no
// sensitive fields, only what a supporter needs to donate.
// GET /v1/creators/{username}
func CreatorPageHandler(w http.ResponseWriter, r *http.Request) {
	username := strings.ToLower(strings.TrimSpace(mux.Vars(r)["username"]))
	if username == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid request"})
		return
	}

	db := database.DB

	var profile models.Profile
	if err := db.Where("username = ?", username).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Nie znaleziono twórcy"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	var user models.User
	if err := db.First(&user, profile.ID).Error; err != nil || user.Status != "Active" {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Nie znaleziono twórcy"})
		return
	}

	data := map[string]interface{}{
		"creator": map[string]interface{}{
			"username":     profile.Username,
			"display_name": profile.DisplayName,
			"bio":          profile.Bio,
			"avatar_url":   profile.AvatarURL,
			"social_links": profile.SocialLinks,
			"amounts": []map[string]interface{}{
				{"amount": profile.SmallAmount, "icon": profile.SmallIcon},
				{"amount": profile.MediumAmount, "icon": profile.MediumIcon},
				{"amount": profile.LargeAmount, "icon": profile.LargeIcon},
			},
		},
	}

	var goal models.DonationGoal
	if err := db.Where("user_id = ? AND active = ?", profile.ID, true).First(&goal).Error; err == nil {
		progress := 0.0
		if goal.TargetAmount > 0 {
			progress = utils.RoundFloat(float64(goal.CurrentAmount)/float64(goal.TargetAmount)*100, 2)
			if progress > 100 {
				progress = 100
			}
		}
		data["goal"] = map[string]interface{}{
			"title":          goal.Title,
			"description":    goal.Description,
			"target_amount":  goal.TargetAmount,
			"current_amount": goal.CurrentAmount,
			"progress":       progress,
			"end_date":       goal.EndDate,
		}
	}

	var setting models.Setting
	if err := db.Model(&models.Setting{}).Select("min_donation").Take(&setting).Error; err == nil && setting.MinDonation > 0 {
		data["min_donation"] = setting.MinDonation
	} else {
		data["min_donation"] = int64(100)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    data,
	})
}
