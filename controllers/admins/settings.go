package admins

import (
	"encoding/json"
	"net/http"

	"project/database"
	"project/models"
	"project/utils"
)

type SettingRequest struct {
	Name           string `json:"name"`
	Company        string `json:"company"`
	Logo           string `json:"logo"`
	MinDonation    int64  `json:"min_donation"`
	MinPayout      int64  `json:"min_payout"`
	MaxPayout      int64  `json:"max_payout"`
	Maintenance    bool   `json:"maintenance"`
	ClosedRegister bool   `json:"closed_register"`
	LinkHelp       string `json:"link_help"`
	LinkTerms      string `json:"link_terms"`
}

func settingResponse(s *models.Setting) map[string]interface{} {
	return map[string]interface{}{
		"name":            s.Name,
		"company":         s.Company,
		"logo":            s.Logo,
		"min_donation":    s.MinDonation,
		"min_payout":      s.MinPayout,
		"max_payout":      s.MaxPayout,
		"maintenance":     s.Maintenance,
		"closed_register": s.ClosedRegister,
		"link_help":       s.LinkHelp,
		"link_terms":      s.LinkTerms,
	}
}

// GET /v1/admin/settings
func GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var setting models.Setting
	if err := database.DB.Model(&models.Setting{}).First(&setting).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Wystąpił błąd systemu, spróbuj ponownie",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    settingResponse(&setting),
	})
}

// PUT /v1/admin/settings
func UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var req SettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	if req.MinDonation < 0 || req.MinPayout < 0 || req.MaxPayout < 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Limity kwot nie mogą być ujemne",
		})
		return
	}
	if req.MaxPayout > 0 && req.MinPayout > req.MaxPayout {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Minimalna wypłata nie może przekraczać maksymalnej",
		})
		return
	}

	db := database.DB
	var setting models.Setting
	if err := db.Model(&models.Setting{}).First(&setting).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Wystąpił błąd systemu, spróbuj ponownie",
		})
		return
	}

	setting.Name = req.Name
	setting.Company = req.Company
	setting.Logo = req.Logo
	setting.MinDonation = req.MinDonation
	setting.MinPayout = req.MinPayout
	setting.MaxPayout = req.MaxPayout
	setting.Maintenance = req.Maintenance
	setting.ClosedRegister = req.ClosedRegister
	setting.LinkHelp = req.LinkHelp
	setting.LinkTerms = req.LinkTerms

	if err := db.Model(&models.Setting{}).Where("id = ?", setting.ID).Updates(map[string]interface{}{
		"name":            setting.Name,
		"company":         setting.Company,
		"logo":            setting.Logo,
		"min_donation":    setting.MinDonation,
		"min_payout":      setting.MinPayout,
		"max_payout":      setting.MaxPayout,
		"maintenance":     setting.Maintenance,
		"closed_register": setting.ClosedRegister,
		"link_help":       setting.LinkHelp,
		"link_terms":      setting.LinkTerms,
	}).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Wystąpił błąd systemu, spróbuj ponownie",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Ustawienia zostały zaktualizowane",
		Data:    settingResponse(&setting),
	})
}
