package users

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"project/database"
	"project/models"
	"project/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type GoalRequest struct {
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	TargetAmount int64   `json:"target_amount"`
	EndDate      *string `json:"end_date"`
	Active       *bool   `json:"active"`
}

// GoalProgress returns percent of target reached, capped at 100.
func GoalProgress(current, target int64) float64 {
	if target <= 0 {
		return 0
	}
	pct := utils.RoundFloat(float64(current)/float64(target)*100, 2)
	if pct > 100 {
		return 100
	}
	return pct
}

func goalResponse(g *models.DonationGoal) map[string]interface{} {
	return map[string]interface{}{
		"id":             g.ID,
		"title":          g.Title,
		"description":    g.Description,
		"target_amount":  g.TargetAmount,
		"current_amount": g.CurrentAmount,
		"progress":       GoalProgress(g.CurrentAmount, g.TargetAmount),
		"start_date":     g.StartDate,
		"end_date":       g.EndDate,
		"active":         g.Active,
	}
}

func parseGoalRequest(w http.ResponseWriter, r *http.Request) (*GoalRequest, *time.Time, bool) {
	var req GoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid request"})
		return nil, nil, false
	}
	req.Title = strings.TrimSpace(req.Title)
	if len(req.Title) < 2 || len(req.Title) > 100 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Tytuł musi mieć od 2 do 100 znaków"})
		return nil, nil, false
	}
	if req.TargetAmount <= 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Kwota docelowa musi być większa od zera"})
		return nil, nil, false
	}
	var endDate *time.Time
	if req.EndDate != nil && strings.TrimSpace(*req.EndDate) != "" {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*req.EndDate))
		if err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nieprawidłowa data zakończenia"})
			return nil, nil, false
		}
		if parsed.Before(time.Now()) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Data zakończenia musi być w przyszłości"})
			return nil, nil, false
		}
		endDate = &parsed
	}
	return &req, endDate, true
}

// CreateGoalHandler creates a goal. A new active goal deactivates the
// previous one, one active goal per creator.
// POST /v1/users/goals
func CreateGoalHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	req, endDate, ok := parseGoalRequest(w, r)
	if !ok {
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	goal := models.DonationGoal{
		UserID:       uid,
		Title:        req.Title,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		StartDate:    time.Now(),
		EndDate:      endDate,
		Active:       active,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if active {
			if err := tx.Model(&models.DonationGoal{}).
				Where("user_id = ? AND active = ?", uid, true).
				Update("active", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&goal).Error
	})
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Nie udało się utworzyć celu"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Cel został utworzony",
		Data:    map[string]interface{}{"goal": goalResponse(&goal)},
	})
}

// UpdateGoalHandler edits a goal owned by the caller. Activating a goal
// deactivates the others.
// PUT /v1/users/goals/{id}
func UpdateGoalHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	goalID := mux.Vars(r)["id"]
	db := database.DB

	var goal models.DonationGoal
	if err := db.Where("id = ? AND user_id = ?", goalID, uid).First(&goal).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Nie znaleziono celu"})
		return
	}

	req, endDate, ok := parseGoalRequest(w, r)
	if !ok {
		return
	}

	goal.Title = req.Title
	goal.Description = req.Description
	goal.TargetAmount = req.TargetAmount
	goal.EndDate = endDate
	if req.Active != nil {
		goal.Active = *req.Active
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if goal.Active {
			if err := tx.Model(&models.DonationGoal{}).
				Where("user_id = ? AND active = ? AND id != ?", uid, true, goal.ID).
				Update("active", false).Error; err != nil {
				return err
			}
		}
		return tx.Save(&goal).Error
	})
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Nie udało się zapisać celu"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Cel został zaktualizowany",
		Data:    map[string]interface{}{"goal": goalResponse(&goal)},
	})
}

// ListGoalsHandler returns all goals of the caller, newest first.
// GET /v1/users/goals
func ListGoalsHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var goals []models.DonationGoal
	if err := database.DB.Where("user_id = ?", uid).Order("created_at DESC").Find(&goals).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	out := make([]map[string]interface{}, 0, len(goals))
	for i := range goals {
		out = append(out, goalResponse(&goals[i]))
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    map[string]interface{}{"goals": out},
	})
}

// DeleteGoalHandler removes a goal owned by the caller.
// DELETE /v1/users/goals/{id}
func DeleteGoalHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	goalID := mux.Vars(r)["id"]
	res := database.DB.Where("id = ? AND user_id = ?", goalID, uid).Delete(&models.DonationGoal{})
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Nie znaleziono celu"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Cel został usunięty"})
}
