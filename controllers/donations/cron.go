package donations

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"project/database"
	"project/models"
	"project/utils"
)

// CronExpirePaymentsHandler fails pending payments whose checkout was never
// completed. Stripe checkout sessions expire after 24h, so anything pending
// longer than that is dead.
// POST /v1/cron/expire-payments
func CronExpirePaymentsHandler(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-CRON-KEY")
	if key == "" || key != os.Getenv("CRON_KEY") {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	maxAgeHours := 24
	if s := os.Getenv("PAYMENT_EXPIRE_HOURS"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			maxAgeHours = v
		}
	}
	cutoff := time.Now().Add(-time.Duration(maxAgeHours) * time.Hour)

	res := database.DB.Model(&models.Payment{}).
		Where("status = ? AND created_at < ?", "pending", cutoff).
		Update("status", "failed")
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    map[string]interface{}{"expired": res.RowsAffected},
	})
}
