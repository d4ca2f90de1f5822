package admins

import (
	"net/http"
	"strings"
	"time"

	"project/database"
	"project/models"
	"project/utils"
)

type DailyGrowth struct {
	Day   string `json:"day"`
	Count *int64 `json:"count"`
}

type DailyDonation struct {
	Day    string `json:"day"`
	Amount *int64 `json:"amount"`
}

type DonationDetail struct {
	CreatorName string    `json:"creator_name"`
	PayerName   string    `json:"payer_name"`
	Amount      int64     `json:"amount"`
	CompletedAt time.Time `json:"completed_at"`
}

type DashboardStats struct {
	TotalCreators        int64            `json:"total_creators"`
	ActiveCreators       int64            `json:"active_creators"`
	GrowthCreators       []DailyGrowth    `json:"growth_creators"`
	TotalDonations       int64            `json:"total_donations"`
	TotalDonationAmount  int64            `json:"total_donation_amount"`
	OverviewDonations    []DailyDonation  `json:"overview_donations"`
	PendingPayouts       int64            `json:"pending_payouts"`
	PendingVerifications int64            `json:"pending_verifications"`
	TotalBalance         int64            `json:"total_balance"`
	LastDonations        []DonationDetail `json:"last_donations"`
}

func GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	var stats DashboardStats
	db := database.DB

	// initialize slices to ensure empty arrays are returned (not null)
	stats.GrowthCreators = make([]DailyGrowth, 0)
	stats.OverviewDonations = make([]DailyDonation, 0)
	stats.LastDonations = make([]DonationDetail, 0)

	db.Model(&models.User{}).Count(&stats.TotalCreators)

	db.Model(&models.User{}).
		Where("status = ?", "Active").
		Count(&stats.ActiveCreators)

	// Creators registered per day over the last 7 days
	growthMap := map[string]int64{}
	rows, err := db.Model(&models.User{}).
		Select("DATE_FORMAT(created_at, '%Y-%m-%d') as day, COUNT(*) as count").
		Where("created_at >= NOW() - INTERVAL 7 DAY").
		Group("DATE_FORMAT(created_at, '%Y-%m-%d')").
		Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var day string
			var count int64
			if scanErr := rows.Scan(&day, &count); scanErr == nil {
				growthMap[strings.TrimSpace(day)] = count
			}
		}
	}
	for i := 6; i >= 0; i-- {
		d := time.Now().AddDate(0, 0, -i)
		dateKey := d.Format("2006-01-02")
		dayName := d.Format("Monday")
		if val, ok := growthMap[dateKey]; ok {
			v := val
			stats.GrowthCreators = append(stats.GrowthCreators, DailyGrowth{Day: dayName, Count: &v})
		} else {
			stats.GrowthCreators = append(stats.GrowthCreators, DailyGrowth{Day: dayName, Count: nil})
		}
	}

	db.Model(&models.Payment{}).
		Where("status = ?", "completed").
		Count(&stats.TotalDonations)

	db.Model(&models.Payment{}).
		Where("status = ?", "completed").
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.TotalDonationAmount)

	// Completed donation volume per day over the last 7 days
	donationMap := map[string]int64{}
	rows, err = db.Model(&models.Payment{}).
		Select("DATE_FORMAT(completed_at, '%Y-%m-%d') as day, COALESCE(SUM(amount), 0) as amount").
		Where("status = ? AND completed_at >= CURDATE() - INTERVAL 6 DAY", "completed").
		Group("DATE_FORMAT(completed_at, '%Y-%m-%d')").
		Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var day string
			var amount int64
			if scanErr := rows.Scan(&day, &amount); scanErr == nil {
				donationMap[strings.TrimSpace(day)] = amount
			}
		}
	}
	for i := 6; i >= 0; i-- {
		d := time.Now().AddDate(0, 0, -i)
		dateKey := d.Format("2006-01-02")
		dayName := d.Format("Monday")
		if val, ok := donationMap[dateKey]; ok {
			v := val
			stats.OverviewDonations = append(stats.OverviewDonations, DailyDonation{Day: dayName, Amount: &v})
		} else {
			stats.OverviewDonations = append(stats.OverviewDonations, DailyDonation{Day: dayName, Amount: nil})
		}
	}

	db.Model(&models.Payout{}).
		Where("status = ?", "pending").
		Count(&stats.PendingPayouts)

	db.Model(&models.Verification{}).
		Where("kyc_status = ?", "pending").
		Count(&stats.PendingVerifications)

	type Result struct {
		TotalBalance int64
	}
	var result Result
	db.Model(&models.Profile{}).
		Select("COALESCE(SUM(available_balance), 0) as total_balance").
		Scan(&result)
	stats.TotalBalance = result.TotalBalance

	// Last 10 completed donations
	type lastDonationRow struct {
		DisplayName string
		PayerName   *string
		Amount      int64
		CompletedAt time.Time
	}
	var last []lastDonationRow
	db.Model(&models.Payment{}).
		Select("profiles.display_name, payments.payer_name, payments.amount, payments.completed_at").
		Joins("JOIN profiles ON payments.creator_id = profiles.id").
		Where("payments.status = ?", "completed").
		Order("payments.completed_at DESC").
		Limit(10).
		Find(&last)
	for _, row := range last {
		payer := "Anonim"
		if row.PayerName != nil && strings.TrimSpace(*row.PayerName) != "" {
			payer = strings.TrimSpace(*row.PayerName)
		}
		stats.LastDonations = append(stats.LastDonations, DonationDetail{
			CreatorName: row.DisplayName,
			PayerName:   payer,
			Amount:      row.Amount,
			CompletedAt: row.CompletedAt,
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    stats,
	})
}
