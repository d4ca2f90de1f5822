package users

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"project/database"
	"project/models"
	"project/utils"

	"gorm.io/gorm"
)

// donorGroupExpr collapses payments into donors: by email when present,
// otherwise by payer name, otherwise each anonymous payment counts as its
// own donor. Must stay in sync with DonorKey.
const donorGroupExpr = "COALESCE(NULLIF(LOWER(TRIM(payer_email)), ''), NULLIF(LOWER(TRIM(payer_name)), ''), CONCAT('anon-', payments.id))"

// DonorKey is the in-memory counterpart of donorGroupExpr.
func DonorKey(payerEmail, payerName *string, paymentID uint) string {
	if payerEmail != nil {
		if e := strings.ToLower(strings.TrimSpace(*payerEmail)); e != "" {
			return e
		}
	}
	if payerName != nil {
		if n := strings.ToLower(strings.TrimSpace(*payerName)); n != "" {
			return n
		}
	}
	return "anon-" + strconv.FormatUint(uint64(paymentID), 10)
}

// MonthBounds returns the [start, end) window of the calendar month that
// contains t, in t's location.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}

type monthStats struct {
	Amount int64 `json:"amount"`
	Count  int64 `json:"count"`
}

type topDonor struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
	Count  int64  `json:"count"`
}

// StatsHandler returns the creator's donation statistics.
// GET /v1/users/stats
func StatsHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	db := database.DB

	base := db.Model(&models.Payment{}).Where("creator_id = ? AND status = ?", uid, "completed")

	var totalCount int64
	if err := base.Session(&gorm.Session{}).Count(&totalCount).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	var totalAmount int64
	base.Session(&gorm.Session{}).Select("COALESCE(SUM(amount), 0)").Scan(&totalAmount)

	uniqueDonors, topDonors := donorAggregates(db, uid)

	now := time.Now()
	curStart, curEnd := MonthBounds(now)
	prevStart, _ := MonthBounds(curStart.AddDate(0, 0, -1))

	current := sumMonth(db, uid, curStart, curEnd)
	previous := sumMonth(db, uid, prevStart, curStart)

	var changePercent *float64
	if previous.Amount > 0 {
		pct := utils.RoundFloat(float64(current.Amount-previous.Amount)/float64(previous.Amount)*100, 2)
		changePercent = &pct
	}

	recent := recentDonations(db, uid, 10)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"totals": map[string]interface{}{
				"amount":        totalAmount,
				"count":         totalCount,
				"unique_donors": uniqueDonors,
			},
			"month": map[string]interface{}{
				"current":        current,
				"previous":       previous,
				"change_percent": changePercent,
			},
			"top_donors": topDonors,
			"recent":     recent,
		},
	})
}

// donorAggregates groups completed payments by donor. The grouping runs in
// SQL; when that fails it falls back to rescanning the rows in memory so the
// endpoint degrades instead of erroring.
func donorAggregates(db *gorm.DB, uid uint) (int64, []topDonor) {
	var uniqueDonors int64
	err := db.Model(&models.Payment{}).
		Where("creator_id = ? AND status = ?", uid, "completed").
		Select("COUNT(DISTINCT " + donorGroupExpr + ")").
		Scan(&uniqueDonors).Error

	var top []topDonor
	if err == nil {
		rows, rErr := db.Model(&models.Payment{}).
			Select(donorGroupExpr + " as donor_key, COALESCE(NULLIF(TRIM(MAX(payer_name)), ''), 'Anonim') as name, SUM(amount) as amount, COUNT(*) as count").
			Where("creator_id = ? AND status = ?", uid, "completed").
			Group("donor_key").
			Order("amount DESC").
			Limit(5).
			Rows()
		if rErr == nil {
			defer rows.Close()
			for rows.Next() {
				var key string
				var d topDonor
				if scanErr := rows.Scan(&key, &d.Name, &d.Amount, &d.Count); scanErr == nil {
					top = append(top, d)
				}
			}
			return uniqueDonors, top
		}
	}

	var payments []models.Payment
	if err := db.Where("creator_id = ? AND status = ?", uid, "completed").Find(&payments).Error; err != nil {
		return 0, nil
	}
	return AggregateDonors(payments)
}

// AggregateDonors is the in-memory fallback for donorAggregates. It must
// produce the same donor set as the SQL grouping.
func AggregateDonors(payments []models.Payment) (int64, []topDonor) {
	type bucket struct {
		name   string
		amount int64
		count  int64
	}
	buckets := map[string]*bucket{}
	for _, p := range payments {
		key := DonorKey(p.PayerEmail, p.PayerName, p.ID)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{name: "Anonim"}
			buckets[key] = b
		}
		if p.PayerName != nil {
			if n := strings.TrimSpace(*p.PayerName); n != "" {
				b.name = n
			}
		}
		b.amount += p.Amount
		b.count++
	}

	top := make([]topDonor, 0, len(buckets))
	for _, b := range buckets {
		top = append(top, topDonor{Name: b.name, Amount: b.amount, Count: b.count})
	}
	for i := 0; i < len(top); i++ {
		for j := i + 1; j < len(top); j++ {
			if top[j].Amount > top[i].Amount {
				top[i], top[j] = top[j], top[i]
			}
		}
	}
	if len(top) > 5 {
		top = top[:5]
	}
	return int64(len(buckets)), top
}

func sumMonth(db *gorm.DB, uid uint, start, end time.Time) monthStats {
	var s monthStats
	db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) as amount, COUNT(*) as count").
		Where("creator_id = ? AND status = ? AND completed_at >= ? AND completed_at < ?", uid, "completed", start, end).
		Scan(&s)
	return s
}

func recentDonations(db *gorm.DB, uid uint, limit int) []map[string]interface{} {
	var payments []models.Payment
	db.Where("creator_id = ? AND status = ?", uid, "completed").
		Order("completed_at DESC").
		Limit(limit).
		Find(&payments)

	out := make([]map[string]interface{}, 0, len(payments))
	for _, p := range payments {
		name := "Anonim"
		if p.PayerName != nil && strings.TrimSpace(*p.PayerName) != "" {
			name = strings.TrimSpace(*p.PayerName)
		}
		out = append(out, map[string]interface{}{
			"name":         name,
			"amount":       p.Amount,
			"message":      p.Message,
			"completed_at": p.CompletedAt,
		})
	}
	return out
}
