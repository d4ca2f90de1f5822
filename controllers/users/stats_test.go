package users

import (
	"fmt"
	"testing"
	"time"

	"project/models"
)

func strPtr(s string) *string { return &s }

func TestDonorKey(t *testing.T) {
	tests := []struct {
		name  string
		email *string
		pname *string
		id    uint
		want  string
	}{
		{"email wins", strPtr("Jan@Example.PL"), strPtr("Jan"), 1, "jan@example.pl"},
		{"email trimmed", strPtr("  a@b.pl  "), nil, 2, "a@b.pl"},
		{"empty email falls to name", strPtr("   "), strPtr("Anna Nowak"), 3, "anna nowak"},
		{"nil email falls to name", nil, strPtr("Anna"), 4, "anna"},
		{"no identity is per-payment", nil, nil, 5, "anon-5"},
		{"blank name is per-payment", strPtr(""), strPtr("  "), 6, "anon-6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DonorKey(tt.email, tt.pname, tt.id); got != tt.want {
				t.Errorf("DonorKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDonorKey_AnonymousPaymentsNeverCollide(t *testing.T) {
	seen := map[string]bool{}
	for id := uint(1); id <= 100; id++ {
		key := DonorKey(nil, nil, id)
		if seen[key] {
			t.Fatalf("duplicate anonymous key %q", key)
		}
		seen[key] = true
	}
}

func TestAggregateDonors(t *testing.T) {
	payments := []models.Payment{
		{ID: 1, Amount: 500, PayerEmail: strPtr("a@b.pl"), PayerName: strPtr("Adam")},
		{ID: 2, Amount: 1500, PayerEmail: strPtr("A@B.pl"), PayerName: strPtr("Adam B")},
		{ID: 3, Amount: 2500, PayerName: strPtr("Ewa")},
		{ID: 4, Amount: 100},
		{ID: 5, Amount: 100},
	}

	unique, top := AggregateDonors(payments)
	if unique != 4 {
		t.Fatalf("unique = %d, want 4 (email case-insensitive, anons distinct)", unique)
	}
	if len(top) != 4 {
		t.Fatalf("len(top) = %d, want 4", len(top))
	}
	if top[0].Amount != 2500 || top[0].Name != "Ewa" {
		t.Errorf("top[0] = %+v, want Ewa with 2500", top[0])
	}
	if top[1].Amount != 2000 || top[1].Count != 2 {
		t.Errorf("top[1] = %+v, want merged a@b.pl with 2000 over 2 payments", top[1])
	}
}

func TestAggregateDonors_KeysMatchDonorKey(t *testing.T) {
	// The grouping must partition payments exactly the way DonorKey does.
	var payments []models.Payment
	emails := []*string{nil, strPtr(""), strPtr("x@y.pl"), strPtr(" X@Y.PL ")}
	names := []*string{nil, strPtr(""), strPtr("Jan"), strPtr(" jan ")}
	id := uint(0)
	for _, e := range emails {
		for _, n := range names {
			id++
			payments = append(payments, models.Payment{ID: id, Amount: 100, PayerEmail: e, PayerName: n})
		}
	}

	wantKeys := map[string]bool{}
	for _, p := range payments {
		wantKeys[DonorKey(p.PayerEmail, p.PayerName, p.ID)] = true
	}

	unique, _ := AggregateDonors(payments)
	if unique != int64(len(wantKeys)) {
		t.Errorf("unique = %d, want %d distinct DonorKey values", unique, len(wantKeys))
	}
}

func TestMonthBounds(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		in        time.Time
		wantStart string
		wantEnd   string
	}{
		{time.Date(2026, 8, 31, 23, 59, 0, 0, loc), "2026-08-01", "2026-09-01"},
		{time.Date(2026, 1, 1, 0, 0, 0, 0, loc), "2026-01-01", "2026-02-01"},
		{time.Date(2026, 12, 15, 12, 0, 0, 0, loc), "2026-12-01", "2027-01-01"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			start, end := MonthBounds(tt.in)
			if got := start.Format("2006-01-02"); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := end.Format("2006-01-02"); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
		})
	}
}
