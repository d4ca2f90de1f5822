package users

import "testing"

func TestAvailableBalance(t *testing.T) {
	cases := []struct {
		name                                            string
		cached, donations, completedPay, pendingPay int64
		want                                            int64
	}{
		{"no activity", 0, 0, 0, 0, 0},
		{"donations only", 5000, 5000, 0, 0, 5000},
		{"completed payout already debited from cache", 3000, 5000, 2000, 0, 3000},
		{"pending payout reserves amount", 5000, 5000, 0, 2000, 3000},
		{"pending exceeds cache", 1000, 1000, 0, 1500, 0},
		{"cache drifted high, ledger wins", 9000, 5000, 2000, 0, 3000},
		{"cache drifted low, cache wins", 1000, 5000, 0, 0, 1000},
		{"everything paid out", 0, 5000, 5000, 0, 0},
		{"never negative", 0, 1000, 2000, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := AvailableBalance(c.cached, c.donations, c.completedPay, c.pendingPay)
			if got != c.want {
				t.Errorf("AvailableBalance(%d, %d, %d, %d) = %d, want %d",
					c.cached, c.donations, c.completedPay, c.pendingPay, got, c.want)
			}
		})
	}
}

func TestMaskAccountNumber(t *testing.T) {
	if got := MaskAccountNumber("12345678901234567890123456"); got != "1234****3456" {
		t.Errorf("mask = %q", got)
	}
	if got := MaskAccountNumber("123456"); got != "123456" {
		t.Errorf("short numbers should pass through, got %q", got)
	}
}
