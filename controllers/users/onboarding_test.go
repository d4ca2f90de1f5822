package users

import "testing"

func TestDeriveOnboardingStep(t *testing.T) {
	individual := "individual"
	empty := ""

	tests := []struct {
		name            string
		accountType     *string
		hasPersonalData bool
		phoneVerified   bool
		iconsSelected   bool
		hasBankAccount  bool
		want            string
	}{
		{"fresh account", nil, false, false, false, false, StepAccountType},
		{"empty account type", &empty, false, false, false, false, StepAccountType},
		{"after account type", &individual, false, false, false, false, StepPersonalData},
		{"after personal data", &individual, true, false, false, false, StepPhone},
		{"after phone", &individual, true, true, false, false, StepIcons},
		{"after icons", &individual, true, true, true, false, StepBankAccount},
		{"all done", &individual, true, true, true, true, StepCompleted},
		{"skipped middle step still reported", &individual, false, true, true, true, StepPersonalData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveOnboardingStep(tt.accountType, tt.hasPersonalData, tt.phoneVerified, tt.iconsSelected, tt.hasBankAccount)
			if got != tt.want {
				t.Errorf("DeriveOnboardingStep() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGoalProgress(t *testing.T) {
	tests := []struct {
		name    string
		current int64
		target  int64
		want    float64
	}{
		{"zero target", 100, 0, 0},
		{"no progress", 0, 10000, 0},
		{"half", 5000, 10000, 50},
		{"rounded", 3333, 10000, 33.33},
		{"overshoot capped", 15000, 10000, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GoalProgress(tt.current, tt.target); got != tt.want {
				t.Errorf("GoalProgress(%d, %d) = %v, want %v", tt.current, tt.target, got, tt.want)
			}
		})
	}
}
