package utils

import "testing"

type registerForm struct {
	Email                string `validate:"required,emailok"`
	Username             string `validate:"required,username"`
	Password             string `validate:"required,pwdmin"`
	PasswordConfirmation string `validate:"required,eqfield=Password"`
}

func TestValidateStruct_OK(t *testing.T) {
	f := registerForm{
		Email:                "anna@example.com",
		Username:             "anna_k",
		Password:             "sekretne1",
		PasswordConfirmation: "sekretne1",
	}
	if err := ValidateStruct(&f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateStruct_Rejects(t *testing.T) {
	cases := []registerForm{
		{Email: "", Username: "anna", Password: "sekretne1", PasswordConfirmation: "sekretne1"},
		{Email: "not-an-email", Username: "anna", Password: "sekretne1", PasswordConfirmation: "sekretne1"},
		{Email: "a@b.pl", Username: "An na", Password: "sekretne1", PasswordConfirmation: "sekretne1"},
		{Email: "a@b.pl", Username: "anna", Password: "short", PasswordConfirmation: "short"},
		{Email: "a@b.pl", Username: "anna", Password: "sekretne1", PasswordConfirmation: "inne_haslo"},
	}
	for i, f := range cases {
		if err := ValidateStruct(&f); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestValidateStruct_Swift(t *testing.T) {
	type bankForm struct {
		Swift string `validate:"swift"`
	}
	if err := ValidateStruct(&bankForm{Swift: "INGBPLPW"}); err != nil {
		t.Errorf("8-char SWIFT rejected: %v", err)
	}
	if err := ValidateStruct(&bankForm{Swift: "INGBPLPWXXX"}); err != nil {
		t.Errorf("11-char SWIFT rejected: %v", err)
	}
	if err := ValidateStruct(&bankForm{Swift: "ingbplpw"}); err == nil {
		t.Error("lowercase SWIFT accepted")
	}
	if err := ValidateStruct(&bankForm{Swift: "INGBPL"}); err == nil {
		t.Error("short SWIFT accepted")
	}
}
