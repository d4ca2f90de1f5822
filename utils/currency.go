package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// All amounts are stored in grosz (minor units). These helpers convert the
// "12.34" PLN strings accepted by the withdrawal form.

var ErrInvalidAmount = errors.New("invalid amount")

// ParsePLN converts a major-unit amount string ("10", "10.5", "10.01") to
// grosz. More than two decimal places or non-numeric input is rejected.
func ParsePLN(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// allow a comma decimal separator as typed by Polish users
	s = strings.ReplaceAll(s, ",", ".")

	whole := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole = s[:i]
		frac = s[i+1:]
	}
	// digits only; ParseInt alone would let sign characters through
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) || len(frac) > 2 {
		return 0, ErrInvalidAmount
	}
	zl, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	var gr int64
	if frac != "" {
		gr, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, ErrInvalidAmount
		}
		if len(frac) == 1 {
			gr *= 10
		}
	}
	return zl*100 + gr, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatPLN renders grosz as a major-unit string with two decimals.
func FormatPLN(grosz int64) string {
	sign := ""
	if grosz < 0 {
		sign = "-"
		grosz = -grosz
	}
	return fmt.Sprintf("%s%d.%02d", sign, grosz/100, grosz%100)
}
