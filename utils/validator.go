package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
)

// Minimal internal validator to avoid external dependency. Supports:
// - required
// - emailok (basic RFC-ish shape, max 191 chars)
// - username (lowercase letters, digits, underscore, 3-50 chars)
// - nameok (letters, numbers, space, hyphen, apostrophe, 1-100 chars)
// - pwdmin (min length 8)
// - swift (8 or 11 alphanumeric, uppercase)
// - eqfield=OtherField (field equals another field)

var (
	reEmailOK  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	reUsername = regexp.MustCompile(`^[a-z0-9_]{3,50}$`)
	reNameOK   = regexp.MustCompile(`^[\p{L}0-9 \-']{1,100}$`)
	reSwift    = regexp.MustCompile(`^[A-Z0-9]{8}([A-Z0-9]{3})?$`)
)

// ValidateStruct inspects struct tags `validate:"..."` and returns the first error encountered.
func ValidateStruct(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return errors.New("ValidateStruct expects a struct or pointer to struct")
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}
		parts := strings.Split(tag, ",")
		fv := v.Field(i)
		var sval string
		if fv.IsValid() && fv.Kind() == reflect.String {
			sval = fv.String()
		}
		for _, p := range parts {
			p = strings.TrimSpace(p)
			switch {
			case p == "required":
				if sval == "" {
					return errors.New(field.Name + " is required")
				}
			case p == "emailok":
				if sval != "" && (len(sval) > 191 || !reEmailOK.MatchString(sval)) {
					return errors.New(field.Name + " must be a valid e-mail address")
				}
			case p == "username":
				if sval != "" && !reUsername.MatchString(sval) {
					return errors.New(field.Name + " must be 3-50 lowercase letters, digits or underscores")
				}
			case p == "nameok":
				if sval != "" && !reNameOK.MatchString(sval) {
					return errors.New(field.Name + " contains invalid characters")
				}
			case p == "pwdmin":
				if len(sval) < 8 {
					return errors.New(field.Name + " must be at least 8 characters")
				}
			case p == "swift":
				if sval != "" && !reSwift.MatchString(sval) {
					return errors.New(field.Name + " must be a valid SWIFT/BIC code")
				}
			case strings.HasPrefix(p, "eqfield="):
				other := strings.TrimPrefix(p, "eqfield=")
				of := v.FieldByName(other)
				if of.IsValid() && of.Kind() == reflect.String {
					if sval != of.String() {
						return errors.New(field.Name + " must equal " + other)
					}
				}
			}
		}
	}
	return nil
}
