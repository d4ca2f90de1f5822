package users

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"project/database"
	"project/middleware"
	"project/models"
	"project/utils"

	"gorm.io/gorm"
)

// Onboarding steps, in order. Each step is derived from persisted state so
// the flow survives logouts and resumes where it stopped.
const (
	StepAccountType  = "account_type"
	StepPersonalData = "personal_data"
	StepPhone        = "phone"
	StepIcons        = "icons"
	StepBankAccount  = "bank_account"
	StepCompleted    = "completed"
)

var (
	phoneRe  = regexp.MustCompile(`^[0-9]{9}$`)
	nipRe    = regexp.MustCompile(`^[0-9]{10}$`)
	postalRe = regexp.MustCompile(`^[0-9]{2}-[0-9]{3}$`)
)

// DeriveOnboardingStep returns the first unfinished step.
func DeriveOnboardingStep(accountType *string, hasPersonalData, phoneVerified, iconsSelected, hasBankAccount bool) string {
	switch {
	case accountType == nil || *accountType == "":
		return StepAccountType
	case !hasPersonalData:
		return StepPersonalData
	case !phoneVerified:
		return StepPhone
	case !iconsSelected:
		return StepIcons
	case !hasBankAccount:
		return StepBankAccount
	default:
		return StepCompleted
	}
}

type onboardingState struct {
	user            models.User
	hasPersonalData bool
	verification    models.Verification
	profile         models.Profile
	hasBankAccount  bool
}

func loadOnboardingState(db *gorm.DB, uid uint) (*onboardingState, error) {
	var st onboardingState
	if err := db.First(&st.user, uid).Error; err != nil {
		return nil, err
	}
	if err := db.First(&st.profile, uid).Error; err != nil {
		return nil, err
	}
	if err := db.First(&st.verification, "user_id = ?", uid).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		st.verification = models.Verification{UserID: uid, KYCStatus: "not_started"}
	}

	var count int64
	if err := db.Model(&models.PersonalData{}).Where("user_id = ?", uid).Count(&count).Error; err != nil {
		return nil, err
	}
	st.hasPersonalData = count > 0

	if err := db.Model(&models.BankAccount{}).Where("user_id = ?", uid).Count(&count).Error; err != nil {
		return nil, err
	}
	st.hasBankAccount = count > 0
	return &st, nil
}

func (st *onboardingState) step() string {
	return DeriveOnboardingStep(
		st.user.AccountType,
		st.hasPersonalData,
		st.verification.PhoneVerified,
		st.profile.IconsSelected(),
		st.hasBankAccount,
	)
}

func writeOnboarding(w http.ResponseWriter, st *onboardingState) {
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"step": st.step(),
			"progress": map[string]bool{
				"account_type":  st.user.AccountType != nil && *st.user.AccountType != "",
				"personal_data": st.hasPersonalData,
				"phone":         st.verification.PhoneVerified,
				"icons":         st.profile.IconsSelected(),
				"bank_account":  st.hasBankAccount,
			},
		},
	})
}

// GET /v1/users/onboarding
func OnboardingStatusHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	st, err := loadOnboardingState(database.DB, uid)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}
	writeOnboarding(w, st)
}

// POST /v1/users/onboarding/account-type
func SetAccountTypeHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req struct {
		AccountType string `json:"account_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid request"})
		return
	}
	req.AccountType = strings.TrimSpace(strings.ToLower(req.AccountType))
	if req.AccountType != "individual" && req.AccountType != "company" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Wybierz typ konta: indywidualne lub firmowe"})
		return
	}

	db := database.DB
	if err := db.Model(&models.User{}).Where("id = ?", uid).Update("account_type", req.AccountType).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	st, err := loadOnboardingState(db, uid)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}
	writeOnboarding(w, st)
}

type PersonalDataRequest struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	CompanyName *string `json:"company_name"`
	TaxID       *string `json:"tax_id"`
	Street      string  `json:"street"`
	City        string  `json:"city"`
	PostalCode  string  `json:"postal_code"`
	Country     string  `json:"country"`
}

// POST /v1/users/onboarding/personal-data
// Company accounts must also provide company name and NIP.
func SetPersonalDataHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req PersonalDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid request"})
		return
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Street = strings.TrimSpace(req.Street)
	req.City = strings.TrimSpace(req.City)
	req.PostalCode = strings.TrimSpace(req.PostalCode)
	req.Country = strings.ToUpper(strings.TrimSpace(req.Country))
	if req.Country == "" {
		req.Country = "PL"
	}

	if req.FirstName == "" || req.LastName == "" || req.Street == "" || req.City == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Uzupełnij wszystkie wymagane pola"})
		return
	}
	if req.Country == "PL" && !postalRe.MatchString(req.PostalCode) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nieprawidłowy kod pocztowy"})
		return
	}
	if len(req.Country) != 2 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nieprawidłowy kraj"})
		return
	}

	db := database.DB
	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}
	if user.AccountType == nil || *user.AccountType == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Najpierw wybierz typ konta"})
		return
	}
	if *user.AccountType == "company" {
		if req.CompanyName == nil || strings.TrimSpace(*req.CompanyName) == "" {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Podaj nazwę firmy"})
			return
		}
		if req.TaxID == nil || !nipRe.MatchString(strings.TrimSpace(*req.TaxID)) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nieprawidłowy NIP"})
			return
		}
	}

	data := models.PersonalData{
		UserID:     uid,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Street:     req.Street,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	}
	if *user.AccountType == "company" {
		name := strings.TrimSpace(*req.CompanyName)
		nip := strings.TrimSpace(*req.TaxID)
		data.CompanyName = &name
		data.TaxID = &nip
	}

	if err := db.Save(&data).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Nie udało się zapisać danych"})
		return
	}

	st, err := loadOnboardingState(db, uid)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}
	writeOnboarding(w, st)
}

// POST /v1/users/onboarding/phone/request
func RequestPhoneOTPHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid request"})
		return
	}
	req.Phone = strings.TrimSpace(strings.TrimPrefix(strings.ReplaceAll(req.Phone, " ", ""), "+48"))
	if !phoneRe.MatchString(req.Phone) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Podaj poprawny numer telefonu (9 cyfr)"})
		return
	}

	ip := middleware.GetClientIP(r)
	otpLimiter := middleware.GetOTPRateLimiter()

	allowed, waitTime, msg := otpLimiter.CheckIPRateLimit(ip)
	if !allowed {
		utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
			Success: false,
			Message: msg,
			Data: map[string]interface{}{
				"retry_after_seconds": int(waitTime.Seconds()),
			},
		})
		return
	}

	allowed, waitTime, msg = otpLimiter.CheckPhoneRateLimit(req.Phone)
	if !allowed {
		utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
			Success: false,
			Message: msg,
			Data: map[string]interface{}{
				"retry_after_seconds": int(waitTime.Seconds()),
			},
		})
		return
	}

	db := database.DB

	var taken int64
	db.Model(&models.Verification{}).
		Where("phone_number = ? AND phone_verified = ? AND user_id != ?", req.Phone, true, uid).
		Count(&taken)
	if taken > 0 {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Ten numer telefonu jest już używany"})
		return
	}

	otpResp, err := utils.RequestOTP(req.Phone)
	if err != nil {
		if otpErr, ok := err.(*utils.SMSOTPError); ok {
			httpStatus := http.StatusBadRequest
			if otpErr.HTTPCode >= 400 && otpErr.HTTPCode < 600 {
				httpStatus = otpErr.HTTPCode
			}
			utils.WriteJSON(w, httpStatus, utils.APIResponse{
				Success: false,
				Message: utils.GetUserFriendlyOTPMessage(otpErr.Code),
			})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Nie udało się wysłać kodu weryfikacyjnego. Spróbuj ponownie później."})
		return
	}

	verification := models.Verification{
		UserID:    uid,
		KYCStatus: "not_started",
	}
	db.Where("user_id = ?", uid).First(&verification)
	verification.PhoneNumber = &req.Phone
	verification.PhoneVerified = false
	verification.OTPID = &otpResp.Data.ID
	if err := db.Save(&verification).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Kod weryfikacyjny został wysłany",
		Data: map[string]interface{}{
			"phone":               req.Phone,
			"retry_after_seconds": otpLimiter.GetRetryAfterSeconds(req.Phone),
		},
	})
}

// POST /v1/users/onboarding/phone/verify
func VerifyPhoneOTPHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req struct {
		OTP string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid request"})
		return
	}
	req.OTP = strings.TrimSpace(req.OTP)
	if req.OTP == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Podaj kod weryfikacyjny"})
		return
	}

	db := database.DB
	var verification models.Verification
	if err := db.First(&verification, "user_id = ?", uid).Error; err != nil || verification.OTPID == nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Najpierw poproś o kod weryfikacyjny"})
		return
	}
	if verification.PhoneVerified {
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Numer telefonu jest już zweryfikowany"})
		return
	}

	if _, err := utils.VerifyOTP(*verification.OTPID, req.OTP); err != nil {
		if otpErr, ok := err.(*utils.SMSOTPError); ok {
			httpStatus := http.StatusBadRequest
			if otpErr.HTTPCode >= 400 && otpErr.HTTPCode < 600 {
				httpStatus = otpErr.HTTPCode
			}
			utils.WriteJSON(w, httpStatus, utils.APIResponse{
				Success: false,
				Message: utils.GetUserFriendlyOTPMessage(otpErr.Code),
			})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Nie udało się zweryfikować kodu. Spróbuj ponownie później."})
		return
	}

	verification.PhoneVerified = true
	verification.OTPID = nil
	if err := db.Save(&verification).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	if verification.PhoneNumber != nil {
		middleware.GetOTPRateLimiter().ResetPhoneLimit(*verification.PhoneNumber)
	}

	st, err := loadOnboardingState(db, uid)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}
	writeOnboarding(w, st)
}

// POST /v1/users/onboarding/icons
func SetIconsHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req struct {
		SmallIcon  string `json:"small_icon"`
		MediumIcon string `json:"medium_icon"`
		LargeIcon  string `json:"large_icon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid request"})
		return
	}
	req.SmallIcon = strings.TrimSpace(req.SmallIcon)
	req.MediumIcon = strings.TrimSpace(req.MediumIcon)
	req.LargeIcon = strings.TrimSpace(req.LargeIcon)
	if req.SmallIcon == "" || req.MediumIcon == "" || req.LargeIcon == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Wybierz wszystkie trzy ikony"})
		return
	}

	db := database.DB
	if err := db.Model(&models.Profile{}).Where("id = ?", uid).Updates(map[string]interface{}{
		"small_icon":  req.SmallIcon,
		"medium_icon": req.MediumIcon,
		"large_icon":  req.LargeIcon,
	}).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	st, err := loadOnboardingState(db, uid)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}
	writeOnboarding(w, st)
}
