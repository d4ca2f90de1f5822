package routes

import (
	"net/http"
	"time"

	"project/controllers/auth"
	"project/controllers/users"
	"project/middleware"

	"github.com/gorilla/mux"
)

// UsersRoutes registers the auth and creator endpoints on the given subrouter.
func UsersRoutes(api *mux.Router) {
	// Login/register: 60 per IP per 5 minutes
	loginLimiter := middleware.NewIPRateLimiter(60, 5*time.Minute)
	// Session: 120 reads, 60 writes per user per minute
	userLimiter := middleware.NewUserRateLimiter(120, 60, 60)

	// Register & Login
	api.Handle("/register", loginLimiter.Middleware(http.HandlerFunc(auth.RegisterHandler))).Methods(http.MethodPost)
	api.Handle("/login", loginLimiter.Middleware(http.HandlerFunc(auth.LoginHandler))).Methods(http.MethodPost)
	api.Handle("/refresh", loginLimiter.Middleware(http.HandlerFunc(auth.RefreshHandler))).Methods(http.MethodPost)
	api.Handle("/logout", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(auth.LogoutHandler)))).Methods(http.MethodPost)
	api.Handle("/logout-all", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(auth.LogoutAllHandler)))).Methods(http.MethodPost)

	// User info (read)
	api.Handle("/users/info", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.InfoHandler)))).Methods(http.MethodGet)

	// Onboarding
	api.Handle("/users/onboarding", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.OnboardingStatusHandler)))).Methods(http.MethodGet)
	api.Handle("/users/onboarding/account-type", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.SetAccountTypeHandler)))).Methods(http.MethodPost)
	api.Handle("/users/onboarding/personal-data", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.SetPersonalDataHandler)))).Methods(http.MethodPost)
	api.Handle("/users/onboarding/phone/request", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.RequestPhoneOTPHandler)))).Methods(http.MethodPost)
	api.Handle("/users/onboarding/phone/verify", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.VerifyPhoneOTPHandler)))).Methods(http.MethodPost)
	api.Handle("/users/onboarding/icons", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.SetIconsHandler)))).Methods(http.MethodPost)

	// Profile
	api.Handle("/users/profile", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.UpdateProfileHandler)))).Methods(http.MethodPatch)
	api.Handle("/users/profile/avatar", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.UploadAvatarHandler)))).Methods(http.MethodPost)
	api.Handle("/users/profile/avatar", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.DeleteAvatarHandler)))).Methods(http.MethodDelete)

	// Bank account (single current account per creator)
	api.Handle("/users/bank-account", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.SaveBankAccountHandler)))).Methods(http.MethodPut)
	api.Handle("/users/bank-account", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.GetBankAccountHandler)))).Methods(http.MethodGet)

	// KYC
	api.Handle("/users/kyc", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.SubmitKYCHandler)))).Methods(http.MethodPost)
	api.Handle("/users/kyc", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.KYCStatusHandler)))).Methods(http.MethodGet)

	// Payouts
	api.Handle("/users/payouts", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.PayoutHandler)))).Methods(http.MethodPost)
	api.Handle("/users/payouts", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.ListPayoutsHandler)))).Methods(http.MethodGet)

	// Donation goals
	api.Handle("/users/goals", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.CreateGoalHandler)))).Methods(http.MethodPost)
	api.Handle("/users/goals", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.ListGoalsHandler)))).Methods(http.MethodGet)
	api.Handle("/users/goals/{id:[0-9]+}", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.UpdateGoalHandler)))).Methods(http.MethodPut)
	api.Handle("/users/goals/{id:[0-9]+}", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.DeleteGoalHandler)))).Methods(http.MethodDelete)

	// Donation stats
	api.Handle("/users/stats", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.StatsHandler)))).Methods(http.MethodGet)
}
