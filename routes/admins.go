package routes

import (
	"net/http"
	"time"

	"project/controllers/admins"
	"project/middleware"

	"github.com/gorilla/mux"
)

func SetAdminRoutes(api *mux.Router) {
	// Admin login: 5 attempts per IP per minute
	adminLoginLimiter := middleware.NewIPRateLimiter(5, time.Minute)

	// Public admin routes
	api.Handle("/admin/login", adminLoginLimiter.Middleware(http.HandlerFunc(admins.Login))).Methods(http.MethodPost)

	// Protected admin routes
	adminRouter := api.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.AdminAuthMiddleware)

	// Dashboard stats
	adminRouter.Handle("/dashboard", http.HandlerFunc(admins.GetDashboardStats)).Methods(http.MethodGet)

	// Admin profile
	adminRouter.Handle("/profile", http.HandlerFunc(admins.GetAdminProfile)).Methods(http.MethodGet)
	adminRouter.Handle("/profile", http.HandlerFunc(admins.UpdateAdminProfile)).Methods(http.MethodPut)
	adminRouter.Handle("/password", http.HandlerFunc(admins.UpdateAdminPassword)).Methods(http.MethodPut)

	// Creator management
	adminRouter.Handle("/users", http.HandlerFunc(admins.GetUsers)).Methods(http.MethodGet)
	adminRouter.Handle("/users/{id:[0-9]+}", http.HandlerFunc(admins.GetUserDetail)).Methods(http.MethodGet)
	adminRouter.Handle("/users/{id:[0-9]+}/status", http.HandlerFunc(admins.UpdateUserStatus)).Methods(http.MethodPut)

	// Payout management
	adminRouter.Handle("/payouts", http.HandlerFunc(admins.GetPayouts)).Methods(http.MethodGet)
	adminRouter.Handle("/payouts/{id:[0-9]+}/complete", http.HandlerFunc(admins.CompletePayout)).Methods(http.MethodPost)
	adminRouter.Handle("/payouts/{id:[0-9]+}/reject", http.HandlerFunc(admins.RejectPayout)).Methods(http.MethodPost)

	// KYC review
	adminRouter.Handle("/verifications", http.HandlerFunc(admins.GetVerifications)).Methods(http.MethodGet)
	adminRouter.Handle("/verifications/{user_id:[0-9]+}/approve", http.HandlerFunc(admins.ApproveVerification)).Methods(http.MethodPost)
	adminRouter.Handle("/verifications/{user_id:[0-9]+}/reject", http.HandlerFunc(admins.RejectVerification)).Methods(http.MethodPost)

	// Settings management
	adminRouter.Handle("/settings", http.HandlerFunc(admins.GetSettingsHandler)).Methods(http.MethodGet)
	adminRouter.Handle("/settings", http.HandlerFunc(admins.UpdateSettingsHandler)).Methods(http.MethodPut)
}
