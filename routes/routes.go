package routes

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"project/controllers"
	"project/controllers/donations"
	"project/middleware"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func InitRouter() *mux.Router {
	r := mux.NewRouter()

	// Health check endpoint for Docker health checks (root level)
	r.Handle("/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"service":   "impactmarket-api",
		})
	})).Methods(http.MethodGet)

	// Add CORS middleware - origins from CORS_ALLOWED_ORIGINS (comma-separated) or defaults
	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	origins := []string{
		"https://impactmarket.pl", "https://www.impactmarket.pl", "https://panel.impactmarket.pl",
		"http://localhost:3000", "http://localhost:8080", "http://127.0.0.1:3000", "http://127.0.0.1:8080",
	}
	if originsEnv != "" {
		parts := strings.Split(originsEnv, ",")
		for _, p := range parts {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
	}
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "Stripe-Signature", "X-CRON-KEY", "X-Requested-With", "X-Request-ID"}),
			handlers.AllowCredentials(),
		)(next)
	})

	api := r.PathPrefix("/v1").Subrouter()

	// Catch-all OPTIONS handler for CORS preflight
	api.PathPrefix("/").HandlerFunc(optionsHandler).Methods(http.MethodOptions)

	// Cron: 1000 requests per hour per IP
	cronLimiter := middleware.NewIPRateLimiter(1000, time.Hour)
	// Webhook: 500 per IP per hour, sliding window, Stripe IPs whitelisted via env
	webhookWhitelist := []string{"127.0.0.1"}
	if env := os.Getenv("WEBHOOK_IP_WHITELIST"); env != "" {
		for _, p := range strings.Split(env, ",") {
			if ip := strings.TrimSpace(p); ip != "" {
				webhookWhitelist = append(webhookWhitelist, ip)
			}
		}
	}
	webhookLimiter := middleware.NewWebhookLimiter(500, time.Hour, webhookWhitelist)
	// Donation intake is public, keep it behind a per-IP limiter
	donationLimiter := middleware.NewIPRateLimiter(60, 5*time.Minute)

	// Stripe webhook (signature-verified inside the handler)
	api.Handle("/webhooks/stripe", webhookLimiter.Middleware(http.HandlerFunc(donations.StripeWebhookHandler))).Methods(http.MethodPost)

	// Cron endpoint for expiring stale pending payments (protected via X-CRON-KEY header)
	api.Handle("/cron/expire-payments", cronLimiter.Middleware(http.HandlerFunc(donations.CronExpirePaymentsHandler))).Methods(http.MethodPost)

	// Public creator page
	api.Handle("/creators/{username}", donationLimiter.Middleware(http.HandlerFunc(controllers.CreatorPageHandler))).Methods(http.MethodGet)

	// Donation intake (public, no auth)
	api.Handle("/donations/ping", donationLimiter.Middleware(http.HandlerFunc(donations.PingHandler))).Methods(http.MethodGet)
	api.Handle("/donations", donationLimiter.Middleware(http.HandlerFunc(donations.CreateDonationHandler))).Methods(http.MethodPost)
	api.Handle("/donations/intent", donationLimiter.Middleware(http.HandlerFunc(donations.CreateDonationIntentHandler))).Methods(http.MethodPost)
	api.Handle("/donations/{id:[0-9]+}/payment-info", donationLimiter.Middleware(http.HandlerFunc(donations.UpdatePaymentInfoHandler))).Methods(http.MethodPost)

	// Health check endpoint under the API prefix
	api.Handle("/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"service":   "impactmarket-api",
		})
	})).Methods(http.MethodGet)

	UsersRoutes(api)

	SetAdminRoutes(api)

	return r
}
