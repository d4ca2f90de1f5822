package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"project/database"
	"project/utils"
)

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutHandler revokes a specific refresh token and (optionally) the access token jti from Authorization header
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return
	}
	if req.RefreshToken == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "refresh_token is required"})
		return
	}

	// Attempt to revoke access-token jti if Authorization header is present
	revokeAccessJTI(r)

	if database.DB == nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if err := database.DB.Table("refresh_tokens").Where("id = ?", req.RefreshToken).Update("revoked", true).Error; err != nil {
		// If row not found return success to avoid token enumeration
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Logged out"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Logged out"})
}

// revokeAccessJTI best-effort revokes the access token jti carried in the
// Authorization header, using remaining exp as the blacklist TTL.
func revokeAccessJTI(r *http.Request) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return
	}
	tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	_, claims, err := utils.ValidateAccessToken(tokenStr)
	if err != nil || claims == nil {
		return
	}
	jtiRaw, ok := claims["jti"].(string)
	if !ok || jtiRaw == "" {
		return
	}
	var ttl time.Duration
	if expRaw, ok := claims["exp"]; ok {
		switch v := expRaw.(type) {
		case float64:
			ttl = time.Until(time.Unix(int64(v), 0))
		case int64:
			ttl = time.Until(time.Unix(v, 0))
		}
	}
	if ttl < 0 {
		ttl = 0
	}
	_ = utils.RevokeJTI(jtiRaw, ttl)
}
