package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const smsGatewayDefaultBaseURL = "https://api.smsapi.pl"

// SMSOTPError represents an SMS gateway API error
type SMSOTPError struct {
	Code     string
	Message  string
	HTTPCode int
}

func (e *SMSOTPError) Error() string {
	return fmt.Sprintf("sms gateway error [%s]: %s", e.Code, e.Message)
}

// GetUserFriendlyOTPMessage maps gateway error codes to user-facing messages.
func GetUserFriendlyOTPMessage(code string) string {
	switch code {
	case "otp_invalid":
		return "Kod weryfikacyjny jest nieprawidłowy."
	case "otp_expired":
		return "Kod weryfikacyjny wygasł. Poproś o nowy kod."
	case "otp_used":
		return "Ten kod został już wykorzystany."
	case "rate_limited":
		return "Zbyt wiele prób. Spróbuj ponownie później."
	case "carrier_unsupported":
		return "Operator nie jest obsługiwany."
	default:
		if strings.HasPrefix(code, "5") {
			return "Wystąpił błąd. Spróbuj ponownie później."
		}
		return "Wystąpił błąd. Skontaktuj się z pomocą techniczną, kod błędu: " + code + "."
	}
}

type smsOTPRequest struct {
	Phone string `json:"phone"`
	From  string `json:"from"`
}

type SMSOTPResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Data    struct {
		ID        string `json:"id"`
		OTPLength int    `json:"otp_length"`
		Channel   string `json:"channel"`
	} `json:"data"`
}

type smsOTPVerifyRequest struct {
	OTPID string `json:"otp_id"`
	OTP   string `json:"otp"`
}

type SMSOTPVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// OTPDevCode returns the fixed verification code configured for development
// environments. When set, no SMS is sent and VerifyOTP compares against it.
func OTPDevCode() string {
	return strings.TrimSpace(os.Getenv("OTP_DEV_CODE"))
}

// RequestOTP sends a verification code over SMS. Phone is a local Polish
// number (9 digits); the +48 prefix is added here.
func RequestOTP(phone string) (*SMSOTPResponse, error) {
	if dev := OTPDevCode(); dev != "" {
		resp := &SMSOTPResponse{Status: true, Message: "dev code active"}
		resp.Data.ID = "dev-" + phone
		resp.Data.OTPLength = len(dev)
		resp.Data.Channel = "dev"
		return resp, nil
	}

	apiKey := os.Getenv("SMS_API_KEY")
	sender := os.Getenv("SMS_SENDER_NAME")
	if apiKey == "" {
		return nil, fmt.Errorf("SMS_API_KEY not set")
	}
	baseURL := os.Getenv("SMS_API_BASE_URL")
	if baseURL == "" {
		baseURL = smsGatewayDefaultBaseURL
	}

	phoneIntl := "48" + phone

	reqBody := smsOTPRequest{Phone: phoneIntl, From: sender}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", strings.TrimRight(baseURL, "/")+"/v1/otp/request", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var otpResp SMSOTPResponse
	if err := json.Unmarshal(body, &otpResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if !otpResp.Status {
		return nil, &SMSOTPError{Code: otpResp.Code, Message: otpResp.Message, HTTPCode: resp.StatusCode}
	}
	return &otpResp, nil
}

// VerifyOTP checks a code against a previously requested OTP.
func VerifyOTP(otpID, otp string) (*SMSOTPVerifyResponse, error) {
	if dev := OTPDevCode(); dev != "" {
		if otp == dev {
			return &SMSOTPVerifyResponse{Status: true, Message: "dev code accepted"}, nil
		}
		return nil, &SMSOTPError{Code: "otp_invalid", Message: "invalid dev code", HTTPCode: http.StatusForbidden}
	}

	apiKey := os.Getenv("SMS_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("SMS_API_KEY not set")
	}
	baseURL := os.Getenv("SMS_API_BASE_URL")
	if baseURL == "" {
		baseURL = smsGatewayDefaultBaseURL
	}

	reqBody := smsOTPVerifyRequest{OTPID: otpID, OTP: otp}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", strings.TrimRight(baseURL, "/")+"/v1/otp/verify", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var verifyResp SMSOTPVerifyResponse
	if err := json.Unmarshal(body, &verifyResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if !verifyResp.Status {
		return nil, &SMSOTPError{Code: verifyResp.Code, Message: verifyResp.Message, HTTPCode: resp.StatusCode}
	}
	return &verifyResp, nil
}
