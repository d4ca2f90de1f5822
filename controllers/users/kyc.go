package users

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"project/database"
	"project/models"
	"project/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubmitKYCHandler accepts an identity document and queues it for review.
// Documents go to a private bucket prefix, never exposed by public URL.
// POST /v1/users/kyc
func SubmitKYCHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid form data"})
		return
	}

	db := database.DB
	var verification models.Verification
	if err := db.First(&verification, "user_id = ?", uid).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
			return
		}
		verification = models.Verification{UserID: uid, KYCStatus: "not_started"}
	}

	switch verification.KYCStatus {
	case "verified":
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Tożsamość jest już zweryfikowana"})
		return
	case "pending":
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Dokument jest w trakcie weryfikacji"})
		return
	}

	file, handler, err := r.FormFile("document")
	if err != nil || handler == nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Brak pliku"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(handler.Filename))
	allowedExts := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".pdf":  true,
	}
	if !allowedExts[ext] {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Dokument musi być w formacie JPG/PNG/PDF"})
		return
	}
	if handler.Size > 10<<20 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Dokument może mieć maksymalnie 10MB"})
		return
	}

	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nie udało się odczytać pliku"})
		return
	}
	detected := http.DetectContentType(buf[:n])
	if detected != "image/jpeg" && detected != "image/png" && detected != "application/pdf" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Dokument musi być w formacie JPG/PNG/PDF"})
		return
	}

	if _, err := file.Seek(0, 0); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nie udało się odczytać pliku"})
		return
	}

	objectName := "kyc/" + strconv.FormatUint(uint64(uid), 10) + "/" + uuid.NewString() + ext
	if err := utils.UploadToS3(objectName, file, handler.Size); err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Nie udało się przesłać dokumentu"})
		return
	}

	if verification.DocumentURL != nil && *verification.DocumentURL != "" {
		_ = utils.DeleteFromS3(*verification.DocumentURL)
	}

	verification.KYCStatus = "pending"
	verification.DocumentURL = &objectName
	if err := db.Save(&verification).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Dokument został przesłany do weryfikacji",
		Data:    map[string]interface{}{"kyc_status": verification.KYCStatus},
	})
}

// GET /v1/users/kyc
func KYCStatusHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	status := "not_started"
	var verification models.Verification
	if err := database.DB.First(&verification, "user_id = ?", uid).Error; err == nil {
		status = verification.KYCStatus
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"kyc_status":     status,
			"phone_verified": verification.PhoneVerified,
		},
	})
}
