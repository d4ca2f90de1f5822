package users

import (
	"bytes"
	"encoding/json"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"project/database"
	"project/models"
	"project/utils"

	"gorm.io/gorm"
)

type UpdateProfileRequest struct {
	DisplayName  *string            `json:"display_name"`
	Bio          *string            `json:"bio"`
	SocialLinks  models.SocialLinks `json:"social_links"`
	SmallAmount  *int64             `json:"small_amount"`
	MediumAmount *int64             `json:"medium_amount"`
	LargeAmount  *int64             `json:"large_amount"`
	SmallIcon    *string            `json:"small_icon"`
	MediumIcon   *string            `json:"medium_icon"`
	LargeIcon    *string            `json:"large_icon"`
}

var allowedSocialPlatforms = map[string]bool{
	"instagram": true,
	"youtube":   true,
	"tiktok":    true,
	"twitch":    true,
	"x":         true,
	"facebook":  true,
	"website":   true,
}

// PATCH /v1/users/profile
// Fields absent from the body are left untouched.
func UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid request"})
		return
	}

	db := database.DB
	var profile models.Profile
	if err := db.First(&profile, uid).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Nie znaleziono profilu"})
		return
	}

	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if len(name) < 2 || len(name) > 100 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nazwa wyświetlana musi mieć od 2 do 100 znaków"})
			return
		}
		profile.DisplayName = name
	}

	if req.Bio != nil {
		bio := strings.TrimSpace(*req.Bio)
		if len(bio) > 2000 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Opis może mieć maksymalnie 2000 znaków"})
			return
		}
		if bio == "" {
			profile.Bio = nil
		} else {
			profile.Bio = &bio
		}
	}

	if req.SocialLinks != nil {
		cleaned := models.SocialLinks{}
		for platform, link := range req.SocialLinks {
			platform = strings.ToLower(strings.TrimSpace(platform))
			link = strings.TrimSpace(link)
			if link == "" {
				continue
			}
			if !allowedSocialPlatforms[platform] {
				utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nieobsługiwana platforma: " + platform})
				return
			}
			parsed, err := url.Parse(link)
			if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
				utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nieprawidłowy adres URL dla: " + platform})
				return
			}
			cleaned[platform] = link
		}
		profile.SocialLinks = cleaned
	}

	if req.SmallAmount != nil {
		profile.SmallAmount = *req.SmallAmount
	}
	if req.MediumAmount != nil {
		profile.MediumAmount = *req.MediumAmount
	}
	if req.LargeAmount != nil {
		profile.LargeAmount = *req.LargeAmount
	}
	if req.SmallAmount != nil || req.MediumAmount != nil || req.LargeAmount != nil {
		min := minDonationSetting(db)
		if profile.SmallAmount < min || profile.MediumAmount < min || profile.LargeAmount < min {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Minimalna sugerowana kwota to " + utils.FormatPLN(min) + " zł"})
			return
		}
		if profile.SmallAmount > profile.MediumAmount || profile.MediumAmount > profile.LargeAmount {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Kwoty muszą być rosnące"})
			return
		}
	}

	if req.SmallIcon != nil {
		profile.SmallIcon = strings.TrimSpace(*req.SmallIcon)
	}
	if req.MediumIcon != nil {
		profile.MediumIcon = strings.TrimSpace(*req.MediumIcon)
	}
	if req.LargeIcon != nil {
		profile.LargeIcon = strings.TrimSpace(*req.LargeIcon)
	}

	if err := db.Save(&profile).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Nie udało się zapisać profilu"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Profil został zaktualizowany",
		Data:    map[string]interface{}{"profile": profile},
	})
}

// minDonationSetting returns the configured minimum donation in grosz.
func minDonationSetting(db *gorm.DB) int64 {
	var setting models.Setting
	if err := db.Model(&models.Setting{}).Select("min_donation").Take(&setting).Error; err == nil && setting.MinDonation > 0 {
		return setting.MinDonation
	}
	return 100
}

// POST /v1/users/profile/avatar
// Accepts a multipart form with an "avatar" file. JPG/PNG are decoded and
// re-encoded before upload, HEIC/HEIF/WEBP pass through untouched.
func UploadAvatarHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid form data"})
		return
	}

	db := database.DB
	var profile models.Profile
	if err := db.First(&profile, uid).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Nie znaleziono profilu"})
		return
	}

	file, handler, err := r.FormFile("avatar")
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
		".heic": true,
		".heif": true,
		".webp": true,
	}
	if !allowedExts[ext] {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Obraz musi być w formacie JPG/PNG/HEIC/HEIF/WEBP"})
		return
	}
	if handler.Size > 5<<20 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Obraz może mieć maksymalnie 5MB"})
		return
	}

	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nie udało się odczytać obrazu"})
		return
	}
	detected := http.DetectContentType(buf[:n])

	isHEIC := ext == ".heic" || ext == ".heif" || detected == "image/heic" || detected == "image/heif"
	isWEBP := ext == ".webp" || detected == "image/webp"

	var imageBytes []byte
	if isHEIC || isWEBP {
		if _, err := file.Seek(0, 0); err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nie udało się odczytać obrazu"})
			return
		}
		imageBytes, err = io.ReadAll(file)
		if err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nie udało się odczytać obrazu"})
			return
		}
	} else {
		if detected != "image/jpeg" && detected != "image/png" {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Obraz musi być w formacie JPG/PNG/HEIC/HEIF/WEBP"})
			return
		}
		if _, err := file.Seek(0, 0); err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nie udało się odczytać obrazu"})
			return
		}
		allBytes, err := io.ReadAll(file)
		if err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nie udało się odczytać obrazu"})
			return
		}

		// Decode and re-encode to strip anything that is not pixel data.
		img, format, err := image.Decode(bytes.NewReader(allBytes))
		if err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nieprawidłowy format obrazu"})
			return
		}

		var outBuf bytes.Buffer
		switch format {
		case "jpeg":
			if err := jpeg.Encode(&outBuf, img, &jpeg.Options{Quality: 85}); err != nil {
				utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Nie udało się przetworzyć obrazu"})
				return
			}
		case "png":
			if err := png.Encode(&outBuf, img); err != nil {
				utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Nie udało się przetworzyć obrazu"})
				return
			}
		default:
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Obraz musi być w formacie JPG/PNG/HEIC/HEIF/WEBP"})
			return
		}
		imageBytes = outBuf.Bytes()
		if ext == ".jpeg" {
			ext = ".jpg"
		}
	}

	if profile.AvatarURL != nil && *profile.AvatarURL != "" {
		_ = utils.DeleteFromS3(avatarObjectName(*profile.AvatarURL))
	}

	objectName := "avatars/" + strconv.FormatUint(uint64(uid), 10) + "/" + strconv.FormatInt(time.Now().UnixNano(), 10) + ext
	if err := utils.UploadToS3(objectName, bytes.NewReader(imageBytes), int64(len(imageBytes))); err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Nie udało się przesłać obrazu"})
		return
	}

	publicURL := utils.PublicObjectURL(objectName)
	profile.AvatarURL = &publicURL
	if err := db.Save(&profile).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Nie udało się zapisać profilu"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Zdjęcie profilowe zostało zaktualizowane",
		Data:    map[string]interface{}{"avatar_url": publicURL},
	})
}

// DELETE /v1/users/profile/avatar
func DeleteAvatarHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB
	var profile models.Profile
	if err := db.First(&profile, uid).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Nie znaleziono profilu"})
		return
	}

	if profile.AvatarURL != nil && *profile.AvatarURL != "" {
		_ = utils.DeleteFromS3(avatarObjectName(*profile.AvatarURL))
	}

	profile.AvatarURL = nil
	if err := db.Save(&profile).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Nie udało się zapisać profilu"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Zdjęcie profilowe zostało usunięte",
		Data:    map[string]interface{}{"avatar_url": nil},
	})
}

// avatarObjectName recovers the R2 object name from a stored public URL.
func avatarObjectName(avatarURL string) string {
	parsed, err := url.Parse(avatarURL)
	if err != nil {
		return avatarURL
	}
	return strings.TrimPrefix(parsed.Path, "/")
}
