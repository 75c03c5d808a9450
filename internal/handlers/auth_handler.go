package handlers

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"eyekra-backend/internal/config"
	"eyekra-backend/internal/models"
	"eyekra-backend/pkg/utils"
)

// Kode OTP berlaku 5 menit
const otpTTL = 5 * time.Minute

// SendOTP mengirim kode login ke nomor HP customer.
// Pengiriman SMS beneran di luar scope — kodenya dicatat di log server.
func SendOTP(c *gin.Context) {
	var input models.SendOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Nomor HP wajib diisi", err.Error())
		return
	}

	code := utils.GenerateOTP()

	// Kode lama untuk nomor ini hangus semua dulu
	if err := config.DB.Where("phone = ?", input.Phone).Delete(&models.OTP{}).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal menyiapkan OTP", nil)
		return
	}

	otp := models.OTP{
		Phone:     input.Phone,
		Code:      code,
		ExpiresAt: time.Now().Add(otpTTL),
	}
	if err := config.DB.Create(&otp).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal membuat OTP", nil)
		return
	}

	// Pengganti SMS gateway
	log.Printf("OTP untuk %s: %s", input.Phone, code)

	data := gin.H{"expires_at": otp.ExpiresAt}
	if os.Getenv("APP_ENV") == "development" {
		data["code"] = code // Biar gampang testing di lokal
	}

	utils.APIResponse(c, http.StatusOK, true, "OTP terkirim", data)
}

// VerifyOTP menukar kode OTP dengan token JWT.
// Nomor baru otomatis didaftarkan sebagai customer.
func VerifyOTP(c *gin.Context) {
	var input models.VerifyOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input tidak valid", err.Error())
		return
	}

	// 1. Cari kode yang masih hidup
	var otp models.OTP
	err := config.DB.
		Where("phone = ? AND code = ? AND verified = ? AND expires_at > ?",
			input.Phone, input.Code, false, time.Now()).
		First(&otp).Error
	if err != nil {
		utils.APIResponse(c, http.StatusUnauthorized, false, "Kode OTP salah atau kadaluarsa", nil)
		return
	}

	config.DB.Model(&otp).Update("verified", true)

	// 2. Cari user, atau daftarkan baru kalau belum ada
	var user models.User
	err = config.DB.Where("phone = ?", input.Phone).First(&user).Error
	if err != nil {
		user = models.User{
			Phone:      input.Phone,
			Name:       input.Name,
			Role:       models.RoleCustomer,
			IsVerified: true,
		}
		if err := config.DB.Create(&user).Error; err != nil {
			utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal mendaftarkan user", nil)
			return
		}
	} else if !user.IsVerified {
		config.DB.Model(&user).Update("is_verified", true)
	}

	// 3. Simpan token FCM kalau frontend kirim
	if input.FCMToken != "" {
		config.DB.Model(&user).Update("fcm_token", input.FCMToken)
	}

	// 4. Generate JWT
	token, err := utils.GenerateToken(user.ID, user.Phone, user.Role)
	if err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal generate token", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Login Berhasil", gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"phone": user.Phone,
			"role":  user.Role,
		},
	})
}

// Login untuk staf & admin (email + password). Customer pakai OTP.
func Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input tidak valid", nil)
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		utils.APIResponse(c, http.StatusUnauthorized, false, "Email atau Password salah", nil)
		return
	}

	if user.PasswordHash == "" || !utils.CheckPassword(input.Password, user.PasswordHash) {
		utils.APIResponse(c, http.StatusUnauthorized, false, "Email atau Password salah", nil)
		return
	}

	if input.FCMToken != "" {
		config.DB.Model(&user).Update("fcm_token", input.FCMToken)
	}

	token, err := utils.GenerateToken(user.ID, user.Phone, user.Role)
	if err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal generate token", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Login Berhasil", gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"phone": user.Phone,
			"role":  user.Role,
		},
	})
}

// Me mengembalikan profil user dari token
func Me(c *gin.Context) {
	userID, _ := c.Get("userID")

	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		utils.APIResponse(c, http.StatusNotFound, false, "User tidak ditemukan", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Profil User", user)
}
