package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"eyekra-backend/internal/models"
	"eyekra-backend/pkg/utils"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Ambil Header Authorization
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.APIResponse(c, http.StatusUnauthorized, false, "Token tidak ditemukan", nil)
			c.Abort()
			return
		}

		// 2. Format harus "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.APIResponse(c, http.StatusUnauthorized, false, "Format token salah", nil)
			c.Abort()
			return
		}

		tokenString := parts[1]

		// 3. Validasi Token
		token, err := utils.ValidateToken(tokenString)
		if err != nil || !token.Valid {
			utils.APIResponse(c, http.StatusUnauthorized, false, "Token tidak valid", nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			utils.APIResponse(c, http.StatusUnauthorized, false, "Gagal memproses token", nil)
			c.Abort()
			return
		}

		// JWT parse angka sebagai float64 -> convert ke uint64
		var userID uint64
		if val, ok := claims["user_id"].(float64); ok {
			userID = uint64(val)
		}

		phone, _ := claims["phone"].(string)
		role, _ := claims["role"].(string)

		if userID == 0 || role == "" {
			utils.APIResponse(c, http.StatusUnauthorized, false, "Token tidak lengkap", nil)
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Set("phone", phone)
		c.Set("role", role)

		c.Next()
	}
}

// OptionalAuth: kalau ada token valid, identitasnya dicatat di context.
// Ga ada token / token rusak? Request tetap jalan sebagai anonim.
// Dipakai endpoint analytics yang terbuka untuk publik.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		token, err := utils.ValidateToken(parts[1])
		if err != nil || !token.Valid {
			c.Next()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if val, ok := claims["user_id"].(float64); ok && val > 0 {
				c.Set("userID", uint64(val))
			}
			if role, ok := claims["role"].(string); ok {
				c.Set("role", role)
			}
		}
		c.Next()
	}
}

// RequireRoles: satpam per-group. super_admin selalu lolos.
// Dipakai lewat helper di bawah biar daftar rolenya ga kesebar di routes.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles)+1)
	allowed[models.RoleSuperAdmin] = true
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		roleVal, exists := c.Get("role")
		if !exists {
			utils.APIResponse(c, http.StatusForbidden, false, "Akses Ditolak", nil)
			c.Abort()
			return
		}
		if !allowed[roleVal.(string)] {
			utils.APIResponse(c, http.StatusForbidden, false, "Akses Ditolak: Role tidak sesuai", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminOnly: semua varian admin + regional manager
func AdminOnly() gin.HandlerFunc {
	return RequireRoles(models.AdminRoles...)
}

// FieldStaffOnly: staf lapangan (Optima, delivery, runner)
func FieldStaffOnly() gin.HandlerFunc {
	return RequireRoles(models.FieldStaffRoles...)
}

// LabOnly: teknisi lab, QC, manajer lab
func LabOnly() gin.HandlerFunc {
	return RequireRoles(models.LabRoles...)
}

// StaffOnly: semua role selain customer (buat endpoint exception dsb)
func StaffOnly() gin.HandlerFunc {
	all := append([]string{}, models.AdminRoles...)
	all = append(all, models.FieldStaffRoles...)
	all = append(all, models.LabRoles...)
	return RequireRoles(all...)
}
