package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"eyekra-backend/internal/config"
	"eyekra-backend/internal/lifecycle"
	"eyekra-backend/internal/models"
	"eyekra-backend/pkg/utils"
)

// startOfDay = jam 00:00 hari itu di zona lokal. Jangan pakai Truncate:
// itu motong di batas hari UTC, di zona lain batasnya geser.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// GetSlots - slot tersedia per kota (wajib), opsional per tanggal.
// Slot yang penuh atau di-nonaktifkan admin ga ikut muncul.
func GetSlots(c *gin.Context) {
	city := c.Query("city")
	if city == "" {
		utils.APIResponse(c, http.StatusBadRequest, false, "Parameter city wajib diisi", nil)
		return
	}

	query := config.DB.Model(&models.Slot{}).
		Where("city = ? AND is_available = ? AND booked < capacity", city, true)

	if date := c.Query("date"); date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			utils.APIResponse(c, http.StatusBadRequest, false, "Format tanggal salah, pakai YYYY-MM-DD", nil)
			return
		}
		query = query.Where("date = ?", day)
	} else {
		// Default: hari ini ke depan, yang lewat ga berguna
		query = query.Where("date >= ?", startOfDay(time.Now()))
	}

	var slots []models.Slot
	if err := query.Order("date ASC, start_time ASC").Limit(100).Find(&slots).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal mengambil slot", err.Error())
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Slot Tersedia", slots)
}

// CreateBooking merebut satu kursi slot lalu membuat booking, dalam satu
// transaksi. Increment Booked pakai conditional update: dua customer rebutan
// kursi terakhir, cuma satu yang dapat — yang kalah ditolak, bukan overbook.
func CreateBooking(c *gin.Context) {
	userID, _ := c.Get("userID")

	var input models.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input Booking Salah", err.Error())
		return
	}

	var booking models.Booking
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Slot{}).
			Where("id = ? AND is_available = ? AND booked < capacity", input.SlotID, true).
			Update("booked", gorm.Expr("booked + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return lifecycle.ErrSlotUnavailable
		}

		var slot models.Slot
		if err := tx.First(&slot, input.SlotID).Error; err != nil {
			return err
		}

		booking = models.Booking{
			CustomerID:  userID.(uint64),
			ServiceType: input.ServiceType,
			City:        input.City,
			Pincode:     input.Pincode,
			Address: models.Address{
				Full:     input.Address.Full,
				Landmark: input.Address.Landmark,
				Lat:      input.Address.Lat,
				Lng:      input.Address.Lng,
			},
			SlotID:    slot.ID,
			SlotDate:  slot.Date,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			Status:    models.BookingStatusPending,
			OTP:       utils.GenerateOTP(),
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		mapLifecycleError(c, err, "Gagal membuat booking")
		return
	}

	utils.APIResponse(c, http.StatusCreated, true, "Booking Berhasil Dibuat!", booking)
}

// GetMyBookings - daftar booking milik customer yang login
func GetMyBookings(c *gin.Context) {
	userID, _ := c.Get("userID")

	var bookings []models.Booking
	if err := config.DB.
		Where("customer_id = ?", userID).
		Order("created_at desc").
		Find(&bookings).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal mengambil booking", err.Error())
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Daftar Booking", bookings)
}

// ConfirmBooking mengesahkan booking dan melahirkan Order-nya.
// Dua jalan masuk: customer pemilik dengan OTP yang benar, atau admin ops
// langsung tanpa OTP. Booking yang bukan pending ditolak 409 — ga boleh ada
// dua order lahir dari satu booking.
func ConfirmBooking(c *gin.Context) {
	userID, _ := c.Get("userID")
	roleVal, _ := c.Get("role")
	role := roleVal.(string)

	var input models.ConfirmBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input tidak valid", err.Error())
		return
	}

	var booking models.Booking
	if err := config.DB.First(&booking, utils.StringToUint64(c.Param("id"))).Error; err != nil {
		utils.APIResponse(c, http.StatusNotFound, false, "Booking tidak ditemukan", nil)
		return
	}

	isAdmin := role == models.RoleSuperAdmin || models.IsAdminRole(role)
	if !isAdmin {
		if booking.CustomerID != userID.(uint64) {
			utils.APIResponse(c, http.StatusForbidden, false, "Booking ini bukan milik Anda", nil)
			return
		}
		if input.OTP == "" || input.OTP != booking.OTP {
			utils.APIResponse(c, http.StatusUnauthorized, false, "Kode OTP salah", nil)
			return
		}
	}

	// Konfirmasi + lahirnya order = satu transaksi. Status diubah pakai
	// conditional update (sama kayak rebutan kursi slot di atas): dua confirm
	// barengan, cuma satu yang kena pending -> confirmed, sisanya 409.
	// Order gagal dibuat? Konfirmasinya ikut rollback, ga ada booking
	// confirmed yang yatim.
	var order *models.Order
	alreadyProcessed := false
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND status = ?", booking.ID, models.BookingStatusPending).
			Updates(map[string]interface{}{
				"status":   models.BookingStatusConfirmed,
				"verified": true,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			alreadyProcessed = true
			return lifecycle.ErrConflict
		}

		var customer models.User
		if err := tx.First(&customer, booking.CustomerID).Error; err != nil {
			return err
		}

		bookingID := booking.ID
		created, err := lifecycle.CreateOrder(tx, lifecycle.CreateOrderParams{
			Customer:    customer,
			Type:        input.Type,
			ServiceType: booking.ServiceType,
			City:        booking.City,
			Pincode:     booking.Pincode,
			Address:     booking.Address,
			BookingID:   &bookingID,
		})
		if err != nil {
			return err
		}
		order = created
		return nil
	})
	if alreadyProcessed {
		utils.APIResponse(c, http.StatusConflict, false, "Booking sudah diproses sebelumnya", nil)
		return
	}
	if err != nil {
		mapLifecycleError(c, err, "Gagal konfirmasi booking")
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Booking Dikonfirmasi, Order Dibuat!", gin.H{
		"booking_id":    booking.ID,
		"order_id":      order.OrderNo,
		"current_stage": order.CurrentStage,
		"status":        order.Status,
	})
}

// CancelBooking melepas kursi slot yang tadinya direbut.
// Decrement juga conditional (booked > 0) biar ga pernah minus.
func CancelBooking(c *gin.Context) {
	userID, _ := c.Get("userID")
	roleVal, _ := c.Get("role")
	role := roleVal.(string)

	var booking models.Booking
	if err := config.DB.First(&booking, utils.StringToUint64(c.Param("id"))).Error; err != nil {
		utils.APIResponse(c, http.StatusNotFound, false, "Booking tidak ditemukan", nil)
		return
	}

	isAdmin := role == models.RoleSuperAdmin || models.IsAdminRole(role)
	if !isAdmin && booking.CustomerID != userID.(uint64) {
		utils.APIResponse(c, http.StatusForbidden, false, "Booking ini bukan milik Anda", nil)
		return
	}

	if booking.Status == models.BookingStatusCancelled || booking.Status == models.BookingStatusCompleted {
		utils.APIResponse(c, http.StatusConflict, false, "Booking sudah tidak bisa dibatalkan", nil)
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&booking).Update("status", models.BookingStatusCancelled).Error; err != nil {
			return err
		}
		return tx.Model(&models.Slot{}).
			Where("id = ? AND booked > 0", booking.SlotID).
			Update("booked", gorm.Expr("booked - 1")).Error
	})
	if err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal membatalkan booking", err.Error())
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Booking Dibatalkan", nil)
}
