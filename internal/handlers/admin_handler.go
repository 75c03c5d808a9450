package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eyekra-backend/internal/config"
	"eyekra-backend/internal/lifecycle"
	"eyekra-backend/internal/models"
	"eyekra-backend/internal/sla"
	"eyekra-backend/internal/stages"
	"eyekra-backend/pkg/utils"
)

// CreateSlot - admin buka jatah kunjungan baru untuk satu kota/jam
func CreateSlot(c *gin.Context) {
	var input models.CreateSlotInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input Slot Salah", err.Error())
		return
	}

	date, err := time.ParseInLocation("2006-01-02", input.Date, time.Local)
	if err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Format tanggal salah, pakai YYYY-MM-DD", nil)
		return
	}

	slot := models.Slot{
		City:        input.City,
		Pincode:     input.Pincode,
		Date:        date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Capacity:    input.Capacity,
		IsAvailable: true,
	}
	if err := config.DB.Create(&slot).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal membuat slot", err.Error())
		return
	}

	utils.APIResponse(c, http.StatusCreated, true, "Slot Berhasil Dibuat!", slot)
}

// ListSlots - versi admin: termasuk slot penuh & nonaktif
func ListSlots(c *gin.Context) {
	query := config.DB.Model(&models.Slot{})

	if city := c.Query("city"); city != "" {
		query = query.Where("city = ?", city)
	}
	if date := c.Query("date"); date != "" {
		if day, err := time.ParseInLocation("2006-01-02", date, time.Local); err == nil {
			query = query.Where("date = ?", day)
		}
	}

	var slots []models.Slot
	if err := query.Order("date ASC, start_time ASC").Find(&slots).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal mengambil slot", err.Error())
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Daftar Slot", slots)
}

// ToggleSlot menutup/membuka slot tanpa menghapus. Booking yang sudah
// kejadian ga tersentuh, cuma booking baru yang keblokir.
func ToggleSlot(c *gin.Context) {
	var slot models.Slot
	if err := config.DB.First(&slot, utils.StringToUint64(c.Param("id"))).Error; err != nil {
		utils.APIResponse(c, http.StatusNotFound, false, "Slot tidak ditemukan", nil)
		return
	}

	if err := config.DB.Model(&slot).Update("is_available", !slot.IsAvailable).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal mengubah slot", err.Error())
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Slot Diupdate", gin.H{
		"id":           slot.ID,
		"is_available": !slot.IsAvailable,
	})
}

// AssignStaff menugaskan staf lapangan ke order. Penugasan pertama sekalian
// mendorong order dari confirmed ke optima_assigned (sebagai system actor).
// Reassignment cuma nimpa kolom assigned + ninggalin jejak di timeline.
func AssignStaff(c *gin.Context) {
	var input models.AssignStaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "staff_id wajib diisi", err.Error())
		return
	}

	order, err := lifecycle.FindOrder(config.DB, c.Param("id"))
	if err != nil {
		mapLifecycleError(c, err, "Gagal mengambil order")
		return
	}

	var staff models.User
	if err := config.DB.First(&staff, input.StaffID).Error; err != nil {
		utils.APIResponse(c, http.StatusNotFound, false, "Staf tidak ditemukan", nil)
		return
	}
	if !models.IsFieldStaffRole(staff.Role) {
		utils.APIResponse(c, http.StatusBadRequest, false, "User tersebut bukan staf lapangan", nil)
		return
	}

	if err := config.DB.Model(&models.Order{}).Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"assigned_staff_id":   staff.ID,
			"assigned_staff_name": staff.Name,
		}).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal menugaskan staf", err.Error())
		return
	}

	remarks := input.Remarks
	if remarks == "" {
		remarks = fmt.Sprintf("Ditugaskan ke %s", staff.Name)
	}

	if order.CurrentStage == stages.StageConfirmed {
		// Penugasan pertama: sekalian majuin stage
		updated, err := lifecycle.AdvanceStage(config.DB, c.Param("id"), stages.StageOptimaAssigned,
			lifecycle.SystemActor, lifecycle.AdvancePayload{Remarks: remarks})
		if err != nil {
			mapLifecycleError(c, err, "Staf tercatat tapi gagal update stage")
			return
		}
		order = updated
	} else {
		// Reassignment: stage ga gerak, tapi jejaknya harus ada
		if err := lifecycle.RecordNote(config.DB, c.Param("id"), remarks, lifecycle.SystemActor); err != nil {
			utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal mencatat reassignment", err.Error())
			return
		}
	}

	utils.APIResponse(c, http.StatusOK, true, "Staf Berhasil Ditugaskan!", gin.H{
		"order_id":            order.OrderNo,
		"assigned_staff_id":   staff.ID,
		"assigned_staff_name": staff.Name,
		"current_stage":       order.CurrentStage,
	})
}

// CreateStaffUser - admin HR mendaftarkan akun staf/admin baru
func CreateStaffUser(c *gin.Context) {
	var input models.CreateStaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input Staf Salah", err.Error())
		return
	}

	if !models.IsKnownRole(input.Role) || input.Role == models.RoleCustomer {
		utils.APIResponse(c, http.StatusBadRequest, false, "Role tidak dikenal", nil)
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal memproses password", nil)
		return
	}

	user := models.User{
		Name:         input.Name,
		Phone:        input.Phone,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		City:         input.City,
		IsVerified:   true,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		utils.APIResponse(c, http.StatusConflict, false, "Nomor HP atau email sudah terdaftar", nil)
		return
	}

	utils.APIResponse(c, http.StatusCreated, true, "Akun Staf Dibuat!", gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"role":  user.Role,
		"email": user.Email,
	})
}

// Dashboard - ringkasan operasional: berapa order aktif, sebarannya per
// kelas SLA, dan yang lagi kena exception. Dihitung on the fly dari order
// aktif, ga ada tabel agregat.
func Dashboard(c *gin.Context) {
	var active []models.Order
	if err := config.DB.
		Where("status IN ?", []string{models.OrderStatusPending, models.OrderStatusInProgress}).
		Find(&active).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal mengambil data dashboard", err.Error())
		return
	}

	now := time.Now()
	counts := map[string]int{
		sla.StatusOnTrack:  0,
		sla.StatusAtRisk:   0,
		sla.StatusBreached: 0,
	}
	exceptions := 0
	inLab := 0
	for i := range active {
		counts[sla.ClassifyOrder(&active[i], now)]++
		if active[i].ExceptionCode != "" {
			exceptions++
		}
		if stages.IsLabStage(active[i].CurrentStage) {
			inLab++
		}
	}

	var completedToday int64
	today := startOfDay(now)
	config.DB.Model(&models.Order{}).
		Where("status = ? AND updated_at >= ?", models.OrderStatusCompleted, today).
		Count(&completedToday)

	utils.APIResponse(c, http.StatusOK, true, "Dashboard", gin.H{
		"active_orders":   len(active),
		"sla":             counts,
		"with_exception":  exceptions,
		"in_lab":          inLab,
		"completed_today": completedToday,
	})
}
