package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eyekra-backend/internal/config"
	"eyekra-backend/internal/lifecycle"
	"eyekra-backend/internal/models"
	"eyekra-backend/internal/sla"
	"eyekra-backend/pkg/utils"
)

// GetMyJobs - daftar kerjaan aktif staf lapangan yang login,
// diurutkan dari yang paling kebakaran SLA-nya.
func GetMyJobs(c *gin.Context) {
	userID, _ := c.Get("userID")

	var orders []models.Order
	err := config.DB.Model(&models.Order{}).
		Preload("Timeline", timelineAsc).
		Where("assigned_staff_id = ? AND status IN ?", userID,
			[]string{models.OrderStatusPending, models.OrderStatusInProgress}).
		Find(&orders).Error
	if err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal mengambil daftar tugas", err.Error())
		return
	}

	now := time.Now()
	sla.SortByUrgency(orders, now)

	utils.APIResponse(c, http.StatusOK, true, "Tugas Saya", attachSLA(orders, now))
}

// submitModuleData menyimpan hasil modul lapangan (eye test / try-on) apa
// adanya sebagai JSON. Isinya urusan aplikasi staf, server cuma nitip.
// Hanya staf yang ditugaskan ke order itu yang boleh submit.
func submitModuleData(c *gin.Context, column string, successMsg string) {
	userID, _ := c.Get("userID")
	roleVal, _ := c.Get("role")
	role := roleVal.(string)

	var input models.SubmitModuleDataInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Data wajib diisi", err.Error())
		return
	}

	order, err := lifecycle.FindOrder(config.DB, c.Param("id"))
	if err != nil {
		mapLifecycleError(c, err, "Gagal mengambil order")
		return
	}

	if role != models.RoleSuperAdmin {
		if order.AssignedStaffID == nil || *order.AssignedStaffID != userID.(uint64) {
			utils.APIResponse(c, http.StatusForbidden, false, "Order ini tidak ditugaskan ke Anda", nil)
			return
		}
	}

	if err := config.DB.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update(column, input.Data).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal menyimpan data", err.Error())
		return
	}

	utils.APIResponse(c, http.StatusOK, true, successMsg, gin.H{"order_id": order.OrderNo})
}

// SubmitEyeTest menyimpan hasil pemeriksaan mata (refraksi dsb)
func SubmitEyeTest(c *gin.Context) {
	submitModuleData(c, "eye_test_data", "Hasil Eye Test Tersimpan")
}

// SubmitTryOn menyimpan hasil sesi try-on (frame pilihan dsb)
func SubmitTryOn(c *gin.Context) {
	submitModuleData(c, "try_on_data", "Hasil Try-On Tersimpan")
}
