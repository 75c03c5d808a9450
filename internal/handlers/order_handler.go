package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"eyekra-backend/internal/config"
	"eyekra-backend/internal/lifecycle"
	"eyekra-backend/internal/models"
	"eyekra-backend/internal/sla"
	"eyekra-backend/internal/stages"
	"eyekra-backend/pkg/utils"
)

// actorFromContext membangun aktor lifecycle dari token + tabel user.
// Nama diambil dari DB biar timeline kebaca manusia, bukan cuma nomor HP.
func actorFromContext(c *gin.Context) lifecycle.Actor {
	userID, _ := c.Get("userID")
	role, _ := c.Get("role")
	phone, _ := c.Get("phone")

	actor := lifecycle.Actor{
		ID:   userID.(uint64),
		Role: role.(string),
		Name: phone.(string),
	}

	var user models.User
	if err := config.DB.First(&user, actor.ID).Error; err == nil && user.Name != "" {
		actor.Name = user.Name
	}
	return actor
}

// mapLifecycleError menerjemahkan error engine ke status code:
// 400 input, 403 role/kepemilikan, 404 ga ketemu, 409 transisi/terminal/konflik.
func mapLifecycleError(c *gin.Context, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, lifecycle.ErrValidation):
		utils.APIResponse(c, http.StatusBadRequest, false, err.Error(), nil)
	case errors.Is(err, lifecycle.ErrForbidden):
		utils.APIResponse(c, http.StatusForbidden, false, err.Error(), nil)
	case errors.Is(err, lifecycle.ErrNotFound):
		utils.APIResponse(c, http.StatusNotFound, false, "Order tidak ditemukan", nil)
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		utils.APIResponse(c, http.StatusConflict, false, err.Error(), nil)
	case errors.Is(err, lifecycle.ErrInvalidState):
		utils.APIResponse(c, http.StatusConflict, false, "Order sudah selesai/batal, tidak bisa diubah lagi", nil)
	case errors.Is(err, lifecycle.ErrConflict):
		utils.APIResponse(c, http.StatusConflict, false, "Order sedang diupdate aktor lain, coba lagi", nil)
	case errors.Is(err, lifecycle.ErrSlotUnavailable):
		utils.APIResponse(c, http.StatusBadRequest, false, "Slot penuh atau tidak tersedia", nil)
	default:
		utils.APIResponse(c, http.StatusInternalServerError, false, fallbackMsg, err.Error())
	}
}

func timelineAsc(tx *gorm.DB) *gorm.DB {
	return tx.Order("timeline_events.id ASC")
}

// orderWithSLA nempelin hasil evaluasi SLA ke tiap order di response.
// SLA selalu dihitung saat dibaca, ga pernah disimpan di tabel.
type orderWithSLA struct {
	models.Order
	SLA sla.Snapshot `json:"sla"`
}

func attachSLA(orders []models.Order, now time.Time) []orderWithSLA {
	out := make([]orderWithSLA, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderWithSLA{Order: o, SLA: sla.Evaluate(&o, now)})
	}
	return out
}

// CreateOrder membuat order baru langsung (jalur walk-in, tanpa booking).
// Jalur normal lewat ConfirmBooking di booking_handler.
func CreateOrder(c *gin.Context) {
	userID, _ := c.Get("userID")

	var customer models.User
	if err := config.DB.First(&customer, userID).Error; err != nil {
		utils.APIResponse(c, http.StatusUnauthorized, false, "User tidak ditemukan", nil)
		return
	}

	var input models.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input Order Salah", err.Error())
		return
	}

	order, err := lifecycle.CreateOrder(config.DB, lifecycle.CreateOrderParams{
		Customer:    customer,
		Type:        input.Type,
		ServiceType: input.ServiceType,
		City:        input.City,
		Pincode:     input.Pincode,
		Address: models.Address{
			Full:     input.Address.Full,
			Landmark: input.Address.Landmark,
			Lat:      input.Address.Lat,
			Lng:      input.Address.Lng,
		},
		BookingID: input.BookingID,
		Items:     input.Items,
		Payment: models.Payment{
			Amount: input.Payment.Amount,
			Method: input.Payment.Method,
		},
	})
	if err != nil {
		mapLifecycleError(c, err, "Gagal menyimpan order")
		return
	}

	utils.APIResponse(c, http.StatusCreated, true, "Order Berhasil Dibuat!", gin.H{
		"id":            order.ID,
		"order_id":      order.OrderNo,
		"status":        order.Status,
		"current_stage": order.CurrentStage,
	})
}

// GetOrders - list order sesuai kacamata role masing-masing:
// customer liat miliknya, staf lapangan liat yang ditugaskan ke dia,
// staf lab liat antrian bersama (semua order di stage lab), admin liat semua.
// Filter tambahan (status/stage/date) meng-AND scope role, bukan menggantikan.
func GetOrders(c *gin.Context) {
	userID, _ := c.Get("userID")
	roleVal, _ := c.Get("role")
	role := roleVal.(string)

	query := config.DB.Model(&models.Order{}).Preload("Timeline", timelineAsc)

	// 1. Scope role, selalu dipasang duluan
	switch {
	case role == models.RoleCustomer:
		query = query.Where("customer_id = ?", userID)
	case models.IsFieldStaffRole(role):
		query = query.Where("assigned_staff_id = ?", userID)
	case models.IsLabRole(role):
		query = query.Where("current_stage IN ?", stages.LabStages)
	case role == models.RoleSuperAdmin || models.IsAdminRole(role):
		// Admin bebas, boleh mempersempit per staf
		if staffID := c.Query("assigned_staff_id"); staffID != "" {
			query = query.Where("assigned_staff_id = ?", utils.StringToUint64(staffID))
		}
	default:
		utils.APIResponse(c, http.StatusForbidden, false, "Akses Ditolak", nil)
		return
	}

	// 2. Filter tambahan
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if stageList := c.QueryArray("stage"); len(stageList) > 0 {
		query = query.Where("current_stage IN ?", stageList)
	}
	if date := c.Query("date"); date != "" {
		if day, err := time.ParseInLocation("2006-01-02", date, time.Local); err == nil {
			query = query.Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1))
		}
	}

	limit := utils.StringToInt(c.Query("limit"), 50)

	var orders []models.Order
	if err := query.Order("created_at desc").Limit(limit).Find(&orders).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal mengambil order", err.Error())
		return
	}

	now := time.Now()
	if c.Query("sort") == "urgency" {
		sla.SortByUrgency(orders, now)
	}

	utils.APIResponse(c, http.StatusOK, true, "Daftar Order", attachSLA(orders, now))
}

// GetOrderDetail - bisa pakai ID internal atau kode EKR-XXXXX
func GetOrderDetail(c *gin.Context) {
	userID, _ := c.Get("userID")
	roleVal, _ := c.Get("role")
	role := roleVal.(string)

	order, err := lifecycle.FindOrder(config.DB, c.Param("id"))
	if err != nil {
		mapLifecycleError(c, err, "Gagal mengambil order")
		return
	}

	// Customer cuma boleh intip order miliknya sendiri
	if role == models.RoleCustomer && order.CustomerID != userID.(uint64) {
		utils.APIResponse(c, http.StatusForbidden, false, "Order ini bukan milik Anda", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Detail Order",
		orderWithSLA{Order: *order, SLA: sla.Evaluate(order, time.Now())})
}

// UpdateOrderStatus memajukan order ke stage berikutnya.
// Semua aturan legalitas (urutan stage, role, QC) ada di lifecycle engine.
func UpdateOrderStatus(c *gin.Context) {
	var input models.AdvanceStageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Stage wajib diisi", err.Error())
		return
	}

	actor := actorFromContext(c)
	order, err := lifecycle.AdvanceStage(config.DB, c.Param("id"), input.Stage, actor, lifecycle.AdvancePayload{
		Geo:           input.Geo,
		PhotoProof:    input.PhotoProof,
		Remarks:       input.Remarks,
		ExceptionCode: input.ExceptionCode,
		QCResult:      input.QCResult,
		EyeTestData:   input.EyeTestData,
		TryOnData:     input.TryOnData,
	})
	if err != nil {
		mapLifecycleError(c, err, "Gagal update status order")
		return
	}

	// Kabari customer, fire-and-forget
	go notifyStageChange(order)

	utils.APIResponse(c, http.StatusOK, true, "Stage Berhasil Diupdate!", gin.H{
		"id":            order.ID,
		"order_id":      order.OrderNo,
		"current_stage": order.CurrentStage,
		"status":        order.Status,
		"timeline":      order.Timeline,
	})
}

// CancelOrder - customer batalin miliknya (selama masih fase lapangan),
// admin bebas selama belum terminal.
func CancelOrder(c *gin.Context) {
	var input models.CancelOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Alasan pembatalan wajib diisi", err.Error())
		return
	}

	actor := actorFromContext(c)

	// Cek kepemilikan dulu untuk customer
	if actor.Role == models.RoleCustomer {
		order, err := lifecycle.FindOrder(config.DB, c.Param("id"))
		if err != nil {
			mapLifecycleError(c, err, "Gagal mengambil order")
			return
		}
		if order.CustomerID != actor.ID {
			utils.APIResponse(c, http.StatusForbidden, false, "Order ini bukan milik Anda", nil)
			return
		}
	}

	order, err := lifecycle.CancelOrder(config.DB, c.Param("id"), input.Reason, actor)
	if err != nil {
		mapLifecycleError(c, err, "Gagal membatalkan order")
		return
	}

	go notifyStageChange(order)

	utils.APIResponse(c, http.StatusOK, true, "Order Dibatalkan", gin.H{
		"order_id":      order.OrderNo,
		"status":        order.Status,
		"current_stage": order.CurrentStage,
	})
}

// RecordException mencatat kendala lapangan/lab tanpa mindahin stage
func RecordException(c *gin.Context) {
	var input models.RecordExceptionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "exception_code wajib diisi", err.Error())
		return
	}

	actor := actorFromContext(c)
	order, err := lifecycle.RecordException(config.DB, c.Param("id"), input.ExceptionCode, input.Remarks, actor)
	if err != nil {
		mapLifecycleError(c, err, "Gagal mencatat exception")
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Exception Dicatat", gin.H{
		"order_id":       order.OrderNo,
		"exception_code": order.ExceptionCode,
		"current_stage":  order.CurrentStage,
	})
}

// notifyStageChange push FCM ke customer. Gagal cuma masuk log,
// mutasi order-nya sudah committed dan ga boleh ikut batal.
func notifyStageChange(order *models.Order) {
	var customer models.User
	if err := config.DB.First(&customer, order.CustomerID).Error; err != nil || customer.FCMToken == "" {
		return
	}

	title := fmt.Sprintf("Update Order %s", order.OrderNo)
	body := fmt.Sprintf("Order kamu sekarang di tahap: %s", order.CurrentStage)
	if err := utils.SendNotification(customer.FCMToken, title, body, map[string]string{
		"order_id": order.OrderNo,
		"stage":    order.CurrentStage,
	}); err != nil {
		log.Printf("Gagal kirim notifikasi order %s: %v", order.OrderNo, err)
	}
}
