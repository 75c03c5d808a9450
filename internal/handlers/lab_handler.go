package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eyekra-backend/internal/config"
	"eyekra-backend/internal/models"
	"eyekra-backend/internal/sla"
	"eyekra-backend/internal/stages"
	"eyekra-backend/pkg/utils"
)

// GetLabQueue - antrian bersama lab: semua order yang lagi di fase lab,
// diurutkan dari yang SLA-nya paling kritis. Ga ada penugasan per teknisi,
// siapa yang senggang ambil dari atas.
func GetLabQueue(c *gin.Context) {
	query := config.DB.Model(&models.Order{}).
		Preload("Timeline", timelineAsc).
		Where("current_stage IN ? AND status = ?", stages.LabStages, models.OrderStatusInProgress)

	// Opsional: filter satu stage (misal cuma antrian fitting)
	if stage := c.Query("stage"); stage != "" {
		if !stages.IsLabStage(stage) {
			utils.APIResponse(c, http.StatusBadRequest, false, "Stage bukan bagian fase lab", nil)
			return
		}
		query = query.Where("current_stage = ?", stage)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal mengambil antrian lab", err.Error())
		return
	}

	now := time.Now()
	sla.SortByUrgency(orders, now)

	utils.APIResponse(c, http.StatusOK, true, "Antrian Lab", attachSLA(orders, now))
}
