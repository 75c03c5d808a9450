package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"eyekra-backend/internal/config"
	"eyekra-backend/internal/models"
	"eyekra-backend/pkg/utils"
)

// TrackEvent menampung event analytics dari frontend. Endpoint ini boleh
// dipanggil tanpa login; kalau ada token, user-nya ikut dicatat.
// Gagal simpan cuma masuk log — frontend selalu dapat 202.
func TrackEvent(c *gin.Context) {
	var input models.TrackEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Nama event wajib diisi", err.Error())
		return
	}

	event := models.AnalyticsEvent{
		EventID:   uuid.NewString(),
		Event:     input.Event,
		Data:      input.Data,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Timestamp: time.Now(),
	}

	if userID, exists := c.Get("userID"); exists {
		id := userID.(uint64)
		event.UserID = &id
	}

	if err := config.DB.Create(&event).Error; err != nil {
		log.Printf("Gagal simpan analytics event %s: %v", input.Event, err)
	}

	utils.APIResponse(c, http.StatusAccepted, true, "Event Diterima", gin.H{
		"event_id": event.EventID,
	})
}
