package models

import (
	"encoding/json"
	"time"
)

// AnalyticsEvent cuma tempat nampung event dari frontend.
// Gagal simpan ga boleh bikin request utama ikut gagal.
type AnalyticsEvent struct {
	ID        uint64          `gorm:"primaryKey" json:"id"`
	EventID   string          `gorm:"size:36;uniqueIndex" json:"event_id"` // UUID
	Event     string          `gorm:"size:100;not null;index" json:"event"`
	Data      json.RawMessage `gorm:"type:json" json:"data,omitempty"`
	UserID    *uint64         `gorm:"index" json:"user_id,omitempty"`
	IP        string          `gorm:"size:45" json:"ip,omitempty"`
	UserAgent string          `gorm:"size:255" json:"user_agent,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	CreatedAt time.Time       `json:"created_at"`
}

type TrackEventInput struct {
	Event string          `json:"event" binding:"required"`
	Data  json.RawMessage `json:"data"`
}
