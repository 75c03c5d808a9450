package models

import (
	"encoding/json"
	"time"
)

// Product katalog (frame/lensa). Cuma dibaca-tulis apa adanya,
// logika inventory/harga di luar scope.
type Product struct {
	ID             uint64          `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"size:150;not null" json:"name"`
	Slug           string          `gorm:"uniqueIndex;size:150;not null" json:"slug"`
	Description    string          `gorm:"type:text" json:"description,omitempty"`
	Category       string          `gorm:"size:20;not null;index" json:"category"` // frame, sunglasses, lens, package
	Brand          string          `gorm:"size:100" json:"brand,omitempty"`
	SKU            string          `gorm:"size:50" json:"sku"`
	Price          float64         `gorm:"not null" json:"price"`
	CompareAtPrice float64         `json:"compare_at_price,omitempty"`
	Images         json.RawMessage `gorm:"type:json" json:"images,omitempty"`
	Variants       json.RawMessage `gorm:"type:json" json:"variants,omitempty"`
	Attributes     json.RawMessage `gorm:"type:json" json:"attributes,omitempty"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type CreateProductInput struct {
	Name           string          `json:"name" binding:"required"`
	Slug           string          `json:"slug" binding:"required"`
	Description    string          `json:"description"`
	Category       string          `json:"category" binding:"required,oneof=frame sunglasses lens package"`
	Brand          string          `json:"brand"`
	SKU            string          `json:"sku"`
	Price          float64         `json:"price" binding:"required"`
	CompareAtPrice float64         `json:"compare_at_price"`
	Images         json.RawMessage `json:"images"`
	Variants       json.RawMessage `json:"variants"`
	Attributes     json.RawMessage `json:"attributes"`
}
