package models

import "time"

// Slot = jatah kunjungan per kota/jam. Kapasitas terbatas, jadi kolom Booked
// WAJIB di-increment pakai conditional update (booked < capacity), jangan
// read-modify-write. Lihat booking_handler.
type Slot struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	City        string    `gorm:"size:50;not null;index" json:"city"`
	Pincode     string    `gorm:"size:10" json:"pincode,omitempty"` // Kosong = slot satu kota
	Date        time.Time `gorm:"not null;index" json:"date"`
	StartTime   string    `gorm:"size:5;not null" json:"start_time"` // Format HH:mm
	EndTime     string    `gorm:"size:5;not null" json:"end_time"`
	Capacity    int       `gorm:"not null;default:1" json:"capacity"`
	Booked      int       `gorm:"not null;default:0" json:"booked"`
	IsAvailable bool      `gorm:"not null;default:true" json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// Booking = permintaan kunjungan. Setelah confirmed, booking melahirkan Order.
type Booking struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	CustomerID  uint64 `gorm:"not null;index" json:"customer_id"`
	ServiceType string `gorm:"size:20;not null" json:"service_type"`
	City        string `gorm:"size:50;not null" json:"city"`
	Pincode     string `gorm:"size:10" json:"pincode"`

	Address Address `gorm:"embedded;embeddedPrefix:address_" json:"address"`

	// Detail slot dicopy ke booking biar ga perlu join pas render jadwal
	SlotID    uint64    `gorm:"not null;index" json:"slot_id"`
	SlotDate  time.Time `gorm:"not null" json:"slot_date"`
	StartTime string    `gorm:"size:5" json:"start_time"`
	EndTime   string    `gorm:"size:5" json:"end_time"`

	AssignedStaffID *uint64 `gorm:"index" json:"assigned_staff_id,omitempty"`

	Status   string `gorm:"size:20;not null;default:pending" json:"status"`
	OTP      string `gorm:"size:6" json:"otp,omitempty"` // Diverifikasi staf saat tiba di rumah
	Verified bool   `gorm:"default:false" json:"verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateBookingInput struct {
	SlotID      uint64       `json:"slot_id" binding:"required"`
	ServiceType string       `json:"service_type" binding:"required,oneof=eye_test try_on combo"`
	City        string       `json:"city" binding:"required"`
	Pincode     string       `json:"pincode"`
	Address     AddressInput `json:"address" binding:"required"`
}

type ConfirmBookingInput struct {
	OTP  string `json:"otp"`
	Type string `json:"type" binding:"omitempty,oneof=FAST STANDARD"`
}

type CreateSlotInput struct {
	City      string `json:"city" binding:"required"`
	Pincode   string `json:"pincode"`
	Date      string `json:"date" binding:"required"` // Format YYYY-MM-DD
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Capacity  int    `json:"capacity" binding:"required,min=1"`
}
