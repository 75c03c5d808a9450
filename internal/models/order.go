package models

import (
	"encoding/json"
	"time"
)

// Tipe order menentukan target SLA: FAST = 4 jam, STANDARD = 8 jam.
const (
	OrderTypeFast     = "FAST"
	OrderTypeStandard = "STANDARD"
)

const (
	ServiceEyeTest = "eye_test"
	ServiceTryOn   = "try_on"
	ServiceCombo   = "combo"
)

// Status turunan order (beda dengan stage!). Stage = posisi di alur kerja,
// status = rangkuman kasarnya buat dashboard.
const (
	OrderStatusPending    = "pending"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

// Address nempel di order & booking (embedded), bukan tabel sendiri.
type Address struct {
	Full     string  `gorm:"type:text" json:"full"`
	Landmark string  `gorm:"size:255" json:"landmark,omitempty"`
	Lat      float64 `gorm:"type:decimal(11,8)" json:"lat,omitempty"`
	Lng      float64 `gorm:"type:decimal(11,8)" json:"lng,omitempty"`
}

// Payment hanya dicatat di order, logika gateway-nya di luar scope sistem ini.
type Payment struct {
	Status        string  `gorm:"size:20;default:pending" json:"status"`
	Method        string  `gorm:"size:20" json:"method,omitempty"`
	Amount        float64 `json:"amount"`
	Paid          float64 `json:"paid"`
	TransactionID string  `gorm:"size:100" json:"transaction_id,omitempty"`
}

type Order struct {
	ID         uint64  `gorm:"primaryKey" json:"id"`
	OrderNo    string  `gorm:"uniqueIndex;size:20;not null" json:"order_id"` // Format: EKR-10241
	CustomerID uint64  `gorm:"not null;index" json:"customer_id"`
	BookingID  *uint64 `json:"booking_id,omitempty"`

	Type        string `gorm:"size:10;not null" json:"type"`
	ServiceType string `gorm:"size:20;not null" json:"service_type"`
	City        string `gorm:"size:50;index" json:"city"`
	Pincode     string `gorm:"size:10" json:"pincode"`

	Address Address `gorm:"embedded;embeddedPrefix:address_" json:"address"`

	// SLA tracking. StartedAt diset sekali saat create dan TIDAK PERNAH diubah.
	StartedAt     time.Time `gorm:"not null" json:"started_at"`
	TargetMinutes int       `gorm:"not null" json:"target_minutes"`

	CurrentStage string `gorm:"size:30;not null;index" json:"current_stage"`
	Status       string `gorm:"size:20;not null;index" json:"status"`

	// Penugasan. Reassign boleh nimpa, jejaknya lewat timeline remarks.
	AssignedStaffID   *uint64 `gorm:"index" json:"assigned_staff_id,omitempty"`
	AssignedStaffName string  `gorm:"size:100" json:"assigned_staff_name,omitempty"`
	AssignedLabID     *uint64 `json:"assigned_lab_id,omitempty"`
	AssignedLabName   string  `gorm:"size:100" json:"assigned_lab_name,omitempty"`

	// Hasil modul lapangan, disimpan mentah (JSON) kayak VitalsData dulu.
	// Kalau sudah terisi artinya modulnya pernah selesai, bisa di-resume.
	EyeTestData json.RawMessage `gorm:"type:json" json:"eye_test_data,omitempty"`
	TryOnData   json.RawMessage `gorm:"type:json" json:"try_on_data,omitempty"`

	// Item belanja ikut disimpan mentah, engine ga peduli isinya.
	Items   json.RawMessage `gorm:"type:json" json:"items,omitempty"`
	Payment Payment         `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`

	ExceptionCode string `gorm:"size:30" json:"exception_code,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relasi
	Timeline []TimelineEvent `gorm:"foreignKey:OrderRef" json:"timeline,omitempty"`
	Customer *User           `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// TimelineEvent = catatan append-only tiap transisi stage.
// Tidak pernah di-update atau dihapus, cuma ditambah.
type TimelineEvent struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	OrderRef      uint64    `gorm:"column:order_ref;not null;index" json:"-"`
	Stage         string    `gorm:"size:30;not null" json:"stage"`
	Timestamp     time.Time `gorm:"not null" json:"timestamp"`
	ActorID       *uint64   `json:"actor_id,omitempty"`
	ActorName     string    `gorm:"size:100" json:"actor_name,omitempty"`
	Lat           *float64  `gorm:"type:decimal(11,8)" json:"lat,omitempty"`
	Lng           *float64  `gorm:"type:decimal(11,8)" json:"lng,omitempty"`
	PhotoProof    string    `gorm:"size:255" json:"photo_proof,omitempty"`
	Remarks       string    `gorm:"type:text" json:"remarks,omitempty"`
	ExceptionCode string    `gorm:"size:30" json:"exception_code,omitempty"`
	QCResult      string    `gorm:"size:10" json:"qc_result,omitempty"`
}

// Exception codes (lapangan + lab)
const (
	ExceptionCustomerNotHome      = "customer_not_home"
	ExceptionPhoneOff             = "phone_off"
	ExceptionRxMismatch           = "rx_mismatch"
	ExceptionInventoryUnavailable = "inventory_unavailable"
	ExceptionLabOverload          = "lab_overload"
	ExceptionDeliveryDelayed      = "delivery_delayed"
	ExceptionQCFail               = "qc_fail"
	ExceptionPaymentIssue         = "payment_issue"
)

// ==================== Input structs ====================

type GeoInput struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type AddressInput struct {
	Full     string  `json:"full" binding:"required"`
	Landmark string  `json:"landmark"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

type PaymentInput struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
}

type CreateOrderInput struct {
	Type        string          `json:"type" binding:"omitempty,oneof=FAST STANDARD"`
	ServiceType string          `json:"service_type" binding:"required,oneof=eye_test try_on combo"`
	City        string          `json:"city" binding:"required"`
	Pincode     string          `json:"pincode"`
	Address     AddressInput    `json:"address" binding:"required"`
	BookingID   *uint64         `json:"booking_id"`
	Items       json.RawMessage `json:"items"`
	Payment     PaymentInput    `json:"payment"`
}

type AdvanceStageInput struct {
	Stage         string          `json:"stage" binding:"required"`
	Geo           *GeoInput       `json:"geo"`
	PhotoProof    string          `json:"photo_proof"`
	Remarks       string          `json:"remarks"`
	ExceptionCode string          `json:"exception_code"`
	QCResult      string          `json:"qc_result"`
	EyeTestData   json.RawMessage `json:"eye_test_data"`
	TryOnData     json.RawMessage `json:"try_on_data"`
}

type CancelOrderInput struct {
	Reason string `json:"reason" binding:"required"`
}

type RecordExceptionInput struct {
	ExceptionCode string `json:"exception_code" binding:"required"`
	Remarks       string `json:"remarks"`
}

type AssignStaffInput struct {
	StaffID uint64 `json:"staff_id" binding:"required"`
	Remarks string `json:"remarks"`
}

type SubmitModuleDataInput struct {
	Data json.RawMessage `json:"data" binding:"required"`
}
