package models

import (
	"time"

	"gorm.io/gorm"
)

// User merepresentasikan tabel 'users' di database.
// Role dipakai string (bukan role_id angka) karena daftar role-nya panjang
// dan dipakai langsung buat cek izin stage di package stages.
type User struct {
	ID           uint64         `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:100" json:"name"`
	Phone        string         `gorm:"uniqueIndex;size:20;not null" json:"phone"`
	Email        string         `gorm:"size:100" json:"email"`
	PasswordHash string         `json:"-"` // json:"-" biar hash TIDAK pernah bocor ke frontend
	Role         string         `gorm:"size:30;not null;default:customer" json:"role"`
	City         string         `gorm:"size:50" json:"city"`
	FCMToken     string         `gorm:"size:255" json:"-"`
	IsVerified   bool           `gorm:"default:false" json:"is_verified"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Daftar role. Partisi: customer / staf lapangan / staf lab / admin / super_admin.
const (
	RoleSuperAdmin        = "super_admin"
	RoleAdminOps          = "admin_ops"
	RoleAdminFinance      = "admin_finance"
	RoleAdminCatalog      = "admin_catalog"
	RoleAdminHR           = "admin_hr"
	RoleRegionalManager   = "regional_manager"
	RoleEyeTestExecutive  = "eye_test_executive"
	RoleTryOnExecutive    = "try_on_executive"
	RoleDeliveryExecutive = "delivery_executive"
	RoleRunner            = "runner"
	RoleLabTechnician     = "lab_technician"
	RoleQCSpecialist      = "qc_specialist"
	RoleLabManager        = "lab_manager"
	RoleCustomer          = "customer"
)

// ActorSystem dipakai untuk transisi otomatis (auto-assignment), bukan role user beneran.
const ActorSystem = "system"

var FieldStaffRoles = []string{
	RoleEyeTestExecutive,
	RoleTryOnExecutive,
	RoleDeliveryExecutive,
	RoleRunner,
}

var LabRoles = []string{
	RoleLabTechnician,
	RoleQCSpecialist,
	RoleLabManager,
}

var AdminRoles = []string{
	RoleSuperAdmin,
	RoleAdminOps,
	RoleAdminFinance,
	RoleAdminCatalog,
	RoleAdminHR,
	RoleRegionalManager,
}

func roleIn(role string, set []string) bool {
	for _, r := range set {
		if r == role {
			return true
		}
	}
	return false
}

func IsFieldStaffRole(role string) bool { return roleIn(role, FieldStaffRoles) }
func IsLabRole(role string) bool        { return roleIn(role, LabRoles) }
func IsAdminRole(role string) bool      { return roleIn(role, AdminRoles) }

// IsKnownRole dipakai saat admin bikin akun staf, biar ga ada role ngarang.
func IsKnownRole(role string) bool {
	return role == RoleCustomer || IsFieldStaffRole(role) || IsLabRole(role) || IsAdminRole(role)
}

// Struct untuk menangkap input login staf/admin (email + password)
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FCMToken string `json:"fcm_token"`
}

// Input OTP login untuk customer (masuk pakai nomor HP)
type SendOTPInput struct {
	Phone string `json:"phone" binding:"required"`
}

type VerifyOTPInput struct {
	Phone    string `json:"phone" binding:"required"`
	Code     string `json:"code" binding:"required,len=6"`
	Name     string `json:"name"`
	FCMToken string `json:"fcm_token"`
}

// Input admin saat membuat akun staf lapangan/lab
type CreateStaffInput struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
	City     string `json:"city"`
}
