package lifecycle

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"eyekra-backend/internal/models"
	"eyekra-backend/internal/stages"
	"eyekra-backend/pkg/utils"
)

// Target SLA per tipe order (menit).
const (
	TargetMinutesFast     = 240 // FAST = 4 jam
	TargetMinutesStandard = 480 // STANDARD = 8 jam
)

// Berapa kali kita coba ulang kalau ada dua aktor update order barengan.
const maxAdvanceRetries = 3

// Berapa kali generate ulang nomor order kalau kebetulan tabrakan.
const maxOrderNoRetries = 5

// Dibungkus variabel biar test bisa nyodorin nomor tabrakan dengan sengaja.
var generateOrderNo = utils.GenerateOrderNo

// Actor = siapa yang melakukan operasi. Untuk transisi otomatis pakai
// SystemActor, bukan user beneran.
type Actor struct {
	ID   uint64
	Name string
	Role string
}

var SystemActor = Actor{ID: 0, Name: "system", Role: models.ActorSystem}

func TargetMinutes(orderType string) int {
	if orderType == models.OrderTypeStandard {
		return TargetMinutesStandard
	}
	return TargetMinutesFast
}

// ==================== Lookup ====================

// FindOrder mencari order via ID internal ATAU kode EKR-XXXXX.
// Dua-duanya harus nyampe ke order yang sama.
func FindOrder(db *gorm.DB, idOrCode string) (*models.Order, error) {
	var order models.Order
	query := db.Preload("Timeline", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("timeline_events.id ASC")
	})

	if id := utils.StringToUint64(idOrCode); id > 0 {
		query = query.Where("id = ? OR order_no = ?", id, idOrCode)
	} else {
		query = query.Where("order_no = ?", idOrCode)
	}

	if err := query.First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ==================== Create ====================

type CreateOrderParams struct {
	Customer    models.User
	Type        string
	ServiceType string
	City        string
	Pincode     string
	Address     models.Address
	BookingID   *uint64
	Items       json.RawMessage
	Payment     models.Payment
}

// CreateOrder membuat order baru di stage confirmed. Jam SLA mulai jalan
// dari sini (StartedAt), dan ga akan pernah digeser lagi.
func CreateOrder(db *gorm.DB, p CreateOrderParams) (*models.Order, error) {
	if p.Customer.ID == 0 {
		return nil, fmt.Errorf("%w: customer wajib ada", ErrValidation)
	}
	if p.ServiceType != models.ServiceEyeTest && p.ServiceType != models.ServiceTryOn && p.ServiceType != models.ServiceCombo {
		return nil, fmt.Errorf("%w: service_type tidak dikenal", ErrValidation)
	}
	if strings.TrimSpace(p.Address.Full) == "" {
		return nil, fmt.Errorf("%w: alamat wajib diisi", ErrValidation)
	}

	orderType := p.Type
	if orderType == "" {
		orderType = models.OrderTypeFast
	}

	// Ruang nomor EKR-XXXXX cuma 90 ribu, tabrakan bisa kejadian. Uniknya
	// dijaga unique index di kolom order_no, bukan pre-check (pre-check bisa
	// disalip create lain di antara cek dan insert): insert aja, kalau kena
	// duplicate key ya generate ulang.
	for attempt := 0; ; attempt++ {
		now := time.Now()
		order := models.Order{
			OrderNo:       generateOrderNo(),
			CustomerID:    p.Customer.ID,
			BookingID:     p.BookingID,
			Type:          orderType,
			ServiceType:   p.ServiceType,
			City:          p.City,
			Pincode:       p.Pincode,
			Address:       p.Address,
			StartedAt:     now,
			TargetMinutes: TargetMinutes(orderType),
			CurrentStage:  stages.StageConfirmed,
			Status:        models.OrderStatusPending,
			Items:         p.Items,
			Payment:       p.Payment,
		}
		if order.Payment.Status == "" {
			order.Payment.Status = "pending"
		}

		// Order + seed timeline event harus satu transaksi: ga boleh ada
		// order hidup tanpa event confirmed pertama.
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			actorID := p.Customer.ID
			seed := models.TimelineEvent{
				OrderRef:  order.ID,
				Stage:     stages.StageConfirmed,
				Timestamp: now,
				ActorID:   &actorID,
				ActorName: firstNonEmpty(p.Customer.Name, p.Customer.Phone),
			}
			return tx.Create(&seed).Error
		})
		if err == nil {
			return FindOrder(db, order.OrderNo)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if attempt >= maxOrderNoRetries {
				return nil, fmt.Errorf("gagal dapat nomor order unik setelah %d percobaan", maxOrderNoRetries)
			}
			continue
		}
		return nil, err
	}
}

// ==================== Advance ====================

type AdvancePayload struct {
	Geo           *models.GeoInput
	PhotoProof    string
	Remarks       string
	ExceptionCode string
	QCResult      string
	EyeTestData   json.RawMessage
	TryOnData     json.RawMessage
}

// validateAdvance memeriksa satu permintaan transisi terhadap state order
// saat ini. Murni, ga nyentuh DB — dipanggil ulang tiap retry CAS karena
// state-nya bisa sudah berubah di bawah kita.
func validateAdvance(o *models.Order, requested string, actor Actor, payload AdvancePayload) error {
	if strings.TrimSpace(requested) == "" {
		return fmt.Errorf("%w: stage wajib diisi", ErrValidation)
	}
	if !stages.IsKnownStage(requested) {
		return fmt.Errorf("%w: stage '%s' tidak dikenal", ErrValidation, requested)
	}
	if stages.IsTerminalStage(o.CurrentStage) || isTerminalStatus(o.Status) {
		return ErrInvalidState
	}
	// Role dicek sebelum struktur graph: aktor yang memang ga berhak
	// (customer, lab nyoba stage lapangan) selalu dapat 403, bukan 409.
	if !stages.RoleAllowed(requested, actor.Role) {
		return fmt.Errorf("%w: role %s tidak boleh set stage %s", ErrForbidden, actor.Role, requested)
	}
	if !stages.ValidNext(o.CurrentStage, requested) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.CurrentStage, requested)
	}
	if stages.IsQCStage(requested) {
		if payload.QCResult != "pass" && payload.QCResult != "fail" {
			return fmt.Errorf("%w: stage QC wajib bawa qc_result pass/fail", ErrValidation)
		}
		if payload.QCResult == "fail" && strings.TrimSpace(payload.Remarks) == "" {
			return fmt.Errorf("%w: QC fail wajib disertai alasan di remarks", ErrValidation)
		}
	}
	return nil
}

// nextStatus menurunkan status dari stage baru: delivered/completed berarti
// selesai, selain itu gerakan pertama mengubah pending jadi in_progress.
func nextStatus(current, requestedStage string) string {
	if requestedStage == stages.StageDelivered || requestedStage == stages.StageCompleted {
		return models.OrderStatusCompleted
	}
	if current == models.OrderStatusPending {
		return models.OrderStatusInProgress
	}
	return current
}

func isTerminalStatus(status string) bool {
	return status == models.OrderStatusCompleted ||
		status == models.OrderStatusCancelled ||
		status == models.OrderStatusRefunded
}

// AdvanceStage memajukan order satu stage. Update stage-nya pakai
// compare-and-swap di kolom current_stage: kalau ada aktor lain keburu maju
// duluan, kita reload state terbaru dan validasi ulang, bukan main timpa.
func AdvanceStage(db *gorm.DB, idOrCode, requested string, actor Actor, payload AdvancePayload) (*models.Order, error) {
	for attempt := 0; attempt < maxAdvanceRetries; attempt++ {
		order, err := FindOrder(db, idOrCode)
		if err != nil {
			return nil, err
		}

		if err := validateAdvance(order, requested, actor, payload); err != nil {
			return nil, err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"current_stage": requested,
			"status":        nextStatus(order.Status, requested),
			"updated_at":    now,
		}
		if payload.QCResult == "fail" {
			updates["exception_code"] = models.ExceptionQCFail
		} else if payload.ExceptionCode != "" {
			updates["exception_code"] = payload.ExceptionCode
		}
		if len(payload.EyeTestData) > 0 {
			updates["eye_test_data"] = payload.EyeTestData
		}
		if len(payload.TryOnData) > 0 {
			updates["try_on_data"] = payload.TryOnData
		}

		conflict := false
		err = db.Transaction(func(tx *gorm.DB) error {
			// CAS: cuma kena kalau current_stage masih sama dengan yang kita
			// baca tadi. RowsAffected 0 = ada yang nyalip.
			res := tx.Model(&models.Order{}).
				Where("id = ? AND current_stage = ?", order.ID, order.CurrentStage).
				Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				conflict = true
				return ErrConflict // rollback, lanjut retry di luar
			}

			event := buildEvent(order.ID, requested, now, actor, payload)
			return tx.Create(&event).Error
		})

		if conflict {
			continue
		}
		if err != nil {
			return nil, err
		}
		return FindOrder(db, idOrCode)
	}
	return nil, ErrConflict
}

func buildEvent(orderID uint64, stage string, ts time.Time, actor Actor, payload AdvancePayload) models.TimelineEvent {
	event := models.TimelineEvent{
		OrderRef:      orderID,
		Stage:         stage,
		Timestamp:     ts,
		ActorName:     actor.Name,
		PhotoProof:    payload.PhotoProof,
		Remarks:       payload.Remarks,
		ExceptionCode: payload.ExceptionCode,
		QCResult:      payload.QCResult,
	}
	if actor.ID != 0 {
		id := actor.ID
		event.ActorID = &id
	}
	if payload.Geo != nil {
		lat, lng := payload.Geo.Lat, payload.Geo.Lng
		event.Lat = &lat
		event.Lng = &lng
	}
	if payload.QCResult == "fail" {
		event.ExceptionCode = models.ExceptionQCFail
	}
	return event
}

// ==================== Exception / notes ====================

// RecordException mencatat masalah tanpa mindahin stage. Order-nya tetap di
// posisi sekarang, exception-nya kebawa buat laporan.
func RecordException(db *gorm.DB, idOrCode, exceptionCode, remarks string, actor Actor) (*models.Order, error) {
	if strings.TrimSpace(exceptionCode) == "" {
		return nil, fmt.Errorf("%w: exception_code wajib diisi", ErrValidation)
	}

	order, err := FindOrder(db, idOrCode)
	if err != nil {
		return nil, err
	}
	if isTerminalStatus(order.Status) {
		return nil, ErrInvalidState
	}

	now := time.Now()
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Updates(map[string]interface{}{"exception_code": exceptionCode, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		// Event pakai stage yang sekarang: timeline tetap nyambung,
		// current_stage tetap = event terakhir.
		event := buildEvent(order.ID, order.CurrentStage, now, actor, AdvancePayload{
			Remarks:       remarks,
			ExceptionCode: exceptionCode,
		})
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, err
	}
	return FindOrder(db, idOrCode)
}

// RecordNote menempel catatan di timeline tanpa mengubah apa-apa.
// Dipakai antara lain buat jejak reassignment staf.
func RecordNote(db *gorm.DB, idOrCode, remarks string, actor Actor) error {
	order, err := FindOrder(db, idOrCode)
	if err != nil {
		return err
	}
	event := buildEvent(order.ID, order.CurrentStage, time.Now(), actor, AdvancePayload{Remarks: remarks})
	return db.Create(&event).Error
}

// ==================== Cancel ====================

// CancelOrder membatalkan order. Terminal ga bisa dibatalkan lagi, dan
// customer cuma boleh batalin selama order masih di fase lapangan.
func CancelOrder(db *gorm.DB, idOrCode, reason string, actor Actor) (*models.Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: alasan pembatalan wajib diisi", ErrValidation)
	}

	for attempt := 0; attempt < maxAdvanceRetries; attempt++ {
		order, err := FindOrder(db, idOrCode)
		if err != nil {
			return nil, err
		}
		if isTerminalStatus(order.Status) || stages.IsTerminalStage(order.CurrentStage) {
			return nil, ErrInvalidState
		}
		if !stages.CanCancel(actor.Role, order.CurrentStage) {
			return nil, fmt.Errorf("%w: role %s tidak boleh membatalkan dari stage %s", ErrForbidden, actor.Role, order.CurrentStage)
		}

		now := time.Now()
		conflict := false
		err = db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Order{}).
				Where("id = ? AND current_stage = ?", order.ID, order.CurrentStage).
				Updates(map[string]interface{}{
					"current_stage": stages.StageCancelled,
					"status":        models.OrderStatusCancelled,
					"updated_at":    now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				conflict = true
				return ErrConflict
			}
			event := buildEvent(order.ID, stages.StageCancelled, now, actor, AdvancePayload{Remarks: reason})
			return tx.Create(&event).Error
		})

		if conflict {
			continue
		}
		if err != nil {
			return nil, err
		}
		return FindOrder(db, idOrCode)
	}
	return nil, ErrConflict
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
