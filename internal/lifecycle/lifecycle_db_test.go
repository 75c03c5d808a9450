package lifecycle

import (
	"errors"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"eyekra-backend/internal/models"
	"eyekra-backend/internal/stages"
)

// newTestDB: sqlite in-memory dengan satu koneksi, biar transaksi yang
// jalan barengan antri di pool — persis semantik conditional update yang
// dipakai engine, tanpa butuh MySQL beneran.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.TimelineEvent{},
		&models.Slot{},
		&models.Booking{},
	))
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Name: "Andi", Phone: "081200001111", Role: models.RoleCustomer}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func orderParams(customer models.User) CreateOrderParams {
	return CreateOrderParams{
		Customer:    customer,
		ServiceType: models.ServiceCombo,
		City:        "Jakarta",
		Address:     models.Address{Full: "Jl. Sudirman No. 1"},
	}
}

func TestCreateOrderSeedsTimeline(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db)

	order, err := CreateOrder(db, orderParams(customer))
	require.NoError(t, err)

	assert.Regexp(t, `^EKR-\d{5}$`, order.OrderNo)
	assert.Equal(t, stages.StageConfirmed, order.CurrentStage)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 240, order.TargetMinutes) // Default FAST
	assert.False(t, order.StartedAt.IsZero())

	// Event confirmed pertama lahir bareng order-nya
	require.Len(t, order.Timeline, 1)
	assert.Equal(t, stages.StageConfirmed, order.Timeline[0].Stage)
	assert.Equal(t, "Andi", order.Timeline[0].ActorName)
}

func TestCreateOrderRetriesTakenNumber(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db)

	orig := generateOrderNo
	defer func() { generateOrderNo = orig }()

	// Nomor kedua sengaja nabrak nomor pertama: unique index nolak insert,
	// engine harus generate ulang — bukan mental jadi error
	numbers := []string{"EKR-77777", "EKR-77777", "EKR-88888"}
	calls := 0
	generateOrderNo = func() string {
		n := numbers[calls]
		calls++
		return n
	}

	first, err := CreateOrder(db, orderParams(customer))
	require.NoError(t, err)
	assert.Equal(t, "EKR-77777", first.OrderNo)

	second, err := CreateOrder(db, orderParams(customer))
	require.NoError(t, err)
	assert.Equal(t, "EKR-88888", second.OrderNo)
	assert.Equal(t, 3, calls)
}

func TestFindOrderByIDOrCode(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db)

	created, err := CreateOrder(db, orderParams(customer))
	require.NoError(t, err)

	byCode, err := FindOrder(db, created.OrderNo)
	require.NoError(t, err)
	byID, err := FindOrder(db, "1")
	require.NoError(t, err)
	assert.Equal(t, byCode.ID, byID.ID)

	_, err = FindOrder(db, "EKR-00000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdvanceStageAppendsEvent(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db)

	created, err := CreateOrder(db, orderParams(customer))
	require.NoError(t, err)

	order, err := AdvanceStage(db, created.OrderNo, stages.StageOptimaAssigned, SystemActor, AdvancePayload{
		Remarks: "Ditugaskan ke Budi",
	})
	require.NoError(t, err)

	assert.Equal(t, stages.StageOptimaAssigned, order.CurrentStage)
	assert.Equal(t, models.OrderStatusInProgress, order.Status)

	// current_stage harus selalu = stage event timeline terakhir
	require.Len(t, order.Timeline, 2)
	assert.Equal(t, order.CurrentStage, order.Timeline[len(order.Timeline)-1].Stage)
}

func TestAdvanceStageSingleWinner(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db)

	created, err := CreateOrder(db, orderParams(customer))
	require.NoError(t, err)

	// Dua aktor dorong transisi yang sama barengan: tepat satu yang menang,
	// yang kalah pulang dengan error kelas-409
	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = AdvanceStage(db, created.OrderNo, stages.StageOptimaAssigned,
				SystemActor, AdvancePayload{})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
			continue
		}
		assert.True(t, errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrConflict),
			"error kalah harus ErrInvalidTransition atau ErrConflict, dapat: %v", err)
	}
	assert.Equal(t, 1, winners)

	final, err := FindOrder(db, created.OrderNo)
	require.NoError(t, err)
	assert.Equal(t, stages.StageOptimaAssigned, final.CurrentStage)
	assert.Len(t, final.Timeline, 2) // Cuma satu event optima_assigned yang masuk
}

func TestCancelOrderWritesTerminalState(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db)

	created, err := CreateOrder(db, orderParams(customer))
	require.NoError(t, err)

	actor := Actor{ID: customer.ID, Name: customer.Name, Role: models.RoleCustomer}
	order, err := CancelOrder(db, created.OrderNo, "ganti jadwal", actor)
	require.NoError(t, err)

	assert.Equal(t, stages.StageCancelled, order.CurrentStage)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)

	// Order terminal ga bisa dibatalkan dua kali
	_, err = CancelOrder(db, created.OrderNo, "lagi", actor)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRecordExceptionKeepsStage(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db)

	created, err := CreateOrder(db, orderParams(customer))
	require.NoError(t, err)

	actor := Actor{ID: 7, Name: "Budi", Role: models.RoleEyeTestExecutive}
	order, err := RecordException(db, created.OrderNo, models.ExceptionCustomerNotHome, "rumah kosong", actor)
	require.NoError(t, err)

	// Exception nempel, stage ga gerak, timeline nambah satu event
	assert.Equal(t, models.ExceptionCustomerNotHome, order.ExceptionCode)
	assert.Equal(t, stages.StageConfirmed, order.CurrentStage)
	require.Len(t, order.Timeline, 2)
	assert.Equal(t, stages.StageConfirmed, order.Timeline[1].Stage)
}
