package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"eyekra-backend/internal/config"
	"eyekra-backend/internal/models"
)

// newHandlerTestDB nyiapin sqlite in-memory dan masang ke config.DB global.
// Satu koneksi saja, biar request yang jalan barengan antri kayak di pool
// MySQL sungguhan.
func newHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.OTP{},
		&models.Order{},
		&models.TimelineEvent{},
		&models.Slot{},
		&models.Booking{},
		&models.Product{},
		&models.AnalyticsEvent{},
	))
	config.DB = db
	return db
}

// performJSON menjalankan satu handler dengan context gin palsu.
// Identitas (userID/role/phone) diinject langsung, skip middleware.
func performJSON(handler gin.HandlerFunc, method, target string, body interface{},
	identity map[string]interface{}, params gin.Params) *httptest.ResponseRecorder {

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = params
	for k, v := range identity {
		c.Set(k, v)
	}

	handler(c)
	return w
}

func seedTestCustomer(t *testing.T, db *gorm.DB, phone string) models.User {
	t.Helper()
	user := models.User{Name: "Customer " + phone, Phone: phone, Role: models.RoleCustomer}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func asCustomer(u models.User) map[string]interface{} {
	return map[string]interface{}{"userID": u.ID, "role": u.Role, "phone": u.Phone}
}

func bookingInput(slotID uint64) models.CreateBookingInput {
	return models.CreateBookingInput{
		SlotID:      slotID,
		ServiceType: models.ServiceEyeTest,
		City:        "Jakarta",
		Address:     models.AddressInput{Full: "Jl. Thamrin No. 5"},
	}
}

func TestCreateBookingLastSeat(t *testing.T) {
	db := newHandlerTestDB(t)
	a := seedTestCustomer(t, db, "081200000001")
	b := seedTestCustomer(t, db, "081200000002")

	slot := models.Slot{
		City: "Jakarta", Date: startOfDay(time.Now()).AddDate(0, 0, 1),
		StartTime: "09:00", EndTime: "11:00",
		Capacity: 1, IsAvailable: true,
	}
	require.NoError(t, db.Create(&slot).Error)

	// Dua customer rebutan kursi terakhir barengan:
	// tepat satu 201, satunya ditolak, booked mentok di 1
	customers := []models.User{a, b}
	codes := make([]int, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := performJSON(CreateBooking, http.MethodPost, "/bookings",
				bookingInput(slot.ID), asCustomer(customers[i]), nil)
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	sort.Ints(codes)
	assert.Equal(t, []int{http.StatusCreated, http.StatusBadRequest}, codes)

	var fresh models.Slot
	require.NoError(t, db.First(&fresh, slot.ID).Error)
	assert.Equal(t, 1, fresh.Booked)

	var bookings int64
	db.Model(&models.Booking{}).Count(&bookings)
	assert.Equal(t, int64(1), bookings)
}

func TestCreateBookingFullSlotRejected(t *testing.T) {
	db := newHandlerTestDB(t)
	customer := seedTestCustomer(t, db, "081200000003")

	slot := models.Slot{
		City: "Jakarta", Date: startOfDay(time.Now()).AddDate(0, 0, 1),
		StartTime: "09:00", EndTime: "11:00",
		Capacity: 2, Booked: 2, IsAvailable: true,
	}
	require.NoError(t, db.Create(&slot).Error)

	w := performJSON(CreateBooking, http.MethodPost, "/bookings",
		bookingInput(slot.ID), asCustomer(customer), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func seedPendingBooking(t *testing.T, db *gorm.DB, customer models.User, otp string) models.Booking {
	t.Helper()
	booking := models.Booking{
		CustomerID:  customer.ID,
		ServiceType: models.ServiceEyeTest,
		City:        "Jakarta",
		Address:     models.Address{Full: "Jl. Thamrin No. 5"},
		SlotID:      1,
		SlotDate:    startOfDay(time.Now()).AddDate(0, 0, 1),
		StartTime:   "09:00",
		EndTime:     "11:00",
		Status:      models.BookingStatusPending,
		OTP:         otp,
	}
	require.NoError(t, db.Create(&booking).Error)
	return booking
}

func confirmParams(b models.Booking) gin.Params {
	return gin.Params{{Key: "id", Value: strconv.FormatUint(b.ID, 10)}}
}

func TestConfirmBookingSpawnsOrderOnce(t *testing.T) {
	db := newHandlerTestDB(t)
	customer := seedTestCustomer(t, db, "081200000004")
	booking := seedPendingBooking(t, db, customer, "654321")

	body := models.ConfirmBookingInput{OTP: "654321"}

	w := performJSON(ConfirmBooking, http.MethodPost, "/bookings/1/confirm",
		body, asCustomer(customer), confirmParams(booking))
	assert.Equal(t, http.StatusOK, w.Code)

	// Satu booking melahirkan tepat satu order, stage awal confirmed
	var orders []models.Order
	require.NoError(t, db.Where("booking_id = ?", booking.ID).Find(&orders).Error)
	require.Len(t, orders, 1)
	assert.Equal(t, "confirmed", orders[0].CurrentStage)
	assert.Equal(t, customer.ID, orders[0].CustomerID)

	// Konfirmasi ulang booking yang sama: 409, ga ada order kedua
	w = performJSON(ConfirmBooking, http.MethodPost, "/bookings/1/confirm",
		body, asCustomer(customer), confirmParams(booking))
	assert.Equal(t, http.StatusConflict, w.Code)

	var count int64
	db.Model(&models.Order{}).Where("booking_id = ?", booking.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestConfirmBookingConcurrentSingleOrder(t *testing.T) {
	db := newHandlerTestDB(t)
	customer := seedTestCustomer(t, db, "081200000005")
	booking := seedPendingBooking(t, db, customer, "111222")

	body := models.ConfirmBookingInput{OTP: "111222"}

	// Dua confirm barengan untuk booking yang sama: cuma satu yang lolos
	// guard pending -> confirmed, jadi cuma satu order yang lahir
	codes := make([]int, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := performJSON(ConfirmBooking, http.MethodPost, "/bookings/1/confirm",
				body, asCustomer(customer), confirmParams(booking))
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	sort.Ints(codes)
	assert.Equal(t, []int{http.StatusOK, http.StatusConflict}, codes)

	var count int64
	db.Model(&models.Order{}).Where("booking_id = ?", booking.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestConfirmBookingWrongOTP(t *testing.T) {
	db := newHandlerTestDB(t)
	customer := seedTestCustomer(t, db, "081200000006")
	booking := seedPendingBooking(t, db, customer, "999000")

	w := performJSON(ConfirmBooking, http.MethodPost, "/bookings/1/confirm",
		models.ConfirmBookingInput{OTP: "123123"}, asCustomer(customer), confirmParams(booking))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// OTP salah ga boleh ninggalin jejak apapun
	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)

	var fresh models.Booking
	require.NoError(t, db.First(&fresh, booking.ID).Error)
	assert.Equal(t, models.BookingStatusPending, fresh.Status)
}

func TestConfirmBookingNotOwner(t *testing.T) {
	db := newHandlerTestDB(t)
	owner := seedTestCustomer(t, db, "081200000007")
	stranger := seedTestCustomer(t, db, "081200000008")
	booking := seedPendingBooking(t, db, owner, "444555")

	w := performJSON(ConfirmBooking, http.MethodPost, "/bookings/1/confirm",
		models.ConfirmBookingInput{OTP: "444555"}, asCustomer(stranger), confirmParams(booking))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestStartOfDay(t *testing.T) {
	late := time.Date(2026, 8, 31, 23, 30, 0, 0, time.Local)
	day := startOfDay(late)

	// Tetap di tanggal yang sama, jam 00:00, zona lokal — bukan batas hari UTC
	assert.Equal(t, 2026, day.Year())
	assert.Equal(t, time.August, day.Month())
	assert.Equal(t, 31, day.Day())
	assert.Equal(t, 0, day.Hour())
	assert.Equal(t, time.Local, day.Location())

	early := time.Date(2026, 8, 31, 0, 15, 0, 0, time.Local)
	assert.Equal(t, day, startOfDay(early))
}
