package config

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"eyekra-backend/internal/models"
)

// DB dipakai rame-rame sama semua handler
var DB *gorm.DB

func ConnectDB() {
	user := getEnv("DB_USER", "root")
	pass := getEnv("DB_PASS", "")
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "3306")
	name := getEnv("DB_NAME", "eyekra")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, name)

	// TranslateError: duplicate key dari MySQL kebaca sebagai
	// gorm.ErrDuplicatedKey, dipakai retry nomor order di lifecycle
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("Gagal konek database: ", err)
	}

	// Migrasi otomatis semua tabel
	err = db.AutoMigrate(
		&models.User{},
		&models.OTP{},
		&models.Order{},
		&models.TimelineEvent{},
		&models.Slot{},
		&models.Booking{},
		&models.Product{},
		&models.AnalyticsEvent{},
	)
	if err != nil {
		log.Fatal("Gagal migrasi database: ", err)
	}

	DB = db
	log.Println("Database OK!")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
