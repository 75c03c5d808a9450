package utils

import (
	"fmt"
	"math/rand"
)

// GenerateOrderNo membuat kode order yang enak dibaca manusia: EKR-10241.
// Unik-nya TIDAK dijamin di sini — yang manggil wajib cek ke DB dan
// generate ulang kalau tabrakan.
func GenerateOrderNo() string {
	return fmt.Sprintf("EKR-%d", 10000+rand.Intn(90000))
}

// GenerateOTP membuat kode 6 digit untuk login / verifikasi kunjungan
func GenerateOTP() string {
	return fmt.Sprintf("%06d", 100000+rand.Intn(900000))
}
