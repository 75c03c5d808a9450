package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-kan password sebelum masuk tabel users.
// Cuma akun staf/admin yang lewat sini — customer login pakai OTP.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword mencocokkan password login staf dengan hash di database
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
