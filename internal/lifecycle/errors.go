package lifecycle

import "errors"

// Error sentinel supaya handler bisa milih status code pakai errors.Is.
// Engine TIDAK PERNAH menelan transisi gagal secara diam-diam: semua jalur
// gagal pulang lewat salah satu error ini.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("order not found")
	ErrForbidden         = errors.New("actor not allowed")
	ErrInvalidTransition = errors.New("invalid stage transition")
	ErrInvalidState      = errors.New("order already in terminal state")
	ErrSlotUnavailable   = errors.New("slot unavailable")
	ErrConflict          = errors.New("concurrent update conflict")
)
