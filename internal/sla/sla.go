package sla

import (
	"sort"
	"time"

	"eyekra-backend/internal/models"
)

// Klasifikasi urgensi SLA. Dihitung ulang TIAP kali dibaca karena "now" jalan
// terus walaupun ordernya ga diapa-apain. Jangan pernah di-cache di Order.
const (
	StatusOnTrack  = "on_track"
	StatusAtRisk   = "at_risk"
	StatusBreached = "breached"
)

// ElapsedMinutes = menit berjalan sejak order dibuat, dibulatkan ke bawah.
// Kalau jam server mundur (clock skew), minimal 0.
func ElapsedMinutes(startedAt, now time.Time) int {
	minutes := int(now.Sub(startedAt).Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}

func RemainingMinutes(targetMinutes, elapsed int) int {
	remaining := targetMinutes - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

func Percentage(elapsed, targetMinutes int) float64 {
	if targetMinutes <= 0 {
		return 100
	}
	return float64(elapsed) / float64(targetMinutes) * 100
}

// Classify: < 80% on_track, 80% s/d < 100% at_risk, >= 100% breached.
// Batasnya inklusif di atas: pas 80% sudah at_risk, pas 100% sudah breached.
func Classify(elapsed, targetMinutes int) string {
	pct := Percentage(elapsed, targetMinutes)
	if pct >= 100 {
		return StatusBreached
	}
	if pct >= 80 {
		return StatusAtRisk
	}
	return StatusOnTrack
}

// ClassifyOrder helper untuk dipanggil dari handler/sort.
func ClassifyOrder(o *models.Order, now time.Time) string {
	return Classify(ElapsedMinutes(o.StartedAt, now), o.TargetMinutes)
}

// IsCompliant: order selesai dalam target? Dipakai buat laporan, bukan gate.
func IsCompliant(startedAt, completedAt time.Time, targetMinutes int) bool {
	return ElapsedMinutes(startedAt, completedAt) <= targetMinutes
}

var urgencyRank = map[string]int{
	StatusBreached: 0,
	StatusAtRisk:   1,
	StatusOnTrack:  2,
}

// SortByUrgency mengurutkan antrian: breached duluan, lalu at_risk, lalu
// on_track. Di dalam kelas yang sama, sisa menit paling sedikit di depan.
// Stable sort biar urutan asli (created_at) ga keacak untuk yang seri persis.
func SortByUrgency(orders []models.Order, now time.Time) {
	sort.SliceStable(orders, func(i, j int) bool {
		ei := ElapsedMinutes(orders[i].StartedAt, now)
		ej := ElapsedMinutes(orders[j].StartedAt, now)
		ri := urgencyRank[Classify(ei, orders[i].TargetMinutes)]
		rj := urgencyRank[Classify(ej, orders[j].TargetMinutes)]
		if ri != rj {
			return ri < rj
		}
		return RemainingMinutes(orders[i].TargetMinutes, ei) < RemainingMinutes(orders[j].TargetMinutes, ej)
	})
}

// Snapshot = hasil evaluasi SLA yang ditempel di response (bukan di tabel).
type Snapshot struct {
	ElapsedMinutes   int     `json:"elapsed_minutes"`
	RemainingMinutes int     `json:"remaining_minutes"`
	Percentage       float64 `json:"percentage"`
	Status           string  `json:"status"`
}

func Evaluate(o *models.Order, now time.Time) Snapshot {
	elapsed := ElapsedMinutes(o.StartedAt, now)
	return Snapshot{
		ElapsedMinutes:   elapsed,
		RemainingMinutes: RemainingMinutes(o.TargetMinutes, elapsed),
		Percentage:       Percentage(elapsed, o.TargetMinutes),
		Status:           Classify(elapsed, o.TargetMinutes),
	}
}
