package stages

import "eyekra-backend/internal/models"

// Daftar stage order, urut sesuai alur kerja.
// Fase lapangan (dikerjakan Optima di rumah customer):
const (
	StageConfirmed        = "confirmed"
	StageOptimaAssigned   = "optima_assigned"
	StageCallVerified     = "call_verified"
	StageStartTravel      = "start_travel"
	StageArrived          = "arrived"
	StageEyeTestStarted   = "eye_test_started"
	StageEyeTestCompleted = "eye_test_completed"
	StageTryOnStarted     = "try_on_started"
	StageTryOnCompleted   = "try_on_completed"
	StagePaymentCollected = "payment_collected"
	StageHandoverToRunner = "handover_to_runner"
)

// Fase lab (dikerjakan teknisi di lab):
const (
	StageJobReceived         = "job_received"
	StageLensFrameAllocation = "lens_frame_allocation"
	StageCuttingFitting      = "cutting_fitting"
	StageAssembly            = "assembly"
	StageQC1                 = "qc_1"
	StageFinalCleaning       = "final_cleaning"
	StageQC2                 = "qc_2"
	StageDispatchReady       = "dispatch_ready"
)

// Fase pengiriman + stage terminal:
const (
	StageOutForDelivery = "out_for_delivery"
	StageDelivered      = "delivered"
	StageCompleted      = "completed"
	StageCancelled      = "cancelled"
)

// LabStages dipakai query antrian lab: semua order yang stage-nya di sini
// masuk antrian bersama, ga peduli siapa assignee-nya.
var LabStages = []string{
	StageJobReceived,
	StageLensFrameAllocation,
	StageCuttingFitting,
	StageAssembly,
	StageQC1,
	StageFinalCleaning,
	StageQC2,
	StageDispatchReady,
}

var FieldStages = []string{
	StageConfirmed,
	StageOptimaAssigned,
	StageCallVerified,
	StageStartTravel,
	StageArrived,
	StageEyeTestStarted,
	StageEyeTestCompleted,
	StageTryOnStarted,
	StageTryOnCompleted,
	StagePaymentCollected,
	StageHandoverToRunner,
}

// successors = graf transisi eksplisit (bukan posisi array!). Hampir semua
// linier, tapi ada cabang untuk service type yang ga pakai eye test / try on:
// order try_on langsung dari arrived ke try_on_started, order eye_test
// loncat dari eye_test_completed ke payment_collected.
var successors = map[string][]string{
	StageConfirmed:        {StageOptimaAssigned},
	StageOptimaAssigned:   {StageCallVerified},
	StageCallVerified:     {StageStartTravel},
	StageStartTravel:      {StageArrived},
	StageArrived:          {StageEyeTestStarted, StageTryOnStarted},
	StageEyeTestStarted:   {StageEyeTestCompleted},
	StageEyeTestCompleted: {StageTryOnStarted, StagePaymentCollected},
	StageTryOnStarted:     {StageTryOnCompleted},
	StageTryOnCompleted:   {StagePaymentCollected},
	StagePaymentCollected: {StageHandoverToRunner},
	StageHandoverToRunner: {StageJobReceived},

	StageJobReceived:         {StageLensFrameAllocation},
	StageLensFrameAllocation: {StageCuttingFitting},
	StageCuttingFitting:      {StageAssembly},
	StageAssembly:            {StageQC1},
	StageQC1:                 {StageFinalCleaning},
	StageFinalCleaning:       {StageQC2},
	StageQC2:                 {StageDispatchReady},
	StageDispatchReady:       {StageOutForDelivery},

	StageOutForDelivery: {StageDelivered, StageCompleted},

	// Terminal: ga ada jalan keluar
	StageDelivered: {},
	StageCompleted: {},
	StageCancelled: {},
}

// stageRoles = role yang boleh MENGHASILKAN stage tersebut.
// super_admin selalu boleh (dicek di RoleAllowed, ga perlu ditulis di sini).
// optima_assigned boleh "system" karena auto-assignment ga punya user.
var stageRoles = map[string][]string{
	StageOptimaAssigned: {models.ActorSystem, models.RoleAdminOps, models.RoleRegionalManager},

	StageCallVerified:     models.FieldStaffRoles,
	StageStartTravel:      models.FieldStaffRoles,
	StageArrived:          models.FieldStaffRoles,
	StageEyeTestStarted:   models.FieldStaffRoles,
	StageEyeTestCompleted: models.FieldStaffRoles,
	StageTryOnStarted:     models.FieldStaffRoles,
	StageTryOnCompleted:   models.FieldStaffRoles,
	StagePaymentCollected: models.FieldStaffRoles,
	StageHandoverToRunner: models.FieldStaffRoles,

	StageJobReceived:         models.LabRoles,
	StageLensFrameAllocation: models.LabRoles,
	StageCuttingFitting:      models.LabRoles,
	StageAssembly:            models.LabRoles,
	StageQC1:                 models.LabRoles,
	StageFinalCleaning:       models.LabRoles,
	StageQC2:                 models.LabRoles,
	StageDispatchReady:       models.LabRoles,

	StageOutForDelivery: {models.RoleDeliveryExecutive, models.RoleRunner, models.ActorSystem},
	StageDelivered:      {models.RoleDeliveryExecutive, models.RoleRunner, models.ActorSystem},
	StageCompleted:      {models.RoleDeliveryExecutive, models.RoleRunner, models.ActorSystem},
}

// IsKnownStage: stage-nya ada di graf?
func IsKnownStage(stage string) bool {
	_, ok := successors[stage]
	return ok
}

// ValidNext: requested adalah penerus langsung dari current?
// Mundur atau loncat stage = false. Stage sama juga false (bukan no-op diam!).
func ValidNext(current, requested string) bool {
	for _, next := range successors[current] {
		if next == requested {
			return true
		}
	}
	return false
}

// RoleAllowed: role boleh menghasilkan stage ini?
func RoleAllowed(requested, role string) bool {
	if role == models.RoleSuperAdmin {
		return true
	}
	for _, r := range stageRoles[requested] {
		if r == role {
			return true
		}
	}
	return false
}

// IsValidTransition menggabungkan dua cek di atas. Dipisah juga karena
// handler butuh bedain 409 (transisi salah) vs 403 (role salah).
func IsValidTransition(current, requested, role string) bool {
	return ValidNext(current, requested) && RoleAllowed(requested, role)
}

func IsLabStage(stage string) bool {
	for _, s := range LabStages {
		if s == stage {
			return true
		}
	}
	return false
}

// IsTerminalStage: setelah ini order selesai, ga bisa maju lagi.
func IsTerminalStage(stage string) bool {
	return stage == StageDelivered || stage == StageCompleted || stage == StageCancelled
}

// IsQCStage: stage yang wajib bawa qc_result pass/fail.
func IsQCStage(stage string) bool {
	return stage == StageQC1 || stage == StageQC2
}

// pastHandover: order sudah diserahkan ke runner / masuk lab / pengiriman.
func pastHandover(stage string) bool {
	if stage == StageHandoverToRunner || stage == StageOutForDelivery {
		return true
	}
	return IsLabStage(stage)
}

// CanCancel: customer cuma boleh batalin selama masih fase lapangan
// (sebelum handover_to_runner). Admin & super_admin bebas selama belum terminal.
func CanCancel(role, currentStage string) bool {
	if IsTerminalStage(currentStage) {
		return false
	}
	if role == models.RoleSuperAdmin || models.IsAdminRole(role) {
		return true
	}
	if role == models.RoleCustomer {
		return !pastHandover(currentStage)
	}
	return false
}
