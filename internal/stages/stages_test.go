package stages

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eyekra-backend/internal/models"
)

func TestValidNextSequential(t *testing.T) {
	assert.True(t, ValidNext(StageConfirmed, StageOptimaAssigned))
	assert.True(t, ValidNext(StageCallVerified, StageStartTravel))
	assert.True(t, ValidNext(StageHandoverToRunner, StageJobReceived))
	assert.True(t, ValidNext(StageQC2, StageDispatchReady))
	assert.True(t, ValidNext(StageOutForDelivery, StageDelivered))
}

func TestValidNextRejectsSkip(t *testing.T) {
	// Loncat stage ga boleh, walaupun arahnya maju
	assert.False(t, ValidNext(StageConfirmed, StageQC1))
	assert.False(t, ValidNext(StageConfirmed, StageCallVerified))
	assert.False(t, ValidNext(StageJobReceived, StageAssembly))
}

func TestValidNextRejectsBackwardAndSame(t *testing.T) {
	assert.False(t, ValidNext(StageArrived, StageStartTravel))
	assert.False(t, ValidNext(StageEyeTestCompleted, StageEyeTestCompleted))
}

func TestValidNextBranches(t *testing.T) {
	// Order try_on: dari arrived langsung ke try_on_started
	assert.True(t, ValidNext(StageArrived, StageEyeTestStarted))
	assert.True(t, ValidNext(StageArrived, StageTryOnStarted))

	// Order eye_test doang: skip try-on, langsung ke pembayaran
	assert.True(t, ValidNext(StageEyeTestCompleted, StageTryOnStarted))
	assert.True(t, ValidNext(StageEyeTestCompleted, StagePaymentCollected))
}

func TestTerminalStagesHaveNoSuccessor(t *testing.T) {
	for _, stage := range []string{StageDelivered, StageCompleted, StageCancelled} {
		assert.True(t, IsTerminalStage(stage))
		assert.Empty(t, successors[stage])
	}
	assert.False(t, IsTerminalStage(StageDispatchReady))
}

func TestRoleAllowed(t *testing.T) {
	// Customer ga pernah boleh mindahin stage apapun
	for stage := range successors {
		assert.False(t, RoleAllowed(stage, models.RoleCustomer), stage)
	}

	// Teknisi lab ga boleh nyentuh stage lapangan, dan sebaliknya
	assert.False(t, RoleAllowed(StageArrived, models.RoleLabTechnician))
	assert.False(t, RoleAllowed(StageAssembly, models.RoleEyeTestExecutive))

	assert.True(t, RoleAllowed(StageArrived, models.RoleEyeTestExecutive))
	assert.True(t, RoleAllowed(StageAssembly, models.RoleLabTechnician))
	assert.True(t, RoleAllowed(StageQC1, models.RoleQCSpecialist))
	assert.True(t, RoleAllowed(StageDelivered, models.RoleRunner))
}

func TestRoleAllowedSuperAdminAndSystem(t *testing.T) {
	// super_admin bebas ke mana saja
	for stage := range successors {
		assert.True(t, RoleAllowed(stage, models.RoleSuperAdmin), stage)
	}

	// system cuma buat auto-assignment & delivery otomatis
	assert.True(t, RoleAllowed(StageOptimaAssigned, models.ActorSystem))
	assert.True(t, RoleAllowed(StageOutForDelivery, models.ActorSystem))
	assert.False(t, RoleAllowed(StageAssembly, models.ActorSystem))
}

func TestIsValidTransition(t *testing.T) {
	assert.True(t, IsValidTransition(StageConfirmed, StageOptimaAssigned, models.RoleAdminOps))
	assert.False(t, IsValidTransition(StageConfirmed, StageOptimaAssigned, models.RoleLabTechnician))
	assert.False(t, IsValidTransition(StageConfirmed, StageArrived, models.RoleSuperAdmin))
}

func TestIsLabStage(t *testing.T) {
	assert.True(t, IsLabStage(StageJobReceived))
	assert.True(t, IsLabStage(StageQC2))
	assert.False(t, IsLabStage(StageArrived))
	assert.False(t, IsLabStage(StageOutForDelivery))
}

func TestIsQCStage(t *testing.T) {
	assert.True(t, IsQCStage(StageQC1))
	assert.True(t, IsQCStage(StageQC2))
	assert.False(t, IsQCStage(StageFinalCleaning))
}

func TestCanCancel(t *testing.T) {
	// Customer: boleh selama masih fase lapangan
	assert.True(t, CanCancel(models.RoleCustomer, StageConfirmed))
	assert.True(t, CanCancel(models.RoleCustomer, StagePaymentCollected))

	// Setelah handover ke runner / masuk lab, customer sudah ga bisa
	assert.False(t, CanCancel(models.RoleCustomer, StageHandoverToRunner))
	assert.False(t, CanCancel(models.RoleCustomer, StageAssembly))
	assert.False(t, CanCancel(models.RoleCustomer, StageOutForDelivery))

	// Admin: bebas selama belum terminal
	assert.True(t, CanCancel(models.RoleAdminOps, StageAssembly))
	assert.True(t, CanCancel(models.RoleSuperAdmin, StageOutForDelivery))
	assert.False(t, CanCancel(models.RoleSuperAdmin, StageDelivered))
	assert.False(t, CanCancel(models.RoleAdminOps, StageCancelled))

	// Staf lapangan/lab ga punya hak batal
	assert.False(t, CanCancel(models.RoleEyeTestExecutive, StageArrived))
	assert.False(t, CanCancel(models.RoleLabTechnician, StageAssembly))
}
