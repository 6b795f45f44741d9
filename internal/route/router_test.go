package route

import (
	"testing"
	"time"

	"wbs/internal/model"
	"wbs/internal/taxonomy"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestRoute_CorruptionCritical(t *testing.T) {
	result := Route(model.CategoryCorruption, model.SeverityCritical, now)

	assert.Equal(t, taxonomy.UnitInternalAudit, result.AssignedUnit)
	assert.Equal(t, "P1", result.Priority)
	assert.Equal(t, 4, result.SLAHours)
	assert.Equal(t, "Ketua BPKH", result.EscalationTo)
	assert.Equal(t, now.Add(4*time.Hour), result.SLADeadline)
	// Escalation target and top leadership are the same entity here and
	// must not appear twice.
	assert.Equal(t, []string{
		taxonomy.UnitInternalAudit,
		taxonomy.UnitAuditCommittee,
		"Ketua BPKH",
	}, result.NotificationList)
}

func TestRoute_FraudHigh(t *testing.T) {
	result := Route(model.CategoryFraud, model.SeverityHigh, now)

	assert.Equal(t, taxonomy.UnitLegal, result.AssignedUnit)
	assert.Equal(t, "P2", result.Priority)
	assert.Equal(t, 24, result.SLAHours)
	assert.Equal(t, []string{
		taxonomy.UnitLegal,
		taxonomy.UnitAuditCommittee,
		"Director Level",
	}, result.NotificationList)
}

func TestRoute_HarassmentMedium(t *testing.T) {
	result := Route(model.CategoryHarassment, model.SeverityMedium, now)

	assert.Equal(t, taxonomy.UnitHR, result.AssignedUnit)
	assert.Equal(t, "P3", result.Priority)
	assert.Equal(t, 48, result.SLAHours)
	assert.Equal(t, []string{taxonomy.UnitHR}, result.NotificationList)
}

func TestRoute_PolicyViolationLow(t *testing.T) {
	result := Route(model.CategoryPolicyViolation, model.SeverityLow, now)

	assert.Equal(t, taxonomy.UnitCompliance, result.AssignedUnit)
	assert.Equal(t, "P4", result.Priority)
	assert.Equal(t, 72, result.SLAHours)
	assert.Equal(t, now.Add(72*time.Hour), result.SLADeadline)
}

func TestRoute_OtherFallsToCatchAll(t *testing.T) {
	result := Route(model.CategoryOther, model.SeverityLow, now)

	assert.Equal(t, taxonomy.UnitAuditCommittee, result.AssignedUnit)
	assert.Equal(t, []string{taxonomy.UnitAuditCommittee}, result.NotificationList)
}

func TestRoute_UnknownSeverityDefaultsToMedium(t *testing.T) {
	result := Route(model.CategoryFraud, model.Severity("unknown"), now)

	assert.Equal(t, "P3", result.Priority)
	assert.Equal(t, 48, result.SLAHours)
}
