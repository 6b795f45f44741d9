// Package route assigns classified reports to an investigating unit and
// derives the SLA deadline and notification fan-out from the severity table.
package route

import (
	"time"

	"wbs/internal/model"
	"wbs/internal/taxonomy"
)

// Route maps (category, severity) to the owning unit, escalation target and
// SLA deadline relative to now. Pure table lookup, deterministic.
func Route(category model.Category, severity model.Severity, now time.Time) model.RoutingResult {
	lvl, ok := taxonomy.SeverityLevels[severity]
	if !ok {
		lvl = taxonomy.SeverityLevels[model.SeverityMedium]
	}

	unit := assignUnit(category)

	return model.RoutingResult{
		AssignedUnit:     unit,
		EscalationTo:     lvl.EscalationTo,
		Priority:         lvl.Priority,
		SLAHours:         lvl.SLAHours,
		SLADeadline:      now.Add(time.Duration(lvl.SLAHours) * time.Hour),
		NotificationList: notificationList(unit, severity, lvl.EscalationTo),
	}
}

// assignUnit walks the routing table top to bottom and returns the first
// unit whose category list contains the category or the catch-all sentinel.
func assignUnit(category model.Category) string {
	for _, route := range taxonomy.RoutingUnits {
		for _, c := range route.Categories {
			if c == category || c == taxonomy.CategoryAll {
				return route.Unit
			}
		}
	}
	return taxonomy.DefaultUnit
}

// notificationList starts with the assigned unit; high and critical add the
// audit committee and the escalation target, critical adds top leadership.
// Entries are deduplicated, assigned unit stays first.
func notificationList(unit string, severity model.Severity, escalation string) []string {
	recipients := []string{unit}

	if severity == model.SeverityCritical || severity == model.SeverityHigh {
		recipients = append(recipients, taxonomy.UnitAuditCommittee, escalation)
	}
	if severity == model.SeverityCritical {
		recipients = append(recipients, taxonomy.TopLeadership)
	}

	seen := map[string]bool{}
	out := recipients[:0]
	for _, r := range recipients {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}
