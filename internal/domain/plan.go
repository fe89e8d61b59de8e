package domain

import (
	"encoding/json"
	"time"
)

// Plan statuses. Archived is terminal.
const (
	PlanStatusActive   = "active"
	PlanStatusArchived = "archived"
)

// WaterPlan is one generated water-usage plan (maps to the water_plans
// table). At most one active plan exists per owner; the partial unique
// index water_plans(owner_id) WHERE status='active' enforces it.
type WaterPlan struct {
	PlanID        string          `db:"plan_id"` // UUID, PRIMARY KEY
	OwnerID       string          `db:"owner_id"`
	SystemID      *string         `db:"system_id"`
	PlanText      string          `db:"plan_text"`
	DateStart     time.Time       `db:"date_start"` // DATE
	DateEnd       time.Time       `db:"date_end"`   // DATE, exclusive
	PriorityRules json.RawMessage `db:"priority_rules"` // JSONB
	Status        string          `db:"status"`
	CreatedAt     time.Time       `db:"created_at"`
}

// ToJSON converts a plan for HTTP responses.
func (p *WaterPlan) ToJSON() map[string]any {
	m := map[string]any{
		"plan_id":        p.PlanID,
		"owner_id":       p.OwnerID,
		"plan_text":      p.PlanText,
		"date_start":     p.DateStart.Format("2006-01-02"),
		"date_end":       p.DateEnd.Format("2006-01-02"),
		"priority_rules": p.PriorityRules,
		"status":         p.Status,
		"created_at":     p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if p.SystemID != nil {
		m["system_id"] = *p.SystemID
	} else {
		m["system_id"] = nil
	}
	return m
}
