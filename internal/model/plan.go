package model

import "github.com/shopspring/decimal"

// Action is one atomic operation inside a proposed plan.
type Action struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params,omitempty"`
}

// PlanMetadata is the free-form plan context, normalized to typed fields.
type PlanMetadata struct {
	Confidence      float64         `json:"confidence"`
	EstimatedValue  decimal.Decimal `json:"estimated_value"`
	CustomerSegment string          `json:"customer_segment"`
}

// ActionPlan is a proposed ordered set of automated actions awaiting a
// governance verdict. Consumed, not owned: the engine never mutates it.
type ActionPlan struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	ContactID      string         `json:"contact_id"`
	Actions        []Action       `json:"actions"`
	RiskLevel      RiskLevel      `json:"risk_level,omitempty"`
	RawMetadata    map[string]any `json:"metadata,omitempty"`
	normalized     *PlanMetadata
}

// MetadataFromMap builds PlanMetadata from a raw map with defensive
// coercion. Unknown or mistyped values fall back to zero defaults.
func MetadataFromMap(m map[string]any) PlanMetadata {
	pm := PlanMetadata{EstimatedValue: decimal.Zero}
	if m == nil {
		return pm
	}

	pm.Confidence = toFloat(m["confidence"])

	switch v := m["estimated_value"].(type) {
	case float64:
		pm.EstimatedValue = decimal.NewFromFloat(v)
	case int:
		pm.EstimatedValue = decimal.NewFromInt(int64(v))
	case int64:
		pm.EstimatedValue = decimal.NewFromInt(v)
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			pm.EstimatedValue = d
		}
	}

	if s, ok := m["customer_segment"].(string); ok {
		pm.CustomerSegment = s
	}

	return pm
}

// Metadata returns the normalized plan metadata, computing it if needed.
func (p *ActionPlan) Metadata() PlanMetadata {
	if p.normalized != nil {
		return *p.normalized
	}
	pm := MetadataFromMap(p.RawMetadata)
	p.normalized = &pm
	return pm
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
