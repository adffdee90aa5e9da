package model

// RiskFactor is one identified risk driver for a specific plan.
type RiskFactor struct {
	Category    RiskCategory `json:"category"`
	Description string       `json:"description"`
	Severity    Severity     `json:"severity"`
	Likelihood  float64      `json:"likelihood"`
	Weight      float64      `json:"weight"`
}

// Score is the factor's contribution to its category aggregate:
// likelihood x weight x severity weight.
func (f RiskFactor) Score() float64 {
	return f.Likelihood * f.Weight * SeverityWeight[f.Severity]
}

// RiskAssessment is the structured risk classification for one plan.
// Computed fresh per plan; embedded into TrustEvent and
// GovernanceDecision records for audit, never mutated afterwards.
type RiskAssessment struct {
	OverallLevel   RiskLevel                  `json:"overall_level"`
	CategoryLevels map[RiskCategory]RiskLevel `json:"category_levels"`
	Factors        []RiskFactor               `json:"factors"`
	Mitigations    []string                   `json:"mitigations,omitempty"`
	Confidence     float64                    `json:"confidence"`
	ModelVersion   string                     `json:"model_version"`
}

// Touches reports whether the assessment identified any factor in the
// given category.
func (a RiskAssessment) Touches(c RiskCategory) bool {
	for _, f := range a.Factors {
		if f.Category == c {
			return true
		}
	}
	return false
}
