package risk

import (
	"github.com/samber/lo"

	"github.com/stewardhq/steward/internal/model"
)

// mitigationTable maps a category to the suggested mitigation for any
// high or critical factor in it.
var mitigationTable = map[model.RiskCategory]string{
	model.CategoryFinancial:   "require human review for monetary actions above the configured value threshold",
	model.CategoryCustomer:    "stagger outbound messages and honor contact frequency caps",
	model.CategoryData:        "snapshot affected records before mutation so changes can be rolled back",
	model.CategorySystem:      "run the plan against a sandbox environment before production execution",
	model.CategoryReputation:  "route actions on flagged segments through an account owner",
	model.CategoryCompliance:  "attach the relevant consent or policy reference to the audit record",
	model.CategoryOperational: "split long plans into smaller batches with checkpoints between them",
}

// mitigationsFor returns deduplicated suggestions for every high or
// critical factor.
func mitigationsFor(factors []model.RiskFactor) []string {
	var out []string
	for _, f := range factors {
		if f.Severity != model.SeverityHigh && f.Severity != model.SeverityCritical {
			continue
		}
		if m, ok := mitigationTable[f.Category]; ok {
			out = append(out, m)
		}
	}
	return lo.Uniq(out)
}
