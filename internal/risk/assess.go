// Package risk implements the risk assessor: a pure, deterministic
// function from an action plan to a structured, weighted risk
// classification. No shared state; safe for concurrent use.
package risk

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/stewardhq/steward/internal/config"
	"github.com/stewardhq/steward/internal/model"
)

// ModelVersion tags every assessment with the assessor revision that
// produced it.
const ModelVersion = "risk-assessor/v1"

// factorTemplate is the fixed severity/likelihood/weight emitted for
// one category classification.
type factorTemplate struct {
	severity   model.Severity
	likelihood float64
	weight     float64
	describe   string
}

// categoryRule maps action-type keywords to a category and its factor
// template. Rules are evaluated in order for each action; every match
// emits a factor.
type categoryRule struct {
	category model.RiskCategory
	keywords []string
	template factorTemplate
}

var categoryRules = []categoryRule{
	{
		category: model.CategoryFinancial,
		keywords: []string{"payment", "refund", "charge", "invoice", "discount"},
		template: factorTemplate{
			severity:   model.SeverityHigh,
			likelihood: 0.6,
			weight:     0.9,
			describe:   "action %q moves money or changes billing",
		},
	},
	{
		category: model.CategoryCustomer,
		keywords: []string{"email", "sms", "whatsapp", "message", "call"},
		template: factorTemplate{
			severity:   model.SeverityMedium,
			likelihood: 0.5,
			weight:     0.6,
			describe:   "action %q contacts the customer directly",
		},
	},
	{
		category: model.CategoryData,
		keywords: []string{"update", "delete", "merge", "import"},
		template: factorTemplate{
			severity:   model.SeverityHigh,
			likelihood: 0.5,
			weight:     0.8,
			describe:   "action %q mutates stored records",
		},
	},
}

// wellKnownActions is the allow-list of action types the assessor has
// seen enough of to be confident about.
var wellKnownActions = []string{
	"SEND_EMAIL", "SEND_SMS", "SEND_WHATSAPP", "ADD_TAG", "REMOVE_TAG",
	"UPDATE_CONTACT", "CREATE_TASK", "CREATE_NOTE", "PROCESS_PAYMENT",
	"ISSUE_REFUND", "APPLY_DISCOUNT", "SCHEDULE_APPOINTMENT",
}

// highValueSegments flags customer segments whose mishandling is a
// reputation risk.
var highValueSegments = []string{"high_value", "vip", "enterprise"}

// Assessor assesses action plans. Deterministic given the same plan and
// parameter set.
type Assessor struct {
	params config.RiskParams
}

// NewAssessor creates an Assessor with the given risk parameters.
func NewAssessor(params config.RiskParams) *Assessor {
	return &Assessor{params: params}
}

// Assess produces the risk assessment for one plan. An empty action
// list yields zero factors and low risk — malformed input is not an
// error here.
func (a *Assessor) Assess(plan *model.ActionPlan) model.RiskAssessment {
	factors := a.classify(plan)
	factors = append(factors, a.structural(plan)...)

	byCategory := lo.GroupBy(factors, func(f model.RiskFactor) model.RiskCategory {
		return f.Category
	})

	// Category levels cover all seven categories; unassessed ones are
	// explicitly low.
	levels := make(map[model.RiskCategory]model.RiskLevel, len(model.RiskCategories))
	scores := make([]float64, 0, len(byCategory))
	for _, c := range model.RiskCategories {
		fs, ok := byCategory[c]
		if !ok {
			levels[c] = model.RiskLow
			continue
		}
		score := aggregateCategory(fs)
		levels[c] = model.RiskLevelForScore(score)
		scores = append(scores, score)
	}

	overall := model.RiskLow
	if len(scores) > 0 {
		maxScore := lo.Max(scores)
		avgScore := lo.Sum(scores) / float64(len(scores))
		overall = model.RiskLevelForScore(0.7*maxScore + 0.3*avgScore)
	}

	return model.RiskAssessment{
		OverallLevel:   overall,
		CategoryLevels: levels,
		Factors:        factors,
		Mitigations:    mitigationsFor(factors),
		Confidence:     a.confidence(plan, factors),
		ModelVersion:   ModelVersion,
	}
}

// classify emits one factor per (action, matching category rule).
func (a *Assessor) classify(plan *model.ActionPlan) []model.RiskFactor {
	var factors []model.RiskFactor
	for _, action := range plan.Actions {
		typ := strings.ToLower(action.Type)
		for _, rule := range categoryRules {
			for _, kw := range rule.keywords {
				if strings.Contains(typ, kw) {
					factors = append(factors, model.RiskFactor{
						Category:    rule.category,
						Description: fmt.Sprintf(rule.template.describe, action.Type),
						Severity:    rule.template.severity,
						Likelihood:  rule.template.likelihood,
						Weight:      rule.template.weight,
					})
					break
				}
			}
		}
	}
	return factors
}

// structural adds plan-shape factors that no single action carries.
func (a *Assessor) structural(plan *model.ActionPlan) []model.RiskFactor {
	var factors []model.RiskFactor

	if len(plan.Actions) > a.params.LongPlanActions {
		factors = append(factors, model.RiskFactor{
			Category:    model.CategoryOperational,
			Description: fmt.Sprintf("plan has %d actions; long chains compound execution errors", len(plan.Actions)),
			Severity:    model.SeverityMedium,
			Likelihood:  0.6,
			Weight:      0.5,
		})
	}

	segment := strings.ToLower(plan.Metadata().CustomerSegment)
	if lo.Contains(highValueSegments, segment) {
		factors = append(factors, model.RiskFactor{
			Category:    model.CategoryReputation,
			Description: fmt.Sprintf("target is in the flagged %q customer segment", segment),
			Severity:    model.SeverityHigh,
			Likelihood:  0.4,
			Weight:      0.7,
		})
	}

	return factors
}

// aggregateCategory computes sum(likelihood x weight x severityWeight)
// divided by the factor count.
func aggregateCategory(factors []model.RiskFactor) float64 {
	if len(factors) == 0 {
		return 0
	}
	total := lo.SumBy(factors, func(f model.RiskFactor) float64 { return f.Score() })
	return total / float64(len(factors))
}

// confidence starts at the base, grows with each factor beyond the
// first (capped), and with the fraction of well-known action types.
func (a *Assessor) confidence(plan *model.ActionPlan, factors []model.RiskFactor) float64 {
	conf := a.params.BaseConfidence

	if len(factors) > 1 {
		bonus := float64(len(factors)-1) * a.params.PerFactorBonus
		if bonus > a.params.FactorBonusCap {
			bonus = a.params.FactorBonusCap
		}
		conf += bonus
	}

	if len(plan.Actions) > 0 {
		known := lo.CountBy(plan.Actions, func(ac model.Action) bool {
			return lo.Contains(wellKnownActions, strings.ToUpper(ac.Type))
		})
		conf += a.params.KnownActionBoost * float64(known) / float64(len(plan.Actions))
	}

	if conf > 1 {
		conf = 1
	}
	return conf
}
