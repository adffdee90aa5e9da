// Package store defines the persistence boundary for the governance
// core. The store is an opaque repository keyed by organization and
// record id; the engine never assumes anything about the backend.
package store

import (
	"errors"
	"time"

	"github.com/stewardhq/steward/internal/model"
)

// ErrNotFound is returned when a record id or organization key does not
// exist in the store.
var ErrNotFound = errors.New("record not found")

// ErrStatusConflict is returned by UpdateDecision when the stored
// decision is no longer in the expected prior status. It enforces the
// single-writer-per-record invariant: only the first terminal
// transition wins.
var ErrStatusConflict = errors.New("decision status changed concurrently")

// Store is the persistence capability the governance core depends on.
// All operations are fallible; implementations wrap backend failures in
// ordinary errors the callers propagate.
type Store interface {
	// Trust events (append-only).
	AppendEvent(ev model.TrustEvent) error
	EventsSince(organizationID string, since time.Time) ([]model.TrustEvent, error)

	// Governance decisions.
	SaveDecision(d model.GovernanceDecision) error
	Decision(id string) (model.GovernanceDecision, error)
	// UpdateDecision persists d only if the stored record is still in
	// status from; otherwise it returns ErrStatusConflict.
	UpdateDecision(d model.GovernanceDecision, from model.DecisionStatus) error
	// AwaitingDecisions lists pending and escalated decisions. An empty
	// organizationID matches all organizations (used by the expiry sweep).
	AwaitingDecisions(organizationID string) ([]model.GovernanceDecision, error)

	// Governance config.
	SaveConfig(cfg model.GovernanceConfig) error
	Config(organizationID string) (model.GovernanceConfig, error)

	// Feedback.
	SaveFeedback(fb model.FeedbackEntry) error
	Feedback(id string) (model.FeedbackEntry, error)
	FeedbackSince(organizationID string, since time.Time) ([]model.FeedbackEntry, error)
	MarkProcessed(id string) error

	// Knowledge base.
	UpsertPattern(organizationID, pattern string, confidenceDelta float64, seenAt time.Time) error
	Patterns(organizationID string) ([]model.KnowledgePattern, error)

	// Learning artifacts (best-effort callers).
	SaveInsight(in model.LearningInsight) error
	Insights(organizationID string) ([]model.LearningInsight, error)
	SaveSnapshot(s model.ModelPerformance) error
	SaveRetrainingTask(t model.RetrainingTask) error
}
