package store

import (
	"sort"
	"sync"
	"time"

	"github.com/stewardhq/steward/internal/model"
)

// Memory is an in-process Store. It is the default backend for tests
// and embedded use; everything is guarded by a single mutex since the
// core's access pattern is low-frequency and short-lived.
type Memory struct {
	mu        sync.Mutex
	events    map[string][]model.TrustEvent // keyed by organization id
	decisions map[string]model.GovernanceDecision
	configs   map[string]model.GovernanceConfig
	feedback  map[string]model.FeedbackEntry
	patterns  map[string]map[string]model.KnowledgePattern // org -> pattern
	insights  map[string][]model.LearningInsight
	snapshots []model.ModelPerformance
	tasks     []model.RetrainingTask
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		events:    make(map[string][]model.TrustEvent),
		decisions: make(map[string]model.GovernanceDecision),
		configs:   make(map[string]model.GovernanceConfig),
		feedback:  make(map[string]model.FeedbackEntry),
		patterns:  make(map[string]map[string]model.KnowledgePattern),
		insights:  make(map[string][]model.LearningInsight),
	}
}

// AppendEvent implements Store.
func (m *Memory) AppendEvent(ev model.TrustEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[ev.OrganizationID] = append(m.events[ev.OrganizationID], ev)
	return nil
}

// EventsSince implements Store.
func (m *Memory) EventsSince(organizationID string, since time.Time) ([]model.TrustEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.TrustEvent
	for _, ev := range m.events[organizationID] {
		if !ev.Timestamp.Before(since) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// SaveDecision implements Store.
func (m *Memory) SaveDecision(d model.GovernanceDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions[d.ID] = d
	return nil
}

// Decision implements Store.
func (m *Memory) Decision(id string) (model.GovernanceDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.decisions[id]
	if !ok {
		return model.GovernanceDecision{}, ErrNotFound
	}
	return d, nil
}

// UpdateDecision implements Store. The status check and write happen
// under one lock, so concurrent terminal transitions serialize and the
// loser observes ErrStatusConflict.
func (m *Memory) UpdateDecision(d model.GovernanceDecision, from model.DecisionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.decisions[d.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Status != from {
		return ErrStatusConflict
	}
	m.decisions[d.ID] = d
	return nil
}

// AwaitingDecisions implements Store.
func (m *Memory) AwaitingDecisions(organizationID string) ([]model.GovernanceDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.GovernanceDecision
	for _, d := range m.decisions {
		if (organizationID == "" || d.OrganizationID == organizationID) && d.Status.AwaitingHuman() {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// SaveConfig implements Store.
func (m *Memory) SaveConfig(cfg model.GovernanceConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[cfg.OrganizationID] = cfg
	return nil
}

// Config implements Store.
func (m *Memory) Config(organizationID string) (model.GovernanceConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, ok := m.configs[organizationID]
	if !ok {
		return model.GovernanceConfig{}, ErrNotFound
	}
	return cfg, nil
}

// SaveFeedback implements Store.
func (m *Memory) SaveFeedback(fb model.FeedbackEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback[fb.ID] = fb
	return nil
}

// Feedback implements Store.
func (m *Memory) Feedback(id string) (model.FeedbackEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fb, ok := m.feedback[id]
	if !ok {
		return model.FeedbackEntry{}, ErrNotFound
	}
	return fb, nil
}

// FeedbackSince implements Store.
func (m *Memory) FeedbackSince(organizationID string, since time.Time) ([]model.FeedbackEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.FeedbackEntry
	for _, fb := range m.feedback {
		if fb.OrganizationID == organizationID && !fb.CreatedAt.Before(since) {
			out = append(out, fb)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// MarkProcessed implements Store.
func (m *Memory) MarkProcessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	fb, ok := m.feedback[id]
	if !ok {
		return ErrNotFound
	}
	fb.Processed = true
	m.feedback[id] = fb
	return nil
}

// UpsertPattern implements Store.
func (m *Memory) UpsertPattern(organizationID, pattern string, confidenceDelta float64, seenAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byOrg, ok := m.patterns[organizationID]
	if !ok {
		byOrg = make(map[string]model.KnowledgePattern)
		m.patterns[organizationID] = byOrg
	}

	p := byOrg[pattern]
	p.OrganizationID = organizationID
	p.Pattern = pattern
	p.Count++
	p.Confidence += confidenceDelta
	if p.Confidence > 1 {
		p.Confidence = 1
	}
	p.LastSeen = seenAt
	byOrg[pattern] = p
	return nil
}

// Patterns implements Store.
func (m *Memory) Patterns(organizationID string) ([]model.KnowledgePattern, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.KnowledgePattern
	for _, p := range m.patterns[organizationID] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pattern < out[j].Pattern })
	return out, nil
}

// SaveInsight implements Store.
func (m *Memory) SaveInsight(in model.LearningInsight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insights[in.OrganizationID] = append(m.insights[in.OrganizationID], in)
	return nil
}

// Insights implements Store.
func (m *Memory) Insights(organizationID string) ([]model.LearningInsight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.LearningInsight, len(m.insights[organizationID]))
	copy(out, m.insights[organizationID])
	return out, nil
}

// SaveSnapshot implements Store.
func (m *Memory) SaveSnapshot(s model.ModelPerformance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, s)
	return nil
}

// SaveRetrainingTask implements Store.
func (m *Memory) SaveRetrainingTask(t model.RetrainingTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, t)
	return nil
}

// Snapshots returns all saved performance snapshots (test helper).
func (m *Memory) Snapshots() []model.ModelPerformance {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ModelPerformance, len(m.snapshots))
	copy(out, m.snapshots)
	return out
}

// RetrainingTasks returns all saved retraining tasks (test helper).
func (m *Memory) RetrainingTasks() []model.RetrainingTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.RetrainingTask, len(m.tasks))
	copy(out, m.tasks)
	return out
}
