package store

import (
	"testing"
	"time"

	"github.com/stewardhq/steward/internal/model"
)

func newFileStore(t *testing.T) *File {
	t.Helper()
	f, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	return f
}

func TestFileDecisionRoundtrip(t *testing.T) {
	f := newFileStore(t)
	d := model.GovernanceDecision{
		ID:             "d1",
		OrganizationID: "org-1",
		Status:         model.StatusPending,
		RiskLevel:      model.RiskMedium,
		CreatedAt:      t0,
		ExpiresAt:      t0.Add(2 * time.Hour),
	}
	if err := f.SaveDecision(d); err != nil {
		t.Fatalf("SaveDecision failed: %v", err)
	}

	got, err := f.Decision("d1")
	if err != nil {
		t.Fatalf("Decision failed: %v", err)
	}
	if got.Status != model.StatusPending || got.RiskLevel != model.RiskMedium {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
	if !got.ExpiresAt.Equal(d.ExpiresAt) {
		t.Errorf("expected expiry %s, got %s", d.ExpiresAt, got.ExpiresAt)
	}

	if _, err := f.Decision("missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFileUpdateDecisionConflict(t *testing.T) {
	f := newFileStore(t)
	d := model.GovernanceDecision{ID: "d1", Status: model.StatusPending}
	f.SaveDecision(d)

	d.Status = model.StatusApproved
	if err := f.UpdateDecision(d, model.StatusPending); err != nil {
		t.Fatalf("first transition failed: %v", err)
	}

	d.Status = model.StatusExpired
	if err := f.UpdateDecision(d, model.StatusPending); err != ErrStatusConflict {
		t.Errorf("expected ErrStatusConflict, got %v", err)
	}
}

func TestFileRejectsTraversalKeys(t *testing.T) {
	f := newFileStore(t)
	bad := []string{"", "../escape", "a/b", "a..b"}
	for _, id := range bad {
		if err := f.SaveDecision(model.GovernanceDecision{ID: id}); err == nil {
			t.Errorf("expected rejection of key %q", id)
		}
	}
}

func TestFileEventsPerOrganization(t *testing.T) {
	f := newFileStore(t)
	f.AppendEvent(model.TrustEvent{ID: "e1", OrganizationID: "org-a", Timestamp: t0})
	f.AppendEvent(model.TrustEvent{ID: "e2", OrganizationID: "org-a", Timestamp: t0.Add(time.Hour)})
	f.AppendEvent(model.TrustEvent{ID: "e3", OrganizationID: "org-b", Timestamp: t0})

	got, err := f.EventsSince("org-a", time.Time{})
	if err != nil {
		t.Fatalf("EventsSince failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events for org-a, got %d", len(got))
	}
	if got[0].ID != "e1" || got[1].ID != "e2" {
		t.Errorf("expected chronological order, got %s,%s", got[0].ID, got[1].ID)
	}

	// An organization with no events reads as empty, not an error.
	none, err := f.EventsSince("org-c", time.Time{})
	if err != nil {
		t.Fatalf("EventsSince failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no events, got %d", len(none))
	}
}

func TestFileFeedbackLifecycle(t *testing.T) {
	f := newFileStore(t)
	fb := model.FeedbackEntry{ID: "f1", OrganizationID: "org-1", Rating: 4, CreatedAt: t0}
	if err := f.SaveFeedback(fb); err != nil {
		t.Fatalf("SaveFeedback failed: %v", err)
	}

	if err := f.MarkProcessed("f1"); err != nil {
		t.Fatalf("MarkProcessed failed: %v", err)
	}
	got, err := f.Feedback("f1")
	if err != nil {
		t.Fatalf("Feedback failed: %v", err)
	}
	if !got.Processed {
		t.Error("expected processed flag persisted")
	}

	since, _ := f.FeedbackSince("org-1", t0.Add(-time.Hour))
	if len(since) != 1 {
		t.Errorf("expected 1 entry in window, got %d", len(since))
	}
	since, _ = f.FeedbackSince("org-1", t0.Add(time.Hour))
	if len(since) != 0 {
		t.Errorf("expected entry outside window excluded, got %d", len(since))
	}
}

func TestFileUpsertPatternAccumulates(t *testing.T) {
	f := newFileStore(t)
	f.UpsertPattern("org-1", "timing_optimization_needed", 0.08, t0)
	f.UpsertPattern("org-1", "timing_optimization_needed", 0.08, t0.Add(time.Hour))

	got, err := f.Patterns("org-1")
	if err != nil {
		t.Fatalf("Patterns failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(got))
	}
	if got[0].Count != 2 {
		t.Errorf("expected count 2, got %d", got[0].Count)
	}
}

func TestFileConfigRoundtrip(t *testing.T) {
	f := newFileStore(t)
	cfg := model.DefaultGovernanceConfig("org-1")
	cfg.Mode = model.ModeSemiAutonomous
	if err := f.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	got, err := f.Config("org-1")
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	if got.Mode != model.ModeSemiAutonomous {
		t.Errorf("expected semi_autonomous, got %s", got.Mode)
	}
	if !got.RequireApproval.ValueThreshold.Equal(cfg.RequireApproval.ValueThreshold) {
		t.Errorf("expected value threshold %s, got %s", cfg.RequireApproval.ValueThreshold, got.RequireApproval.ValueThreshold)
	}
}

func TestFileInsightsSorted(t *testing.T) {
	f := newFileStore(t)
	f.SaveInsight(model.LearningInsight{ID: "i2", OrganizationID: "org-1", CreatedAt: t0.Add(time.Hour)})
	f.SaveInsight(model.LearningInsight{ID: "i1", OrganizationID: "org-1", CreatedAt: t0})

	got, err := f.Insights("org-1")
	if err != nil {
		t.Fatalf("Insights failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 insights, got %d", len(got))
	}
	if got[0].ID != "i1" {
		t.Errorf("expected chronological order, got %s first", got[0].ID)
	}
}
