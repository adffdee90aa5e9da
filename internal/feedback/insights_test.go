package feedback

import (
	"fmt"
	"testing"

	"github.com/stewardhq/steward/internal/model"
	"github.com/stewardhq/steward/internal/store"
)

func seedDetailed(t *testing.T, st *store.Memory, org string, n, rating int, kind model.FeedbackKind, details model.FeedbackDetails) {
	t.Helper()
	for i := 0; i < n; i++ {
		fb := model.FeedbackEntry{
			ID:             fmt.Sprintf("fb-%s-%s-%d-%d", org, kind, rating, i),
			OrganizationID: org,
			Source:         model.SourceHuman,
			Kind:           kind,
			Rating:         rating,
			Details:        details,
			CreatedAt:      t0,
		}
		if err := st.SaveFeedback(fb); err != nil {
			t.Fatalf("SaveFeedback failed: %v", err)
		}
	}
}

func TestCategoryInsightForUnderperformance(t *testing.T) {
	l, st, rec, _ := newTestLoop()
	seedDetailed(t, st, "org-1", 5, 1, model.KindDecisionQuality, model.FeedbackDetails{Category: "discounting"})

	insights, err := l.GenerateInsights("org-1")
	if err != nil {
		t.Fatalf("GenerateInsights failed: %v", err)
	}
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	in := insights[0]
	if in.Type != model.InsightImprovement {
		t.Errorf("expected improvement insight, got %s", in.Type)
	}
	if in.EvidenceCount != 5 {
		t.Errorf("expected evidence count 5, got %d", in.EvidenceCount)
	}
	if in.ID == "" || in.CreatedAt.IsZero() {
		t.Error("expected id and timestamp set")
	}
	if len(in.Recommended) == 0 {
		t.Error("expected recommended actions")
	}

	persisted, _ := st.Insights("org-1")
	if len(persisted) != 1 {
		t.Errorf("expected 1 persisted insight, got %d", len(persisted))
	}
	if n := rec.CountByType(EventInsightGenerated); n != 1 {
		t.Errorf("expected 1 insight event, got %d", n)
	}
}

func TestCategoryInsightNeedsEnoughEvidence(t *testing.T) {
	l, st, _, _ := newTestLoop()
	seedDetailed(t, st, "org-1", 4, 1, model.KindDecisionQuality, model.FeedbackDetails{Category: "discounting"})

	insights, err := l.GenerateInsights("org-1")
	if err != nil {
		t.Fatalf("GenerateInsights failed: %v", err)
	}
	if len(insights) != 0 {
		t.Errorf("expected no insight below the evidence floor, got %d", len(insights))
	}
}

func TestCategoryInsightSkipsHealthyCategory(t *testing.T) {
	l, st, _, _ := newTestLoop()
	seedDetailed(t, st, "org-1", 6, 5, model.KindDecisionQuality, model.FeedbackDetails{Category: "discounting"})

	insights, err := l.GenerateInsights("org-1")
	if err != nil {
		t.Fatalf("GenerateInsights failed: %v", err)
	}
	if len(insights) != 0 {
		t.Errorf("expected no insight for a healthy category, got %d", len(insights))
	}
}

func TestTimingInsight(t *testing.T) {
	l, st, _, _ := newTestLoop()
	seedDetailed(t, st, "org-1", 10, 5, model.KindTimingAppropriateness, model.FeedbackDetails{})

	insights, err := l.GenerateInsights("org-1")
	if err != nil {
		t.Fatalf("GenerateInsights failed: %v", err)
	}
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	in := insights[0]
	if in.Type != model.InsightPattern {
		t.Errorf("expected pattern insight, got %s", in.Type)
	}
	if in.Confidence != 0.8 {
		t.Errorf("expected confidence 0.8, got %v", in.Confidence)
	}
	if in.EvidenceCount != 10 {
		t.Errorf("expected evidence count 10, got %d", in.EvidenceCount)
	}
}

func TestTimingInsightNeedsStrongPositiveRate(t *testing.T) {
	l, st, _, _ := newTestLoop()
	// 7/10 positive is exactly the threshold, which is not enough.
	seedDetailed(t, st, "org-1", 7, 5, model.KindTimingAppropriateness, model.FeedbackDetails{})
	seedDetailed(t, st, "org-1", 3, 2, model.KindTimingAppropriateness, model.FeedbackDetails{})

	insights, err := l.GenerateInsights("org-1")
	if err != nil {
		t.Fatalf("GenerateInsights failed: %v", err)
	}
	if len(insights) != 0 {
		t.Errorf("expected no timing insight at the threshold, got %d", len(insights))
	}
}

func TestHighValueCorrelationInsight(t *testing.T) {
	l, st, _, _ := newTestLoop()
	seedDetailed(t, st, "org-1", 1, 5, model.KindDecisionQuality, model.FeedbackDetails{
		ContextFactors: []string{"High Value Customer"},
	})

	insights, err := l.GenerateInsights("org-1")
	if err != nil {
		t.Fatalf("GenerateInsights failed: %v", err)
	}
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	if insights[0].Type != model.InsightCorrelation {
		t.Errorf("expected correlation insight, got %s", insights[0].Type)
	}
}

func TestNoInsightsWithoutFeedback(t *testing.T) {
	l, _, rec, _ := newTestLoop()

	insights, err := l.GenerateInsights("org-1")
	if err != nil {
		t.Fatalf("GenerateInsights failed: %v", err)
	}
	if insights != nil {
		t.Errorf("expected no insights, got %v", insights)
	}
	if n := rec.CountByType(EventInsightGenerated); n != 0 {
		t.Errorf("expected no insight events, got %d", n)
	}
}
