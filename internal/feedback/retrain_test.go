package feedback

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stewardhq/steward/internal/model"
	"github.com/stewardhq/steward/internal/store"
)

func seedFeedback(t *testing.T, st *store.Memory, org string, at time.Time, ratings ...int) {
	t.Helper()
	for i, r := range ratings {
		fb := model.FeedbackEntry{
			ID:             fmt.Sprintf("fb-%s-%d-%d", org, at.Unix(), i),
			OrganizationID: org,
			Source:         model.SourceHuman,
			Kind:           model.KindDecisionQuality,
			Rating:         r,
			CreatedAt:      at,
		}
		if err := st.SaveFeedback(fb); err != nil {
			t.Fatalf("SaveFeedback failed: %v", err)
		}
	}
}

func TestRetrainingLowSatisfaction(t *testing.T) {
	l, st, rec, clk := newTestLoop()
	// Average rating 2.5 with a 40% positive ratio.
	seedFeedback(t, st, "org-1", clk.Now(), 4, 4, 4, 4, 2, 2, 2, 1, 1, 1)

	tasks, err := l.EvaluateRetrainingNeed("org-1")
	if err != nil {
		t.Fatalf("EvaluateRetrainingNeed failed: %v", err)
	}
	if len(tasks) != len(model.ModelTypes) {
		t.Fatalf("expected a task per model, got %d", len(tasks))
	}
	for _, task := range tasks {
		if !strings.Contains(task.Reason, "low user satisfaction") {
			t.Errorf("expected satisfaction reason, got %q", task.Reason)
		}
		if task.Priority != model.PriorityMedium {
			t.Errorf("expected medium priority, got %s", task.Priority)
		}
	}

	if got := st.RetrainingTasks(); len(got) != len(tasks) {
		t.Errorf("expected %d persisted tasks, got %d", len(tasks), len(got))
	}
	if n := rec.CountByType(EventRetrainingTriggered); n != len(tasks) {
		t.Errorf("expected %d retraining events, got %d", len(tasks), n)
	}
}

func TestRetrainingAccuracyDrop(t *testing.T) {
	l, st, _, clk := newTestLoop()
	// Average rating 3.8 but only 40% positive.
	seedFeedback(t, st, "org-1", clk.Now(), 5, 5, 5, 5, 3, 3, 3, 3, 3, 3)

	tasks, err := l.EvaluateRetrainingNeed("org-1")
	if err != nil {
		t.Fatalf("EvaluateRetrainingNeed failed: %v", err)
	}
	if len(tasks) == 0 {
		t.Fatal("expected retraining tasks for poor accuracy")
	}
	if !strings.Contains(tasks[0].Reason, "accuracy drop") {
		t.Errorf("expected accuracy reason, got %q", tasks[0].Reason)
	}
	if tasks[0].Priority != model.PriorityHigh {
		t.Errorf("expected high priority, got %s", tasks[0].Priority)
	}
}

func TestRetrainingHealthyWindow(t *testing.T) {
	l, st, _, clk := newTestLoop()
	seedFeedback(t, st, "org-1", clk.Now(), 5, 5, 4, 5, 4)

	tasks, err := l.EvaluateRetrainingNeed("org-1")
	if err != nil {
		t.Fatalf("EvaluateRetrainingNeed failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected no tasks for a healthy window, got %d", len(tasks))
	}

	// Snapshots are still recorded for every model.
	if got := st.Snapshots(); len(got) != len(model.ModelTypes) {
		t.Errorf("expected %d snapshots, got %d", len(model.ModelTypes), len(got))
	}
}

func TestRetrainingDecliningTrend(t *testing.T) {
	l, st, _, clk := newTestLoop()
	// First half of the 7-day window positive, second half negative.
	seedFeedback(t, st, "org-1", clk.Now().Add(-5*24*time.Hour), 5, 5, 5, 5, 5)
	seedFeedback(t, st, "org-1", clk.Now().Add(-24*time.Hour), 1, 1, 1, 1, 1)

	tasks, err := l.EvaluateRetrainingNeed("org-1")
	if err != nil {
		t.Fatalf("EvaluateRetrainingNeed failed: %v", err)
	}
	if len(tasks) == 0 {
		t.Fatal("expected retraining tasks")
	}
	if !strings.Contains(tasks[0].Reason, "declining trend") {
		t.Errorf("expected declining trend noted, got %q", tasks[0].Reason)
	}

	snaps := st.Snapshots()
	if len(snaps) == 0 {
		t.Fatal("expected snapshots")
	}
	if snaps[0].Trend != model.TrendDeclining {
		t.Errorf("expected declining trend, got %s", snaps[0].Trend)
	}
}

func TestRetrainingEmptyWindow(t *testing.T) {
	l, st, _, _ := newTestLoop()

	tasks, err := l.EvaluateRetrainingNeed("org-1")
	if err != nil {
		t.Fatalf("EvaluateRetrainingNeed failed: %v", err)
	}
	if tasks != nil {
		t.Errorf("expected no tasks without feedback, got %v", tasks)
	}
	if got := st.Snapshots(); len(got) != 0 {
		t.Errorf("expected no snapshots without feedback, got %d", len(got))
	}
}

func TestRetrainingIgnoresOldFeedback(t *testing.T) {
	l, st, _, clk := newTestLoop()
	seedFeedback(t, st, "org-1", clk.Now().Add(-10*24*time.Hour), 1, 1, 1, 1)

	tasks, err := l.EvaluateRetrainingNeed("org-1")
	if err != nil {
		t.Fatalf("EvaluateRetrainingNeed failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected feedback outside the 7-day window ignored, got %d tasks", len(tasks))
	}
}
