package feedback

import (
	"strings"

	"github.com/samber/lo"

	"github.com/stewardhq/steward/internal/model"
)

// extractPatterns derives the knowledge-base tags one feedback entry
// reinforces: a polarity tag per feedback kind, category-specific tags
// for timing and channel feedback, and one tag per context factor.
func (l *Loop) extractPatterns(fb model.FeedbackEntry) []string {
	var patterns []string

	if fb.Positive() {
		patterns = append(patterns, "success_"+string(fb.Kind))
	} else if fb.Negative() {
		patterns = append(patterns, "failure_"+string(fb.Kind))
	}

	category := strings.ToLower(fb.Details.Category)
	if strings.Contains(category, "timing") {
		patterns = append(patterns, "timing_optimization_needed")
	}
	if strings.Contains(category, "channel") {
		patterns = append(patterns, "channel_optimization_needed")
	}

	for _, factor := range fb.Details.ContextFactors {
		if p := normalizePattern(factor); p != "" {
			patterns = append(patterns, p)
		}
	}

	return lo.Uniq(patterns)
}

// normalizePattern lowercases a free-text factor and maps spaces to
// underscores, dropping anything that cannot appear in a pattern key.
func normalizePattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}
