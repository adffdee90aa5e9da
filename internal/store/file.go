package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stewardhq/steward/internal/model"
)

// validKey matches alphanumeric, dash, underscore, and dot characters only.
var validKey = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// validateKey rejects keys that could cause path traversal.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key must not be empty")
	}
	if strings.Contains(key, "..") {
		return fmt.Errorf("key must not contain '..'")
	}
	if !validKey.MatchString(key) {
		return fmt.Errorf("key contains invalid characters: only alphanumeric, dash, underscore, and dot are allowed")
	}
	return nil
}

// File is a Store backed by a directory of JSON records, one file per
// record. Writes are atomic (tmp + rename). Suited to single-process
// embedded use such as the CLI.
type File struct {
	root string
	mu   sync.Mutex
}

// NewFile creates a file store rooted at dir.
func NewFile(dir string) (*File, error) {
	for _, sub := range []string{"events", "decisions", "configs", "feedback", "patterns", "insights", "snapshots", "tasks"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0700); err != nil {
			return nil, fmt.Errorf("cannot create store directory: %w", err)
		}
	}
	return &File{root: dir}, nil
}

// DefaultDir returns the default file store location.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "steward-store")
	}
	return filepath.Join(home, ".steward", "store")
}

// AppendEvent implements Store.
func (f *File) AppendEvent(ev model.TrustEvent) error {
	if err := validateKey(ev.OrganizationID); err != nil {
		return fmt.Errorf("invalid organization id: %w", err)
	}
	if err := validateKey(ev.ID); err != nil {
		return fmt.Errorf("invalid event id: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeAtomic(filepath.Join("events", ev.OrganizationID, ev.ID+".json"), ev)
}

// EventsSince implements Store.
func (f *File) EventsSince(organizationID string, since time.Time) ([]model.TrustEvent, error) {
	if err := validateKey(organizationID); err != nil {
		return nil, fmt.Errorf("invalid organization id: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.TrustEvent
	err := f.readDir(filepath.Join("events", organizationID), func(data []byte) error {
		var ev model.TrustEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return err
		}
		if !ev.Timestamp.Before(since) {
			out = append(out, ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// SaveDecision implements Store.
func (f *File) SaveDecision(d model.GovernanceDecision) error {
	if err := validateKey(d.ID); err != nil {
		return fmt.Errorf("invalid decision id: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeAtomic(filepath.Join("decisions", d.ID+".json"), d)
}

// Decision implements Store.
func (f *File) Decision(id string) (model.GovernanceDecision, error) {
	if err := validateKey(id); err != nil {
		return model.GovernanceDecision{}, fmt.Errorf("invalid decision id: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var d model.GovernanceDecision
	if err := f.readOne(filepath.Join("decisions", id+".json"), &d); err != nil {
		return model.GovernanceDecision{}, err
	}
	return d, nil
}

// UpdateDecision implements Store. The read-check-write sequence runs
// under the store lock, so only the first terminal transition wins.
func (f *File) UpdateDecision(d model.GovernanceDecision, from model.DecisionStatus) error {
	if err := validateKey(d.ID); err != nil {
		return fmt.Errorf("invalid decision id: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var cur model.GovernanceDecision
	if err := f.readOne(filepath.Join("decisions", d.ID+".json"), &cur); err != nil {
		return err
	}
	if cur.Status != from {
		return ErrStatusConflict
	}
	return f.writeAtomic(filepath.Join("decisions", d.ID+".json"), d)
}

// AwaitingDecisions implements Store.
func (f *File) AwaitingDecisions(organizationID string) ([]model.GovernanceDecision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.GovernanceDecision
	err := f.readDir("decisions", func(data []byte) error {
		var d model.GovernanceDecision
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}
		if (organizationID == "" || d.OrganizationID == organizationID) && d.Status.AwaitingHuman() {
			out = append(out, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// SaveConfig implements Store.
func (f *File) SaveConfig(cfg model.GovernanceConfig) error {
	if err := validateKey(cfg.OrganizationID); err != nil {
		return fmt.Errorf("invalid organization id: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeAtomic(filepath.Join("configs", cfg.OrganizationID+".json"), cfg)
}

// Config implements Store.
func (f *File) Config(organizationID string) (model.GovernanceConfig, error) {
	if err := validateKey(organizationID); err != nil {
		return model.GovernanceConfig{}, fmt.Errorf("invalid organization id: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var cfg model.GovernanceConfig
	if err := f.readOne(filepath.Join("configs", organizationID+".json"), &cfg); err != nil {
		return model.GovernanceConfig{}, err
	}
	return cfg, nil
}

// SaveFeedback implements Store.
func (f *File) SaveFeedback(fb model.FeedbackEntry) error {
	if err := validateKey(fb.ID); err != nil {
		return fmt.Errorf("invalid feedback id: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeAtomic(filepath.Join("feedback", fb.ID+".json"), fb)
}

// Feedback implements Store.
func (f *File) Feedback(id string) (model.FeedbackEntry, error) {
	if err := validateKey(id); err != nil {
		return model.FeedbackEntry{}, fmt.Errorf("invalid feedback id: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var fb model.FeedbackEntry
	if err := f.readOne(filepath.Join("feedback", id+".json"), &fb); err != nil {
		return model.FeedbackEntry{}, err
	}
	return fb, nil
}

// FeedbackSince implements Store.
func (f *File) FeedbackSince(organizationID string, since time.Time) ([]model.FeedbackEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.FeedbackEntry
	err := f.readDir("feedback", func(data []byte) error {
		var fb model.FeedbackEntry
		if err := json.Unmarshal(data, &fb); err != nil {
			return err
		}
		if fb.OrganizationID == organizationID && !fb.CreatedAt.Before(since) {
			out = append(out, fb)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// MarkProcessed implements Store.
func (f *File) MarkProcessed(id string) error {
	if err := validateKey(id); err != nil {
		return fmt.Errorf("invalid feedback id: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	path := filepath.Join("feedback", id+".json")
	var fb model.FeedbackEntry
	if err := f.readOne(path, &fb); err != nil {
		return err
	}
	fb.Processed = true
	return f.writeAtomic(path, fb)
}

// UpsertPattern implements Store.
func (f *File) UpsertPattern(organizationID, pattern string, confidenceDelta float64, seenAt time.Time) error {
	if err := validateKey(organizationID); err != nil {
		return fmt.Errorf("invalid organization id: %w", err)
	}
	if err := validateKey(pattern); err != nil {
		return fmt.Errorf("invalid pattern key: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	path := filepath.Join("patterns", organizationID, pattern+".json")
	var p model.KnowledgePattern
	if err := f.readOne(path, &p); err != nil && err != ErrNotFound {
		return err
	}
	p.OrganizationID = organizationID
	p.Pattern = pattern
	p.Count++
	p.Confidence += confidenceDelta
	if p.Confidence > 1 {
		p.Confidence = 1
	}
	p.LastSeen = seenAt
	return f.writeAtomic(path, p)
}

// Patterns implements Store.
func (f *File) Patterns(organizationID string) ([]model.KnowledgePattern, error) {
	if err := validateKey(organizationID); err != nil {
		return nil, fmt.Errorf("invalid organization id: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.KnowledgePattern
	err := f.readDir(filepath.Join("patterns", organizationID), func(data []byte) error {
		var p model.KnowledgePattern
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pattern < out[j].Pattern })
	return out, nil
}

// SaveInsight implements Store.
func (f *File) SaveInsight(in model.LearningInsight) error {
	if err := validateKey(in.OrganizationID); err != nil {
		return fmt.Errorf("invalid organization id: %w", err)
	}
	if err := validateKey(in.ID); err != nil {
		return fmt.Errorf("invalid insight id: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeAtomic(filepath.Join("insights", in.OrganizationID, in.ID+".json"), in)
}

// Insights implements Store.
func (f *File) Insights(organizationID string) ([]model.LearningInsight, error) {
	if err := validateKey(organizationID); err != nil {
		return nil, fmt.Errorf("invalid organization id: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.LearningInsight
	err := f.readDir(filepath.Join("insights", organizationID), func(data []byte) error {
		var in model.LearningInsight
		if err := json.Unmarshal(data, &in); err != nil {
			return err
		}
		out = append(out, in)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// SaveSnapshot implements Store.
func (f *File) SaveSnapshot(s model.ModelPerformance) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := fmt.Sprintf("%s_%s_%d.json", s.OrganizationID, s.Model, s.ComputedAt.UnixNano())
	return f.writeAtomic(filepath.Join("snapshots", name), s)
}

// SaveRetrainingTask implements Store.
func (f *File) SaveRetrainingTask(t model.RetrainingTask) error {
	if err := validateKey(t.ID); err != nil {
		return fmt.Errorf("invalid task id: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeAtomic(filepath.Join("tasks", t.ID+".json"), t)
}

// readOne reads and unmarshals one record. A missing file maps to
// ErrNotFound.
func (f *File) readOne(rel string, v any) error {
	data, err := os.ReadFile(filepath.Join(f.root, rel))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("read %s: %w", rel, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", rel, err)
	}
	return nil
}

// readDir applies fn to every .json record in a directory. A missing
// directory yields zero records, not an error.
func (f *File) readDir(rel string, fn func(data []byte) error) error {
	dir := filepath.Join(f.root, rel)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", rel, err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".tmp") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if err := fn(data); err != nil {
			return fmt.Errorf("parse %s: %w", filepath.Join(rel, name), err)
		}
	}
	return nil
}

// writeAtomic marshals v and writes it with tmp + rename to prevent
// partial reads.
func (f *File) writeAtomic(rel string, v any) error {
	path := filepath.Join(f.root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", rel, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return os.Rename(tmp, path)
}
