// Package baseline snapshots known issues so existing debt can be accepted
// while new findings still fail the run.
package baseline

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Baseline is a snapshot of accepted issue fingerprints.
type Baseline struct {
	Version      string   `json:"version"`
	CreatedAt    string   `json:"created_at"`
	Fingerprints []string `json:"fingerprints"`
	index        map[string]bool
}

// Entry is the part of a lint message that participates in its fingerprint.
// Byte offsets are deliberately excluded: they shift with every unrelated
// edit, while file/rule/path stay stable.
type Entry struct {
	File   string
	RuleID string
	Path   string
}

// Create builds a baseline from a list of issues.
func Create(entries []Entry) *Baseline {
	fingerprints := make([]string, 0, len(entries))
	index := make(map[string]bool)
	for _, e := range entries {
		fp := fingerprint(e)
		if !index[fp] {
			fingerprints = append(fingerprints, fp)
			index[fp] = true
		}
	}
	sort.Strings(fingerprints)
	return &Baseline{Version: "1.0", Fingerprints: fingerprints, index: index}
}

// Load reads a baseline JSON file.
func Load(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline file: %w", err)
	}
	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse baseline file: %w", err)
	}
	b.index = make(map[string]bool, len(b.Fingerprints))
	for _, fp := range b.Fingerprints {
		b.index[fp] = true
	}
	return &b, nil
}

// Save writes the baseline JSON file.
func (b *Baseline) Save(path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal baseline: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write baseline file: %w", err)
	}
	return nil
}

// IsKnown reports whether an issue is already accepted in the baseline.
func (b *Baseline) IsKnown(e Entry) bool {
	if b == nil || b.index == nil {
		return false
	}
	return b.index[fingerprint(e)]
}

func fingerprint(e Entry) string {
	data := fmt.Sprintf("%s|%s|%s", e.File, e.RuleID, e.Path)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
