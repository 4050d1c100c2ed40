package baseline

import (
	"path/filepath"
	"testing"
)

func TestCreateDeduplicates(t *testing.T) {
	entries := []Entry{
		{File: "tools/rg.atip.json", RuleID: "required-fields", Path: "$.commands[0].description"},
		{File: "tools/rg.atip.json", RuleID: "effects-presence", Path: "$.commands[1].effects"},
		// Duplicate issue, should collapse to one fingerprint
		{File: "tools/rg.atip.json", RuleID: "required-fields", Path: "$.commands[0].description"},
	}

	b := Create(entries)

	if b.Version != "1.0" {
		t.Errorf("expected version 1.0, got %s", b.Version)
	}
	if len(b.Fingerprints) != 2 {
		t.Errorf("expected 2 fingerprints after dedup, got %d", len(b.Fingerprints))
	}
	for _, e := range entries {
		if !b.IsKnown(e) {
			t.Errorf("entry %+v should be known", e)
		}
	}
}

func TestIsKnownDistinguishesFields(t *testing.T) {
	base := Create([]Entry{
		{File: "a.atip.json", RuleID: "required-fields", Path: "$.description"},
	})

	tests := []struct {
		name  string
		entry Entry
		known bool
	}{
		{"exact match", Entry{File: "a.atip.json", RuleID: "required-fields", Path: "$.description"}, true},
		{"different file", Entry{File: "b.atip.json", RuleID: "required-fields", Path: "$.description"}, false},
		{"different rule", Entry{File: "a.atip.json", RuleID: "effects-presence", Path: "$.description"}, false},
		{"different path", Entry{File: "a.atip.json", RuleID: "required-fields", Path: "$.version"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.IsKnown(tt.entry); got != tt.known {
				t.Errorf("IsKnown(%+v) = %v, want %v", tt.entry, got, tt.known)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	entries := []Entry{
		{File: "tools/jq.atip.json", RuleID: "duplicate-flags", Path: "$.commands[2].options[1].flags"},
		{File: "tools/jq.atip.json", RuleID: "description-quality", Path: "$.description"},
	}
	original := Create(entries)

	path := filepath.Join(t.TempDir(), "baseline.json")
	if err := original.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Fingerprints) != len(original.Fingerprints) {
		t.Fatalf("expected %d fingerprints, got %d", len(original.Fingerprints), len(loaded.Fingerprints))
	}
	for _, e := range entries {
		if !loaded.IsKnown(e) {
			t.Errorf("loaded baseline should know %+v", e)
		}
	}
	if loaded.IsKnown(Entry{File: "new.atip.json", RuleID: "duplicate-flags", Path: "$"}) {
		t.Error("loaded baseline should not know a fresh entry")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing baseline file")
	}
}

func TestNilBaselineKnowsNothing(t *testing.T) {
	var b *Baseline
	if b.IsKnown(Entry{File: "x", RuleID: "y", Path: "z"}) {
		t.Error("nil baseline must report unknown")
	}
}
