package lint

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/atiptools/atiplint/internal/baseline"
	"github.com/atiptools/atiplint/internal/config"
)

func newEngine(t *testing.T, fc *config.FileConfig) *Engine {
	t.Helper()
	resolved, err := config.Resolve(fc)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	e, err := New(resolved)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func recommended(t *testing.T) *Engine {
	return newEngine(t, &config.FileConfig{Extends: "recommended"})
}

const cleanDoc = `{
	"name": "demo",
	"version": "1.0.0",
	"description": "A demonstration tool used in tests.",
	"commands": {
		"run": {
			"description": "Run the demonstration end to end.",
			"effects": {"idempotent": true}
		}
	}
}`

func TestLintTextCleanDocument(t *testing.T) {
	r := recommended(t).LintText("demo.atip.json", cleanDoc, Options{})
	if r.Fatal {
		t.Fatalf("unexpected fatal: %v", r.Messages)
	}
	if len(r.Messages) != 0 {
		t.Errorf("clean document produced findings: %v", r.Messages)
	}
	if r.ErrorCount != 0 || r.WarningCount != 0 {
		t.Errorf("counts = %d/%d", r.ErrorCount, r.WarningCount)
	}
}

func TestLintTextParseFailure(t *testing.T) {
	r := recommended(t).LintText("broken.atip.json", `{"name": `, Options{})
	if !r.Fatal {
		t.Fatal("parse failure must be fatal")
	}
	if len(r.Messages) != 1 {
		t.Fatalf("got %d messages", len(r.Messages))
	}
	m := r.Messages[0]
	if m.RuleID != ParseRuleID || m.Severity != config.SeverityError {
		t.Errorf("message = %+v", m)
	}
	if !strings.Contains(m.Message, "parse failure") {
		t.Errorf("message text = %q", m.Message)
	}
	if r.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d", r.ErrorCount)
	}
}

func TestLintTextLeadingZeroNumberIsParseFailure(t *testing.T) {
	r := recommended(t).LintText("z.atip.json", `{"name": "x", "count": 01}`, Options{})
	if !r.Fatal {
		t.Fatalf("leading-zero number must be fatal, got %v", r.Messages)
	}
	if len(r.Messages) != 1 || r.Messages[0].RuleID != ParseRuleID {
		t.Fatalf("messages = %+v", r.Messages)
	}
	if !strings.Contains(r.Messages[0].Message, "parse failure") {
		t.Errorf("message text = %q", r.Messages[0].Message)
	}
}

func TestLintTextUndecodableBySchemaBackendIsParseFailure(t *testing.T) {
	// encoding/json refuses nesting beyond 10000 levels; the tree builder
	// does not. Schema validation must fail fast rather than be skipped.
	depth := 10001
	text := `{"name": ` + strings.Repeat("[", depth) + strings.Repeat("]", depth) + `}`
	r := recommended(t).LintText("deep.atip.json", text, Options{})
	if !r.Fatal {
		t.Fatalf("expected fatal report, got %v", r.Messages)
	}
	if len(r.Messages) != 1 || r.Messages[0].RuleID != ParseRuleID {
		t.Fatalf("messages = %+v", r.Messages)
	}
	if !strings.Contains(r.Messages[0].Message, "parse failure") {
		t.Errorf("message text = %q", r.Messages[0].Message)
	}
}

func TestLintTextSchemaFailure(t *testing.T) {
	r := recommended(t).LintText("bad.atip.json", `{"name": 42}`, Options{})
	if !r.Fatal {
		t.Fatal("schema violation must be fatal for the file")
	}
	if len(r.Messages) == 0 || r.Messages[0].RuleID != SchemaRuleID {
		t.Fatalf("messages = %+v", r.Messages)
	}
	// No rule ran: the projector never saw the document.
	for _, m := range r.Messages {
		if m.RuleID != SchemaRuleID {
			t.Errorf("unexpected rule message after schema failure: %+v", m)
		}
	}
}

func TestLintTextSchemaDisabled(t *testing.T) {
	off := false
	e := newEngine(t, &config.FileConfig{
		Extends: "recommended",
		Schema:  config.SchemaConfig{Enabled: &off},
	})
	// With schema off the wrong-typed name flows into the rules, which
	// report it as a missing field instead.
	r := e.LintText("bad.atip.json", `{"name": 42}`, Options{})
	if r.Fatal {
		t.Fatalf("schema off must not be fatal: %v", r.Messages)
	}
	var found bool
	for _, m := range r.Messages {
		if m.RuleID == "required-fields" && strings.Contains(m.Message, `"name"`) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a required-fields finding, got %v", r.Messages)
	}
}

func TestLintTextFindingsCarryByteRanges(t *testing.T) {
	text := `{"name": "demo", "version": "1.0", "description": "Too short"}`
	e := newEngine(t, &config.FileConfig{Rules: map[string]any{"description-quality": "warn"}})
	r := e.LintText("demo.atip.json", text, Options{})

	if len(r.Messages) != 1 {
		t.Fatalf("messages = %+v", r.Messages)
	}
	m := r.Messages[0]
	if got := text[m.Start:m.End]; got != `"Too short"` {
		t.Errorf("range covers %q", got)
	}
}

func TestLintTextRangeFallsBackToEnclosingNode(t *testing.T) {
	// required-fields targets the absent "version"; the range resolves to
	// the deepest existing node on the path, the document object.
	text := `{"name": "demo"}`
	e := newEngine(t, &config.FileConfig{Rules: map[string]any{"required-fields": "error"}})
	r := e.LintText("demo.atip.json", text, Options{})

	for _, m := range r.Messages {
		if m.Start != 0 || m.End != len(text) {
			t.Errorf("missing-field range = [%d, %d), want whole document", m.Start, m.End)
		}
	}
}

func TestLintTextApplyFixes(t *testing.T) {
	text := `{
		"name": "demo",
		"version": "1.0.0",
		"description": "A demonstration tool used in tests.",
		"commands": {
			"wipe": {"description": "Remove everything under the target.", "effects": {"destructive": true}}
		}
	}`
	e := newEngine(t, &config.FileConfig{Extends: "recommended"})
	r := e.LintText("demo.atip.json", text, Options{ApplyFixes: true})

	if r.Applied != 1 {
		t.Fatalf("Applied = %d, messages = %+v", r.Applied, r.Messages)
	}
	if !strings.Contains(r.Output, `"reversible": false`) {
		t.Errorf("Output = %s", r.Output)
	}

	var fixedSeen bool
	for _, m := range r.Messages {
		if m.RuleID == "destructive-needs-reversible" {
			if !m.Fixed || !m.Fixable {
				t.Errorf("message not marked fixed: %+v", m)
			}
			fixedSeen = true
		}
	}
	if !fixedSeen {
		t.Fatal("expected a destructive-needs-reversible finding")
	}

	// Fix idempotence: the patched text parses and is clean for the rule.
	again := e.LintText("demo.atip.json", r.Output, Options{ApplyFixes: true})
	if again.Fatal {
		t.Fatalf("fixed output no longer parses: %v", again.Messages)
	}
	for _, m := range again.Messages {
		if m.RuleID == "destructive-needs-reversible" {
			t.Errorf("finding survived its own fix: %+v", m)
		}
	}
}

func TestLintTextWithoutApplyFixesLeavesOutput(t *testing.T) {
	text := `{"commands": {"run": {"description": "Run it, quite thoroughly."}}}`
	e := newEngine(t, &config.FileConfig{
		Rules:  map[string]any{"effects-presence": "warn"},
		Schema: config.SchemaConfig{Enabled: boolPtr(false)},
	})
	r := e.LintText("demo.atip.json", text, Options{})

	if r.Output != "" || r.Applied != 0 {
		t.Errorf("no-fix run must not produce output, got %+v", r)
	}
	if len(r.Messages) != 1 || !r.Messages[0].Fixable || r.Messages[0].Fixed {
		t.Errorf("messages = %+v", r.Messages)
	}
}

func boolPtr(b bool) *bool { return &b }

func TestLintTextDeterministic(t *testing.T) {
	text := `{"commands": {
		"b": {"description": "x"},
		"a": {"description": "y"}
	}}`
	e := recommended(t)
	r1 := e.LintText("d.atip.json", text, Options{})
	r2 := e.LintText("d.atip.json", text, Options{})

	if !reflect.DeepEqual(r1.Messages, r2.Messages) {
		t.Errorf("same input diverged:\n%v\n%v", r1.Messages, r2.Messages)
	}
}

func TestOverridesApplyPerFile(t *testing.T) {
	e := newEngine(t, &config.FileConfig{
		Rules: map[string]any{"description-quality": "warn"},
		Overrides: []config.Override{{
			Files: []string{"vendored/**"},
			Rules: map[string]any{"description-quality": "off"},
		}},
	})
	text := `{"description": "tiny"}`

	normal := e.LintText("docs/a.atip.json", text, Options{})
	if len(normal.Messages) != 1 {
		t.Fatalf("expected the base rule to fire: %+v", normal.Messages)
	}
	vendored := e.LintText("vendored/b.atip.json", text, Options{})
	if len(vendored.Messages) != 0 {
		t.Errorf("override should disable the rule: %+v", vendored.Messages)
	}
}

func TestLintFileMissing(t *testing.T) {
	r := recommended(t).LintFile(filepath.Join(t.TempDir(), "absent.atip.json"), Options{})
	if !r.Fatal || len(r.Messages) != 1 || r.Messages[0].RuleID != ParseRuleID {
		t.Errorf("report = %+v", r)
	}
}

func TestLintPathsBatch(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	write("good.atip.json", cleanDoc)
	write("broken.atip.json", `{"name"`)
	write("node_modules/skip.atip.json", cleanDoc)

	e := recommended(t)
	batch, err := e.LintPaths(context.Background(),
		[]string{filepath.Join(dir, "**", "*.atip.json")}, Options{}, 4)
	if err != nil {
		t.Fatalf("LintPaths: %v", err)
	}

	if len(batch.Files) != 2 {
		t.Fatalf("linted %d files, want 2 (ignores applied): %+v", len(batch.Files), batch.Files)
	}
	var fatal, clean int
	for _, r := range batch.Files {
		if r.Fatal {
			fatal++
		} else if len(r.Messages) == 0 {
			clean++
		}
	}
	if fatal != 1 || clean != 1 {
		t.Errorf("fatal = %d, clean = %d; the broken file must not abort the batch", fatal, clean)
	}
	if !batch.HasErrors() {
		t.Error("batch with a fatal file must report errors")
	}
}

func TestLintPathsDeduplicates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "one.atip.json")
	if err := os.WriteFile(path, []byte(cleanDoc), 0644); err != nil {
		t.Fatal(err)
	}

	e := recommended(t)
	batch, err := e.LintPaths(context.Background(), []string{path, path,
		filepath.Join(dir, "*.atip.json")}, Options{}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Files) != 1 {
		t.Errorf("file linted %d times, want once", len(batch.Files))
	}
}

func TestLintPathsCanceledContext(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.atip.json", "b.atip.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(cleanDoc), 0644); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := recommended(t).LintPaths(ctx, []string{filepath.Join(dir, "*.atip.json")}, Options{}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !batch.Canceled {
		t.Error("pre-canceled context must mark the batch canceled")
	}
	if len(batch.Files) != 0 {
		t.Errorf("no files should have been launched, got %d", len(batch.Files))
	}
}

func TestFilterBaselineDropsKnownFindings(t *testing.T) {
	e := newEngine(t, &config.FileConfig{Rules: map[string]any{"required-fields": "error"}})
	r := e.LintText("legacy.atip.json", `{"name": "x", "version": "1.0"}`, Options{})
	batch := &BatchReport{}
	batch.add(r)
	if batch.TotalErrors != 1 {
		t.Fatalf("setup: %+v", r.Messages)
	}

	base := baseline.Create(BaselineEntries(batch))
	dropped := FilterBaseline(batch, base)
	if dropped != 1 {
		t.Errorf("dropped = %d", dropped)
	}
	if batch.TotalErrors != 0 || len(batch.Files[0].Messages) != 0 {
		t.Errorf("baselined finding survived: %+v", batch.Files[0].Messages)
	}
}

func TestFilterBaselineKeepsFatal(t *testing.T) {
	e := recommended(t)
	r := e.LintText("broken.atip.json", `{`, Options{})
	batch := &BatchReport{}
	batch.add(r)

	base := baseline.Create(BaselineEntries(batch))
	dropped := FilterBaseline(batch, base)
	if dropped != 0 {
		t.Errorf("fatal messages must never be filtered, dropped = %d", dropped)
	}
	if len(batch.Files[0].Messages) != 1 {
		t.Errorf("messages = %+v", batch.Files[0].Messages)
	}
}

func TestFilterBaselineNewFindingSurvives(t *testing.T) {
	e := newEngine(t, &config.FileConfig{Rules: map[string]any{"required-fields": "error"}})

	old := &BatchReport{}
	old.add(e.LintText("f.atip.json", `{"name": "x", "version": "1.0"}`, Options{}))
	base := baseline.Create(BaselineEntries(old))

	// Same file later, with an additional finding (version removed).
	current := &BatchReport{}
	current.add(e.LintText("f.atip.json", `{"name": "x"}`, Options{}))

	dropped := FilterBaseline(current, base)
	if dropped != 1 {
		t.Errorf("dropped = %d, want the old description finding only", dropped)
	}
	msgs := current.Files[0].Messages
	if len(msgs) != 1 || !strings.Contains(msgs[0].Message, `"version"`) {
		t.Errorf("messages = %+v", msgs)
	}
}
