package config

import "sort"

// RuleSetting is the normalized configuration of one rule: a severity plus
// an options object. Options is never nil for an enabled rule.
type RuleSetting struct {
	Severity Severity
	Options  map[string]any
}

// ResolvedOverride is an Override with its rule map normalized.
type ResolvedOverride struct {
	Files []string
	Rules map[string]RuleSetting
}

// Resolved is a fully resolved configuration: the preset graph flattened,
// every severity token normalized, caller values winning on conflicts.
// A Resolved value is read-only once built and safe to share across files.
type Resolved struct {
	Rules          map[string]RuleSetting
	IgnorePatterns []string
	Overrides      []ResolvedOverride
	Plugins        []string
	Env            map[string]bool
	SchemaEnabled  bool
	SchemaPath     string
}

// RuleIDs returns the configured rule ids in sorted order.
func (r *Resolved) RuleIDs() []string {
	ids := make([]string, 0, len(r.Rules))
	for id := range r.Rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Preset is a named, inheritable bundle of rule configuration.
type Preset struct {
	Extends        []string
	Rules          map[string]any
	IgnorePatterns []string
	Env            map[string]bool
}

// presets is the built-in preset table. It is loaded once and read-only for
// the process lifetime.
var presets = map[string]*Preset{
	"recommended": {
		Rules: map[string]any{
			"required-fields":                    "error",
			"duplicate-flags":                    "error",
			"effects-value-validity":             "error",
			"effects-presence":                   "warn",
			"destructive-needs-reversible":       "warn",
			"billable-needs-non-idempotent-check": "warn",
			"trust-requirements":                 "warn",
			"description-quality":                "warn",
		},
	},
	"strict": {
		Extends: []string{"recommended"},
		Rules: map[string]any{
			"effects-presence":             "error",
			"destructive-needs-reversible": "error",
			"trust-requirements":           "error",
			"description-quality": []any{"error", map[string]any{
				"minLength": 10,
			}},
		},
	},
}

// PresetNames returns the built-in preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve flattens fc against the preset graph into a Resolved config.
// Extended presets resolve recursively, parent before child, then the
// caller's own values merge on top: rule map and env key-wise with the
// caller winning, ignore patterns / overrides / plugins concatenated in
// order. Any malformed piece is a ConfigError.
func Resolve(fc *FileConfig) (*Resolved, error) {
	res := &Resolved{
		Rules:         map[string]RuleSetting{},
		Env:           map[string]bool{},
		SchemaEnabled: true,
	}

	names, err := extendsList(fc.Extends)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if err := mergePreset(res, name, nil); err != nil {
			return nil, err
		}
	}

	if err := mergeRules(res.Rules, fc.Rules); err != nil {
		return nil, err
	}
	res.IgnorePatterns = append(res.IgnorePatterns, fc.IgnorePatterns...)
	if len(res.IgnorePatterns) == 0 {
		res.IgnorePatterns = append(res.IgnorePatterns, DefaultIgnorePatterns...)
	}
	res.Plugins = append(res.Plugins, fc.Plugins...)
	for k, v := range fc.Env {
		res.Env[k] = v
	}
	for _, ov := range fc.Overrides {
		normalized := map[string]RuleSetting{}
		if err := mergeRules(normalized, ov.Rules); err != nil {
			return nil, err
		}
		res.Overrides = append(res.Overrides, ResolvedOverride{Files: ov.Files, Rules: normalized})
	}

	if fc.Schema.Enabled != nil {
		res.SchemaEnabled = *fc.Schema.Enabled
	}
	res.SchemaPath = fc.Schema.Path

	return res, nil
}

// mergePreset resolves preset name (parents first) into res. The chain
// tracks the in-progress resolution path; revisiting a name on it is a
// preset cycle, rejected rather than recursed unboundedly.
func mergePreset(res *Resolved, name string, chain []string) error {
	for _, seen := range chain {
		if seen == name {
			return errorf("preset cycle: %v -> %s", chain, name)
		}
	}
	p, ok := presets[name]
	if !ok {
		return errorf("unknown preset %q", name)
	}
	chain = append(chain, name)
	for _, parent := range p.Extends {
		if err := mergePreset(res, parent, chain); err != nil {
			return err
		}
	}
	if err := mergeRules(res.Rules, p.Rules); err != nil {
		return errorf("preset %q: %v", name, err)
	}
	res.IgnorePatterns = append(res.IgnorePatterns, p.IgnorePatterns...)
	for k, v := range p.Env {
		res.Env[k] = v
	}
	return nil
}

// extendsList normalizes the extends field: absent, a single preset name,
// or an ordered list of names.
func extendsList(v any) ([]string, error) {
	switch e := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{e}, nil
	case []string:
		return e, nil
	case []any:
		out := make([]string, 0, len(e))
		for _, item := range e {
			s, ok := item.(string)
			if !ok {
				return nil, errorf("extends entries must be preset names, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, errorf("extends must be a preset name or list of names, got %T", v)
}

// mergeRules normalizes raw rule values into dst, later entries replacing
// earlier ones per rule id.
func mergeRules(dst map[string]RuleSetting, raw map[string]any) error {
	for id, v := range raw {
		setting, err := NormalizeRuleValue(id, v)
		if err != nil {
			return err
		}
		dst[id] = setting
	}
	return nil
}

// NormalizeRuleValue accepts the three supported rule-value shapes — a
// severity token, a raw severity number, or a [severity, options] tuple —
// and normalizes them to one RuleSetting.
func NormalizeRuleValue(id string, v any) (RuleSetting, error) {
	switch val := v.(type) {
	case []any:
		if len(val) == 0 || len(val) > 2 {
			return RuleSetting{}, errorf("rule %q: tuple must be [severity] or [severity, options]", id)
		}
		sev, err := normalizeSeverity(id, val[0])
		if err != nil {
			return RuleSetting{}, err
		}
		opts := map[string]any{}
		if len(val) == 2 {
			obj, ok := val[1].(map[string]any)
			if !ok {
				return RuleSetting{}, errorf("rule %q: options must be an object, got %T", id, val[1])
			}
			opts = obj
		}
		return RuleSetting{Severity: sev, Options: opts}, nil
	default:
		sev, err := normalizeSeverity(id, v)
		if err != nil {
			return RuleSetting{}, err
		}
		return RuleSetting{Severity: sev, Options: map[string]any{}}, nil
	}
}

func normalizeSeverity(id string, v any) (Severity, error) {
	switch s := v.(type) {
	case string:
		switch s {
		case "off":
			return SeverityOff, nil
		case "warn":
			return SeverityWarn, nil
		case "error":
			return SeverityError, nil
		}
		return 0, errorf("rule %q: invalid severity %q", id, s)
	case int:
		return severityFromNumber(id, float64(s))
	case int64:
		return severityFromNumber(id, float64(s))
	case float64:
		return severityFromNumber(id, s)
	}
	return 0, errorf("rule %q: invalid severity value %v (%T)", id, v, v)
}

func severityFromNumber(id string, n float64) (Severity, error) {
	switch n {
	case 0:
		return SeverityOff, nil
	case 1:
		return SeverityWarn, nil
	case 2:
		return SeverityError, nil
	}
	return 0, errorf("rule %q: invalid severity number %v", id, n)
}
