package rules

import (
	"encoding/json"

	"github.com/atiptools/atiplint/internal/fix"
	"github.com/atiptools/atiplint/internal/syntax"
)

// insertIntoObject builds an edit that inserts fragment (a `"key": value`
// pair without surrounding punctuation) into an object node, after its last
// member. Returns nil when obj is not an object.
func insertIntoObject(ruleID string, obj *syntax.Node, fragment string) *fix.Edit {
	if obj == nil || obj.Kind != syntax.KindObject {
		return nil
	}
	if len(obj.Members) == 0 {
		return &fix.Edit{RuleID: ruleID, Start: obj.Offset + 1, End: obj.Offset + 1, Text: fragment}
	}
	last := obj.Members[len(obj.Members)-1].Value
	return &fix.Edit{RuleID: ruleID, Start: last.End(), End: last.End(), Text: ", " + fragment}
}

// replaceString builds an edit replacing a string literal node (quotes
// included) with the JSON encoding of val.
func replaceString(ruleID string, n *syntax.Node, val string) *fix.Edit {
	if n == nil || n.Kind != syntax.KindString {
		return nil
	}
	encoded, err := json.Marshal(val)
	if err != nil {
		return nil
	}
	return &fix.Edit{RuleID: ruleID, Start: n.Offset, End: n.End(), Text: string(encoded)}
}
