package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/zen-systems/skillroute/pkg/skill"
)

// KeywordClassifier selects skills by trigger phrases. It is a pure
// function of the goal text and its trigger table.
type KeywordClassifier struct {
	// Compiled rules in catalog declaration order
	rules []compiledRule
}

type compiledRule struct {
	name     skill.Name
	triggers []string
}

// NewKeywordClassifier compiles a trigger table. A nil table uses the
// catalog defaults. Names outside the selectable enumeration are rejected.
func NewKeywordClassifier(triggers map[skill.Name][]string) (*KeywordClassifier, error) {
	if triggers == nil {
		triggers = skill.DefaultTriggers()
	}
	for name := range triggers {
		if !name.Selectable() {
			return nil, fmt.Errorf("trigger table: %q is not a selectable skill", name)
		}
	}

	kc := &KeywordClassifier{}
	for _, name := range skill.Selectable() {
		var lowered []string
		for _, trig := range triggers[name] {
			trig = strings.ToLower(strings.TrimSpace(trig))
			if trig != "" {
				lowered = append(lowered, trig)
			}
		}
		if len(lowered) == 0 {
			continue
		}
		kc.rules = append(kc.rules, compiledRule{name: name, triggers: lowered})
	}
	return kc, nil
}

// Match returns every skill with at least one trigger in goal, ordered by
// catalog declaration rather than position in the goal.
func (kc *KeywordClassifier) Match(goal string) []skill.Name {
	goalLower := strings.ToLower(goal)

	var matched []skill.Name
	for _, rule := range kc.rules {
		for _, trigger := range rule.triggers {
			if containsTrigger(goalLower, trigger) {
				matched = append(matched, rule.name)
				break
			}
		}
	}
	return matched
}

// Triggers returns the compiled trigger phrases for name.
func (kc *KeywordClassifier) Triggers(name skill.Name) []string {
	for _, rule := range kc.rules {
		if rule.name == name {
			return append([]string(nil), rule.triggers...)
		}
	}
	return nil
}

// Classify implements Classifier. Keyword matching cannot fail, so the
// result is always ok and maxAttempts is ignored.
func (kc *KeywordClassifier) Classify(_ context.Context, goal string, _ int) *Result {
	selected := kc.Match(goal)
	notes := "no triggers matched"
	if len(selected) > 0 {
		notes = fmt.Sprintf("matched %s", joinNames(selected))
	}
	return &Result{
		OK:           true,
		Selected:     selected,
		Notes:        notes,
		AttemptsUsed: 1,
	}
}

// containsTrigger reports whether the trigger phrase appears anywhere in
// prompt, so inflected forms ("plans", "tables") still match. Both inputs
// must already be lowercase.
func containsTrigger(prompt, trigger string) bool {
	if trigger == "" {
		return false
	}
	return strings.Contains(prompt, trigger)
}

func joinNames(names []skill.Name) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}
