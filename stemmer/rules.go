package stemmer

import "slices"

// Predicate inspects the stem left over once a rule's suffix is removed.
type Predicate func(stem []byte) bool

// Rule rewrites Suffix to Replacement.
//
// Match narrows which words the rule matches at all; a rule whose Match fails
// is skipped and the next rule in the step is tried. Cond only gates the
// rewrite: once a rule matches, the step is over whether Cond holds or not.
// Then runs after a successful rewrite.
type Rule struct {
	Suffix      string
	Replacement string
	Match       Predicate
	Cond        Predicate
	Then        func(w []byte) []byte
}

func (r Rule) matches(w []byte) bool {
	n := len(w) - len(r.Suffix)
	if n < 0 || string(w[n:]) != r.Suffix {
		return false
	}
	return r.Match == nil || r.Match(w[:n])
}

// Step is an ordered rule list of which at most one rule fires.
type Step struct {
	Name  string
	Rules []Rule
}

// Apply runs the first matching rule of s against w. The returned slice may
// share w's backing array. The bool reports whether w was rewritten.
func (s Step) Apply(w []byte) ([]byte, bool) {
	for _, r := range s.Rules {
		if !r.matches(w) {
			continue
		}
		stem := w[:len(w)-len(r.Suffix)]
		if r.Cond != nil && !r.Cond(stem) {
			return w, false
		}
		w = append(stem, r.Replacement...)
		if r.Then != nil {
			w = r.Then(w)
		}
		return w, true
	}
	return w, false
}

// RuleTable is the full ordered pipeline for one language. It is never
// modified after construction.
type RuleTable struct {
	language string
	steps    []Step
}

func newRuleTable(language string, steps ...Step) *RuleTable {
	return &RuleTable{language: language, steps: steps}
}

func (t *RuleTable) Language() string { return t.language }

// Steps returns a copy of the step list.
func (t *RuleTable) Steps() []Step { return slices.Clone(t.steps) }

// Step looks a step up by name.
func (t *RuleTable) Step(name string) (Step, bool) {
	for _, s := range t.steps {
		if s.Name == name {
			return s, true
		}
	}
	return Step{}, false
}

// Apply runs every step in order over the working form w.
func (t *RuleTable) Apply(w []byte) []byte {
	for _, s := range t.steps {
		w, _ = s.Apply(w)
	}
	return w
}

func measureAbove(n int) Predicate {
	return func(stem []byte) bool { return Measure(stem) > n }
}

func precededBy(letters string) Predicate {
	return func(stem []byte) bool {
		if len(stem) == 0 {
			return false
		}
		last := stem[len(stem)-1]
		for i := 0; i < len(letters); i++ {
			if letters[i] == last {
				return true
			}
		}
		return false
	}
}

func hasSuffix(w []byte, suffix string) bool {
	n := len(w) - len(suffix)
	return n >= 0 && string(w[n:]) == suffix
}
