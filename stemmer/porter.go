package stemmer

import "sync"

// Step names of the English table, in pipeline order.
const (
	Step1a = "1a"
	Step1b = "1b"
	Step1c = "1c"
	Step2  = "2"
	Step3  = "3"
	Step4  = "4"
	Step5a = "5a"
	Step5b = "5b"
)

// EnglishRules returns the shared classical Porter rule table.
var EnglishRules = sync.OnceValue(func() *RuleTable {
	return newRuleTable(LanguageEnglish,
		step1a(), step1b(), step1c(), step2(), step3(), step4(), step5a(), step5b())
})

// PorterStem stems word with the classical English rules and folds ASCII
// letters to lower case first.
func PorterStem(word string) string {
	return Stem(word)
}

func step1a() Step {
	return Step{Name: Step1a, Rules: []Rule{
		{Suffix: "sses", Replacement: "ss"},
		{Suffix: "ies", Replacement: "i"},
		{Suffix: "ss", Replacement: "ss"},
		{Suffix: "s", Replacement: ""},
	}}
}

func step1b() Step {
	return Step{Name: Step1b, Rules: []Rule{
		{Suffix: "eed", Replacement: "ee", Cond: measureAbove(0)},
		{Suffix: "ed", Replacement: "", Cond: HasVowel, Then: tidy1b},
		{Suffix: "ing", Replacement: "", Cond: HasVowel, Then: tidy1b},
	}}
}

// tidy1b repairs a stem left behind by stripping -ed or -ing.
func tidy1b(w []byte) []byte {
	switch {
	case hasSuffix(w, "at"), hasSuffix(w, "bl"), hasSuffix(w, "iz"):
		return append(w, 'e')
	case EndsDoubleConsonant(w):
		switch w[len(w)-1] {
		case 'l', 's', 'z':
			return w
		}
		return w[:len(w)-1]
	case Measure(w) == 1 && EndsCVC(w):
		return append(w, 'e')
	}
	return w
}

func step1c() Step {
	return Step{Name: Step1c, Rules: []Rule{
		{Suffix: "y", Replacement: "i", Cond: func(stem []byte) bool {
			n := len(stem)
			return n > 0 && IsConsonant(stem, n-1) && HasVowel(stem)
		}},
	}}
}

func step2() Step {
	m0 := measureAbove(0)
	return Step{Name: Step2, Rules: []Rule{
		{Suffix: "ational", Replacement: "ate", Cond: m0},
		{Suffix: "tional", Replacement: "tion", Cond: m0},
		{Suffix: "enci", Replacement: "ence", Cond: m0},
		{Suffix: "anci", Replacement: "ance", Cond: m0},
		{Suffix: "izer", Replacement: "ize", Cond: m0},
		{Suffix: "bli", Replacement: "ble", Cond: m0},
		{Suffix: "alli", Replacement: "al", Cond: m0},
		{Suffix: "entli", Replacement: "ent", Cond: m0},
		{Suffix: "eli", Replacement: "e", Cond: m0},
		{Suffix: "ousli", Replacement: "ous", Cond: m0},
		{Suffix: "ization", Replacement: "ize", Cond: m0},
		{Suffix: "ation", Replacement: "ate", Cond: m0},
		{Suffix: "ator", Replacement: "ate", Cond: m0},
		{Suffix: "alism", Replacement: "al", Cond: m0},
		{Suffix: "iveness", Replacement: "ive", Cond: m0},
		{Suffix: "fulness", Replacement: "ful", Cond: m0},
		{Suffix: "ousness", Replacement: "ous", Cond: m0},
		{Suffix: "aliti", Replacement: "al", Cond: m0},
		{Suffix: "iviti", Replacement: "ive", Cond: m0},
		{Suffix: "biliti", Replacement: "ble", Cond: m0},
		{Suffix: "logi", Replacement: "log", Cond: m0},
	}}
}

func step3() Step {
	m0 := measureAbove(0)
	return Step{Name: Step3, Rules: []Rule{
		{Suffix: "icate", Replacement: "ic", Cond: m0},
		{Suffix: "ative", Replacement: "", Cond: m0},
		{Suffix: "alize", Replacement: "al", Cond: m0},
		{Suffix: "iciti", Replacement: "ic", Cond: m0},
		{Suffix: "ical", Replacement: "ic", Cond: m0},
		{Suffix: "ful", Replacement: "", Cond: m0},
		{Suffix: "ness", Replacement: "", Cond: m0},
	}}
}

func step4() Step {
	m1 := measureAbove(1)
	rules := make([]Rule, 0, 19)
	for _, suffix := range []string{
		"al", "ance", "ence", "er", "ic", "able", "ible", "ant",
		"ement", "ment", "ent", "ion", "ou", "ism", "ate", "iti", "ous", "ive", "ize",
	} {
		r := Rule{Suffix: suffix, Cond: m1}
		if suffix == "ion" {
			r.Match = precededBy("st")
		}
		rules = append(rules, r)
	}
	return Step{Name: Step4, Rules: rules}
}

func step5a() Step {
	return Step{Name: Step5a, Rules: []Rule{
		{Suffix: "e", Replacement: "", Cond: func(stem []byte) bool {
			m := Measure(stem)
			return m > 1 || m == 1 && !EndsCVC(stem)
		}},
	}}
}

func step5b() Step {
	// Matching a single l keeps the measure of the whole word: dropping the
	// last letter of a consonant run does not change m.
	return Step{Name: Step5b, Rules: []Rule{
		{Suffix: "l", Replacement: "", Match: precededBy("l"), Cond: measureAbove(1)},
	}}
}
