// Package stemmer reduces English words to their Porter stems.
//
// Stemming is a pure suffix rewrite: no dictionary, no I/O and no state shared
// between calls other than the read-only rule table. A Stemmer is safe for
// concurrent use.
package stemmer

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

const LanguageEnglish = "english"

// ErrUnsupportedLanguage is returned for any language other than English.
var ErrUnsupportedLanguage = errors.New("stemmer: unsupported language")

// Config selects the rule table and input folding.
type Config struct {
	Language      string `yaml:"language" json:"language"`
	LowercaseFold bool   `yaml:"lowercase_fold" json:"lowercase_fold"`
}

func DefaultConfig() Config {
	return Config{Language: LanguageEnglish, LowercaseFold: true}
}

// Validate reports whether the configured language has a rule table.
func (c Config) Validate() error {
	_, err := tableFor(c.Language)
	return err
}

func tableFor(language string) (*RuleTable, error) {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "", LanguageEnglish, "en":
		return EnglishRules(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
}

type Stemmer struct {
	table *RuleTable
	fold  bool
}

func New(cfg Config) (*Stemmer, error) {
	table, err := tableFor(cfg.Language)
	if err != nil {
		return nil, err
	}
	return &Stemmer{table: table, fold: cfg.LowercaseFold}, nil
}

func (s *Stemmer) Language() string { return s.table.Language() }

func (s *Stemmer) Folds() bool { return s.fold }

// Stem returns the stem of word. Words of at most two bytes come back as
// they are. With folding enabled the result is in lower case.
func (s *Stemmer) Stem(word string) string {
	if len(word) <= 2 {
		return word
	}
	if s.fold {
		word = foldASCII(word)
	}
	return string(s.table.Apply([]byte(word)))
}

// TraceEntry records the working form after one step.
type TraceEntry struct {
	Step    string `json:"step"`
	Form    string `json:"form"`
	Applied bool   `json:"applied"`
}

// Trace stems word like Stem and reports the form after every step.
func (s *Stemmer) Trace(word string) (string, []TraceEntry) {
	if len(word) <= 2 {
		return word, nil
	}
	if s.fold {
		word = foldASCII(word)
	}
	w := []byte(word)
	trace := make([]TraceEntry, 0, len(s.table.steps))
	for _, step := range s.table.steps {
		var applied bool
		w, applied = step.Apply(w)
		trace = append(trace, TraceEntry{Step: step.Name, Form: string(w), Applied: applied})
	}
	return string(w), trace
}

var defaultStemmer = sync.OnceValue(func() *Stemmer {
	return &Stemmer{table: EnglishRules(), fold: true}
})

// Default returns the shared English stemmer with folding enabled.
func Default() *Stemmer { return defaultStemmer() }

// Stem stems word with the default stemmer.
func Stem(word string) string {
	return defaultStemmer().Stem(word)
}

// foldASCII lower-cases A-Z and leaves every other byte alone.
func foldASCII(s string) string {
	i := 0
	for ; i < len(s); i++ {
		if c := s[i]; 'A' <= c && c <= 'Z' {
			break
		}
	}
	if i == len(s) {
		return s
	}
	b := []byte(s)
	for ; i < len(b); i++ {
		if c := b[i]; 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
