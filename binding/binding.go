// Package binding is the boundary between host callers and the stemmer.
//
// The stemmer itself cannot fail, but a boundary can: a bad configuration, a
// string that is not UTF-8, a bug. Whatever goes wrong, Stem returns the
// word it was given and never panics.
package binding

import (
	"fmt"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/oarkflow/porter/cache"
	"github.com/oarkflow/porter/metrics"
	"github.com/oarkflow/porter/stemmer"
)

type Binder struct {
	core    func(string) string
	err     error
	cache   *cache.Cache
	metrics *metrics.Metrics
	log     *slog.Logger
}

type Option func(*Binder)

func WithLogger(l *slog.Logger) Option {
	return func(b *Binder) { b.log = l }
}

func WithCache(c *cache.Cache) Option {
	return func(b *Binder) { b.cache = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Binder) { b.metrics = m }
}

// New never fails. A configuration the stemmer rejects is kept in Err and
// every call then returns its input unchanged.
func New(cfg stemmer.Config, opts ...Option) *Binder {
	b := &Binder{log: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	s, err := stemmer.New(cfg)
	if err != nil {
		b.err = err
		b.log.Warn("stemmer disabled, words pass through unchanged", slog.String("err", err.Error()))
		return b
	}
	b.core = s.Stem
	return b
}

// Err reports the configuration error, if any.
func (b *Binder) Err() error { return b.err }

func (b *Binder) Cache() *cache.Cache { return b.cache }

// Stem returns the stem of word, or word itself if anything goes wrong.
func (b *Binder) Stem(word string) (out string) {
	if b.err != nil {
		b.fallback(word, metrics.ReasonConfig, b.err)
		return word
	}
	if !utf8.ValidString(word) {
		b.fallback(word, metrics.ReasonInvalidUTF8, nil)
		return word
	}
	defer func() {
		if r := recover(); r != nil {
			b.fallback(word, metrics.ReasonPanic, fmt.Errorf("%v", r))
			out = word
		}
	}()
	b.metrics.Words(1)
	if b.cache == nil {
		return b.core(word)
	}
	stem, ok := b.cache.Get(word)
	b.metrics.CacheLookup(ok)
	if ok {
		return stem
	}
	stem = b.core(word)
	b.cache.Add(word, stem)
	return stem
}

func (b *Binder) fallback(word, reason string, err error) {
	b.metrics.Fallback(reason)
	attrs := []any{slog.String("word", word), slog.String("reason", reason)}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
	}
	b.log.Debug("stem fell back to input", attrs...)
}

var defaultBinder = sync.OnceValue(func() *Binder {
	return New(stemmer.DefaultConfig())
})

// Stem stems word with the default English configuration and falls back to
// word on any failure.
func Stem(word string) string {
	return defaultBinder().Stem(word)
}
