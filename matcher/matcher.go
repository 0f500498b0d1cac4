package matcher

import (
	"errors"
	"strings"
)

const (
	// DefaultWindowSize is the sliding window width used by [Default].
	DefaultWindowSize = 8
	// DefaultSimilarityThreshold is the positional match ratio used by [Default].
	DefaultSimilarityThreshold = 0.6
)

// Matcher reports whether input should be treated as target.
type Matcher interface {
	Match(input, target string) bool
}

// Func adapts a function to [Matcher].
type Func func(input, target string) bool

// Match calls f.
func (f Func) Match(input, target string) bool { return f(input, target) }

// Exact matches identical strings.
type Exact struct{}

// Match implements [Matcher].
func (Exact) Match(input, target string) bool { return input == target }

// Containment matches when either string contains the other. Empty strings never match.
type Containment struct{}

// Match implements [Matcher].
func (Containment) Match(input, target string) bool {
	if input == "" || target == "" {
		return false
	}
	return strings.Contains(input, target) || strings.Contains(target, input)
}

// SlidingWindow slides a window of min(Size, len(target)) across target and matches
// when any window occurs in input.
type SlidingWindow struct {
	Size int
}

// Match implements [Matcher].
func (w SlidingWindow) Match(input, target string) bool {
	if input == "" || target == "" || w.Size <= 0 {
		return false
	}
	size := w.Size
	if size > len(target) {
		size = len(target)
	}
	for i := 0; i+size <= len(target); i++ {
		if strings.Contains(input, target[i:i+size]) {
			return true
		}
	}
	return false
}

// Similarity counts equal positions over the first min(len(input), len(target))
// characters and matches when the ratio reaches Threshold.
type Similarity struct {
	Threshold float64
}

// Match implements [Matcher].
func (s Similarity) Match(input, target string) bool {
	return Ratio(input, target) >= s.Threshold && overlap(input, target) > 0
}

// Ratio returns the positional similarity of the overlapping prefix, or 0 when
// either string is empty.
func Ratio(input, target string) float64 {
	n := overlap(input, target)
	if n == 0 {
		return 0
	}
	equal := 0
	for i := 0; i < n; i++ {
		if input[i] == target[i] {
			equal++
		}
	}
	return float64(equal) / float64(n)
}

func overlap(a, b string) int {
	if len(a) < len(b) {
		return len(a)
	}
	return len(b)
}

// Chain evaluates matchers in order and short-circuits on the first match.
type Chain []Matcher

// Match implements [Matcher].
func (c Chain) Match(input, target string) bool {
	for _, m := range c {
		if m != nil && m.Match(input, target) {
			return true
		}
	}
	return false
}

// Config tunes the fuzzy rules of [Default].
type Config struct {
	WindowSize          int
	SimilarityThreshold float64
}

// Validate checks the tuning values.
func (c Config) Validate() error {
	if c.WindowSize <= 0 {
		return errors.New("matcher WindowSize must be > 0")
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return errors.New("matcher SimilarityThreshold must be in (0, 1]")
	}
	return nil
}

// Default returns the standard four-rule chain. Zero tuning values take the
// package defaults.
func Default(cfg Config) Chain {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultWindowSize
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultSimilarityThreshold
	}
	return Chain{
		Exact{},
		Containment{},
		SlidingWindow{Size: cfg.WindowSize},
		Similarity{Threshold: cfg.SimilarityThreshold},
	}
}
