package dnaAuth

import (
	"fmt"
	"strings"
	"time"
)

// LintSeverity ranks a [LintWarning].
type LintSeverity int

const (
	// LintInfo is advisory.
	LintInfo LintSeverity = iota
	// LintWarn is likely unintended.
	LintWarn
	// LintHigh weakens the scheme noticeably.
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// LintWarning is one finding from [Config.Lint].
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the ordered list of findings.
type LintResult []LintWarning

// Codes returns the warning codes in order.
func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// BySeverity returns warnings at or above min.
func (r LintResult) BySeverity(min LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError folds warnings at or above min into one error, or returns nil.
func (r LintResult) AsError(min LintSeverity) error {
	hits := r.BySeverity(min)
	if len(hits) == 0 {
		return nil
	}
	parts := make([]string, 0, len(hits))
	for _, w := range hits {
		parts = append(parts, fmt.Sprintf("[%s] %s: %s", w.Severity, w.Code, w.Message))
	}
	return fmt.Errorf("config lint: %s", strings.Join(parts, "; "))
}

// Lint reports valid but questionable settings. It never fails; call
// [Config.Validate] for hard errors.
func (c *Config) Lint() LintResult {
	var ws LintResult
	add := func(code string, sev LintSeverity, msg string) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: msg})
	}

	if c.Matcher.SimilarityThreshold > 0 && c.Matcher.SimilarityThreshold < 0.5 {
		add("similarity_threshold_low", LintHigh,
			"similarity threshold below 0.5 lets most random sequences match a profile")
	}
	if c.Matcher.WindowSize > 0 && c.Matcher.WindowSize < 6 {
		add("window_size_small", LintHigh,
			"sliding windows shorter than 6 nucleotides match most fingerprints")
	}
	if c.Fingerprint.Length > 0 && c.Fingerprint.Length < 12 {
		add("sequence_short", LintWarn,
			"sequences shorter than the stock profiles can never match them exactly")
	}
	if c.Fingerprint.Window > time.Hour {
		add("fingerprint_window_long", LintWarn,
			"fingerprint window over 1h keeps a sequence stable for a long time")
	}
	if c.Session.TTL > 7*24*time.Hour {
		add("session_ttl_long", LintWarn, "session TTL exceeds 7 days")
	}
	if c.Trust.Baseline >= c.Trust.Multiplier {
		add("baseline_not_below_level1", LintInfo,
			"unmatched clients score at least as high as a level 1 profile")
	}
	if !c.Audit.Enabled {
		add("audit_disabled", LintInfo, "audit events are not emitted")
	}

	return ws
}
