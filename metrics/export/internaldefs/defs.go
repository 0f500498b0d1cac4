package internaldefs

import (
	dnaAuth "github.com/MrEthical07/dnaAuth"
)

// CounterDef names one engine counter for exporters.
type CounterDef struct {
	ID   dnaAuth.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for exporters.
type HistogramDef struct {
	ID   dnaAuth.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in output order.
var CounterDefs = []CounterDef{
	{ID: dnaAuth.MetricLoginSuccess, Name: "dnaauth_login_success_total", Help: "Logins that matched a profile and issued a session."},
	{ID: dnaAuth.MetricLoginFailure, Name: "dnaauth_login_failure_total", Help: "Logins whose sequence matched no profile."},
	{ID: dnaAuth.MetricLogout, Name: "dnaauth_logout_total", Help: "Logouts that revoked an existing session."},
	{ID: dnaAuth.MetricSessionCreated, Name: "dnaauth_session_created_total", Help: "Issued sessions."},
	{ID: dnaAuth.MetricSessionExpired, Name: "dnaauth_session_expired_total", Help: "Sessions found expired and evicted."},
	{ID: dnaAuth.MetricProfileMatched, Name: "dnaauth_profile_matched_total", Help: "Analyzed requests whose fingerprint matched a profile."},
	{ID: dnaAuth.MetricProfileUnmatched, Name: "dnaauth_profile_unmatched_total", Help: "Analyzed requests whose fingerprint matched nothing."},
	{ID: dnaAuth.MetricAuthRequired, Name: "dnaauth_auth_required_total", Help: "Requests rejected for lack of a session."},
	{ID: dnaAuth.MetricPermissionDenied, Name: "dnaauth_permission_denied_total", Help: "Requests rejected for a missing permission."},
	{ID: dnaAuth.MetricStoreError, Name: "dnaauth_store_error_total", Help: "Session backend failures and corrupt entries."},
	{ID: dnaAuth.MetricLoginThrottled, Name: "dnaauth_login_throttled_total", Help: "Logins refused after too many failures from one IP."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: dnaAuth.MetricAnalyzeLatency, Name: "dnaauth_analyze_latency_seconds", Help: "Per-request Analyze latency."},
}

// HistogramBounds are the upper bucket bounds in seconds, matching the engine's
// millisecond buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix encodes HistogramBounds for instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed array, zero-filling missing buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
