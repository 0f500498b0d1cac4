package dnaAuth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/dnaAuth/fingerprint"
	"github.com/MrEthical07/dnaAuth/internal/rate"
	"github.com/MrEthical07/dnaAuth/matcher"
	"github.com/MrEthical07/dnaAuth/permission"
	"github.com/MrEthical07/dnaAuth/profile"
	"github.com/MrEthical07/dnaAuth/session"
)

// Engine runs fingerprinting, profile matching and the session lifecycle. It is
// safe for concurrent use once built.
type Engine struct {
	config      Config
	generator   *fingerprint.Generator
	matcher     matcher.Matcher
	profiles    *profile.Registry
	permissions *permission.Registry
	store       session.Store
	throttle    *rate.Limiter
	audit       *auditDispatcher
	metrics     *Metrics
	logger      *slog.Logger
	clock       func() time.Time
}

// Close flushes and stops the audit dispatcher. The session store is owned by
// the caller when supplied through the builder.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events dropped on a full buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns the current counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config { return e.config }

// Profiles returns the profile table in match order.
func (e *Engine) Profiles() []profile.Profile { return e.profiles.Profiles() }

// Permissions returns the frozen permission registry.
func (e *Engine) Permissions() *permission.Registry { return e.permissions }

// Fingerprint computes the fingerprint of c at the engine's current time.
func (e *Engine) Fingerprint(c Client) fingerprint.Fingerprint {
	return e.generator.Compute(c.UserAgent, c.IP, e.now())
}

// TrustScore returns SecurityLevel * Multiplier for p, or the baseline for nil.
func (e *Engine) TrustScore(p *profile.Profile) int {
	if p == nil {
		return e.config.Trust.Baseline
	}
	return p.SecurityLevel * e.config.Trust.Multiplier
}

func (e *Engine) match(fp fingerprint.Fingerprint) (*profile.Profile, permission.Mask64) {
	p, mask, ok := e.profiles.Analyze(e.matcher, fp.Sequence)
	if !ok {
		return nil, 0
	}
	return &p, mask
}

// Analyze builds the per-request decision: fingerprint, matched profile, trust
// score and session state.
//
// The returned decision is never nil. A backend failure yields a decision with no
// session together with an error wrapping [ErrStoreUnavailable], so callers can
// keep serving unauthenticated traffic.
func (e *Engine) Analyze(ctx context.Context, c Client) (*TrustDecision, error) {
	if e == nil {
		return &TrustDecision{}, ErrEngineNotReady
	}
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricAnalyzeLatency, time.Since(start)) }()
	}

	fp := e.Fingerprint(c)
	p, _ := e.match(fp)
	if p != nil {
		e.metricInc(MetricProfileMatched)
	} else {
		e.metricInc(MetricProfileUnmatched)
	}

	d := &TrustDecision{
		Fingerprint: fp,
		Profile:     p,
		TrustScore:  e.TrustScore(p),
	}

	key := c.Key()
	sess, err := e.store.Verify(ctx, key)
	switch {
	case err == nil:
		d.Session = sess
		d.SessionValid = true
	case errors.Is(err, session.ErrSessionNotFound):
	case errors.Is(err, session.ErrSessionExpired):
		d.SessionExpired = true
		e.metricInc(MetricSessionExpired)
		e.emitAudit(ctx, auditEventSessionExpired, false, d, key, err, nil)
	case errors.Is(err, session.ErrSessionCorrupt):
		e.metricInc(MetricStoreError)
		e.logger.WarnContext(ctx, "discarded corrupt session", "client_key", key, "error", err)
		e.emitAudit(ctx, auditEventStoreError, false, d, key, err, nil)
	default:
		e.metricInc(MetricStoreError)
		e.emitAudit(ctx, auditEventStoreError, false, d, key, err, nil)
		return d, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return d, nil
}

// Login fingerprints c afresh and issues a session for the first matching
// profile. A miss returns [*AuthenticationFailedError] carrying the sequence.
func (e *Engine) Login(ctx context.Context, c Client) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	fp := e.Fingerprint(c)
	d := &TrustDecision{Fingerprint: fp, TrustScore: e.TrustScore(nil)}
	key := c.Key()

	if err := e.checkThrottle(ctx, c.IP); err != nil {
		e.metricInc(MetricLoginThrottled)
		e.emitAudit(ctx, auditEventLoginThrottled, false, d, key, err, nil)
		return nil, err
	}

	p, mask := e.match(fp)
	if p == nil {
		e.metricInc(MetricLoginFailure)
		err := &AuthenticationFailedError{Sequence: fp.Sequence}
		e.emitAudit(ctx, auditEventLoginFailure, false, d, key, err, nil)
		e.logger.InfoContext(ctx, "login rejected", "sequence", fp.Sequence)
		e.recordThrottleFailure(ctx, c.IP)
		return nil, err
	}
	d.Profile = p
	d.TrustScore = e.TrustScore(p)

	sess, err := e.store.Issue(ctx, key, session.Grant{
		Sequence: p.Sequence,
		Role:     p.Role,
		Mask:     mask,
	})
	if err != nil {
		e.metricInc(MetricStoreError)
		e.emitAudit(ctx, auditEventStoreError, false, d, key, err, nil)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	d.Session = sess
	d.SessionValid = true
	e.resetThrottle(ctx, c.IP)

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventLoginSuccess, true, d, key, nil, func() map[string]string {
		return map[string]string{"trust_score": fmt.Sprint(d.TrustScore)}
	})
	e.logger.InfoContext(ctx, "login accepted", "role", p.Role, "sequence", fp.Sequence, "trust_score", d.TrustScore)

	return &LoginResult{
		User: UserView{
			Sequence:      p.Sequence,
			Role:          p.Role,
			Permissions:   append([]string(nil), p.Permissions...),
			SecurityLevel: p.SecurityLevel,
			TrustScore:    d.TrustScore,
			Token:         sess.Token,
			ExpiresAt:     sess.ExpiresAt,
		},
		Session: sess,
	}, nil
}

// Logout revokes the session of c and reports whether one existed.
func (e *Engine) Logout(ctx context.Context, c Client) (bool, error) {
	if e == nil {
		return false, ErrEngineNotReady
	}

	key := c.Key()
	existed, err := e.store.Revoke(ctx, key)
	if err != nil {
		e.metricInc(MetricStoreError)
		e.emitAudit(ctx, auditEventStoreError, false, nil, key, err, nil)
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if existed {
		e.metricInc(MetricLogout)
		e.emitAudit(ctx, auditEventLogout, true, nil, key, nil, nil)
	}
	return existed, nil
}

// Status reports the session of c and its freshly computed trust metrics.
func (e *Engine) Status(ctx context.Context, c Client) (*StatusReport, error) {
	d, err := e.Analyze(ctx, c)
	if err != nil {
		return nil, err
	}
	return e.StatusFromDecision(d), nil
}

// StatusFromDecision renders a [StatusReport] from an existing decision.
func (e *Engine) StatusFromDecision(d *TrustDecision) *StatusReport {
	report := &StatusReport{
		Authenticated: d.SessionValid,
		Metrics: TrustMetrics{
			Sequence:   d.Fingerprint.Sequence,
			Profile:    d.Profile,
			TrustScore: d.TrustScore,
		},
	}
	if d.SessionValid && d.Session != nil {
		report.User = &SessionView{
			Sequence:    d.Session.Sequence,
			Role:        d.Session.Role,
			Permissions: permissionNames(e.permissions, d.Session.Mask),
			IssuedAt:    d.Session.IssuedAt,
			ExpiresAt:   d.Session.ExpiresAt,
		}
	}
	return report
}

// RequireSession returns nil when d carries a live session. An expired session
// yields an error matching both [ErrAuthenticationRequired] and [ErrSessionExpired].
func (e *Engine) RequireSession(ctx context.Context, d *TrustDecision) error {
	if d != nil && d.SessionValid && d.Session != nil {
		return nil
	}

	err := ErrAuthenticationRequired
	if d != nil && d.SessionExpired {
		err = errors.Join(ErrAuthenticationRequired, ErrSessionExpired)
	}
	e.metricInc(MetricAuthRequired)
	e.emitAudit(ctx, auditEventAuthRequired, false, d, "", err, nil)
	return err
}

// Authorize requires a live session whose mask grants perm or full access.
func (e *Engine) Authorize(ctx context.Context, d *TrustDecision, perm string) error {
	if err := e.RequireSession(ctx, d); err != nil {
		return err
	}
	if e.HasPermission(d.Session.Mask, perm) {
		return nil
	}

	err := &InsufficientPermissionError{Permission: perm}
	e.metricInc(MetricPermissionDenied)
	e.emitAudit(ctx, auditEventPermissionDenied, false, d, d.Session.ClientKey, err, func() map[string]string {
		return map[string]string{"permission": perm}
	})
	return err
}

// HasPermission reports whether mask grants perm, directly or through full access.
func (e *Engine) HasPermission(mask permission.Mask64, perm string) bool {
	if e == nil || e.permissions == nil {
		return false
	}
	return e.permissions.Allows(mask, perm)
}

// Ping checks the session backend.
func (e *Engine) Ping(ctx context.Context) (time.Duration, error) {
	if e == nil {
		return 0, ErrEngineNotReady
	}
	return e.store.Ping(ctx)
}

// checkThrottle fails open when Redis cannot answer; the session store will
// surface the outage on its own.
func (e *Engine) checkThrottle(ctx context.Context, ip string) error {
	if e.throttle == nil {
		return nil
	}
	err := e.throttle.Check(ctx, ip)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rate.ErrRateLimited):
		e.logger.WarnContext(ctx, "login throttled", "ip", ip)
		return ErrLoginThrottled
	default:
		e.logger.WarnContext(ctx, "login throttle unavailable", "error", err)
		return nil
	}
}

func (e *Engine) recordThrottleFailure(ctx context.Context, ip string) {
	if e.throttle == nil {
		return
	}
	if _, err := e.throttle.RecordFailure(ctx, ip); err != nil {
		e.logger.WarnContext(ctx, "login throttle unavailable", "error", err)
	}
}

func (e *Engine) resetThrottle(ctx context.Context, ip string) {
	if e.throttle == nil {
		return
	}
	if err := e.throttle.Reset(ctx, ip); err != nil {
		e.logger.WarnContext(ctx, "login throttle unavailable", "error", err)
	}
}
