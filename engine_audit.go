package dnaAuth

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/dnaAuth/session"
)

const (
	auditEventLoginSuccess     = "login_success"
	auditEventLoginFailure     = "login_failure"
	auditEventLogout           = "logout"
	auditEventSessionExpired   = "session_expired"
	auditEventAuthRequired     = "auth_required"
	auditEventPermissionDenied = "permission_denied"
	auditEventStoreError       = "store_error"
	auditEventLoginThrottled   = "login_throttled"
)

// AuditErrorCode is the stable error label carried by an [AuditEvent].
type AuditErrorCode string

const (
	auditErrAuthFailed       AuditErrorCode = "auth_failed"
	auditErrAuthRequired     AuditErrorCode = "auth_required"
	auditErrSessionExpired   AuditErrorCode = "session_expired"
	auditErrPermissionDenied AuditErrorCode = "insufficient_permission"
	auditErrSessionCorrupt   AuditErrorCode = "session_corrupt"
	auditErrUnavailable      AuditErrorCode = "backend_unavailable"
	auditErrThrottled        AuditErrorCode = "rate_limited"
	auditErrInternal         AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	d *TrustDecision,
	clientKey string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: e.now().UTC(),
		EventType: eventType,
		ClientKey: clientKey,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if d != nil {
		event.Role = d.Role()
		event.Sequence = d.Fingerprint.Sequence
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrAuthenticationFailed):
		return auditErrAuthFailed
	case errors.Is(err, ErrLoginThrottled):
		return auditErrThrottled
	case errors.Is(err, ErrSessionExpired):
		return auditErrSessionExpired
	case errors.Is(err, ErrAuthenticationRequired):
		return auditErrAuthRequired
	case errors.Is(err, ErrInsufficientPermission):
		return auditErrPermissionDenied
	case errors.Is(err, session.ErrSessionCorrupt):
		return auditErrSessionCorrupt
	case errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, session.ErrRedisUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}

// now is separate from time.Now so tests can pin fingerprint windows.
func (e *Engine) now() time.Time {
	if e == nil || e.clock == nil {
		return time.Now()
	}
	return e.clock()
}
