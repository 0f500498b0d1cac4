package dnaAuth

import "context"

type clientIPContextKey struct{}
type decisionContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx for audit events.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

// WithTrustDecision attaches the per-request decision to ctx.
func WithTrustDecision(ctx context.Context, d *TrustDecision) context.Context {
	return context.WithValue(ctx, decisionContextKey{}, d)
}

// TrustDecisionFromContext returns the decision attached by [WithTrustDecision].
func TrustDecisionFromContext(ctx context.Context) (*TrustDecision, bool) {
	if ctx == nil {
		return nil, false
	}

	d, ok := ctx.Value(decisionContextKey{}).(*TrustDecision)
	return d, ok && d != nil
}
