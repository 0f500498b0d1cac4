package middleware

import (
	"net/http"

	dnaAuth "github.com/MrEthical07/dnaAuth"
)

// RequireSession rejects requests without a live session with 401.
func RequireSession(engine *dnaAuth.Engine) func(http.Handler) http.Handler {
	return guard(engine, "")
}

// RequirePermission rejects with 401 without a session and 403 when the
// session lacks perm.
func RequirePermission(engine *dnaAuth.Engine, perm string) func(http.Handler) http.Handler {
	return guard(engine, perm)
}

func guard(engine *dnaAuth.Engine, perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				WriteError(w, dnaAuth.ErrEngineNotReady)
				return
			}

			ctx := r.Context()
			d, ok := DecisionFromContext(ctx)
			if !ok {
				// Authenticate not mounted; analyze inline.
				client := ClientFromRequest(r)
				ctx = dnaAuth.WithClientIP(ctx, client.IP)
				d, _ = engine.Analyze(ctx, client)
				setDiagnosticHeaders(w, engine, d)
				ctx = dnaAuth.WithTrustDecision(ctx, d)
			}

			var err error
			if perm == "" {
				err = engine.RequireSession(ctx, d)
			} else {
				err = engine.Authorize(ctx, d, perm)
			}
			if err != nil {
				WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
