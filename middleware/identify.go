package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	dnaAuth "github.com/MrEthical07/dnaAuth"
)

// Diagnostic response headers.
const (
	HeaderRole            = "X-DNA-Role"
	HeaderTrustScore      = "X-DNA-Trust-Score"
	HeaderAuth            = "X-DNA-Auth"
	HeaderInstitution     = "X-Institution"
	HeaderInstitutionType = "X-Institution-Type"
)

// ClientFromRequest extracts the fingerprint inputs. RemoteAddr is used as-is
// apart from its port, so mount chi's RealIP first when behind a proxy.
func ClientFromRequest(r *http.Request) dnaAuth.Client {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return dnaAuth.Client{UserAgent: r.UserAgent(), IP: ip}
}

// DecisionFromContext returns the decision attached by [Authenticate].
func DecisionFromContext(ctx context.Context) (*dnaAuth.TrustDecision, bool) {
	return dnaAuth.TrustDecisionFromContext(ctx)
}

// Authenticate runs Engine.Analyze for every request. A session backend failure
// is logged and the request continues unauthenticated.
func Authenticate(engine *dnaAuth.Engine, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				WriteError(w, dnaAuth.ErrEngineNotReady)
				return
			}

			client := ClientFromRequest(r)
			ctx := dnaAuth.WithClientIP(r.Context(), client.IP)

			d, err := engine.Analyze(ctx, client)
			if err != nil {
				logger.WarnContext(ctx, "session lookup failed", "ip", client.IP, "error", err)
			}
			setDiagnosticHeaders(w, engine, d)

			ctx = dnaAuth.WithTrustDecision(ctx, d)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func setDiagnosticHeaders(w http.ResponseWriter, engine *dnaAuth.Engine, d *dnaAuth.TrustDecision) {
	h := w.Header()
	inst := engine.Config().Institution
	h.Set(HeaderInstitution, inst.Name)
	h.Set(HeaderInstitutionType, inst.Type)
	h.Set(HeaderRole, d.Role())
	h.Set(HeaderTrustScore, strconv.Itoa(d.TrustScore))
	if d.SessionValid {
		h.Set(HeaderAuth, "authenticated")
	} else {
		h.Set(HeaderAuth, "unauthenticated")
	}
}
