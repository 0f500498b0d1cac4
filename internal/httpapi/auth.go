package httpapi

import (
	"net/http"
	"strconv"

	dnaAuth "github.com/MrEthical07/dnaAuth"
	dnamw "github.com/MrEthical07/dnaAuth/middleware"
)

type loginResponse struct {
	Message string           `json:"message"`
	User    dnaAuth.UserView `json:"user"`
}

type logoutResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type healthResponse struct {
	Status         string `json:"status"`
	StoreLatencyMS int64  `json:"storeLatencyMs"`
}

func (a *api) login(w http.ResponseWriter, r *http.Request) {
	client := dnamw.ClientFromRequest(r)
	res, err := a.engine.Login(r.Context(), client)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	h := w.Header()
	h.Set(dnamw.HeaderAuth, "authenticated")
	h.Set(dnamw.HeaderRole, res.User.Role)
	h.Set(dnamw.HeaderTrustScore, strconv.Itoa(res.User.TrustScore))

	dnamw.WriteJSON(w, http.StatusOK, loginResponse{
		Message: "DNA authentication successful",
		User:    res.User,
	})
}

func (a *api) logout(w http.ResponseWriter, r *http.Request) {
	client := dnamw.ClientFromRequest(r)
	existed, err := a.engine.Logout(r.Context(), client)
	if err != nil {
		a.logger.ErrorContext(r.Context(), "logout failed", "error", err)
		dnamw.WriteJSON(w, http.StatusOK, logoutResponse{Message: "Logout failed", Success: false})
		return
	}

	w.Header().Set(dnamw.HeaderAuth, "unauthenticated")
	msg := "Logged out successfully"
	if !existed {
		msg = "No active session"
	}
	dnamw.WriteJSON(w, http.StatusOK, logoutResponse{Message: msg, Success: true})
}

func (a *api) status(w http.ResponseWriter, r *http.Request) {
	d, ok := dnamw.DecisionFromContext(r.Context())
	if !ok {
		a.writeError(w, r, dnaAuth.ErrEngineNotReady)
		return
	}
	dnamw.WriteJSON(w, http.StatusOK, a.engine.StatusFromDecision(d))
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	latency, err := a.engine.Ping(r.Context())
	if err != nil {
		a.logger.WarnContext(r.Context(), "health check failed", "error", err)
		dnamw.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	dnamw.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", StoreLatencyMS: latency.Milliseconds()})
}
