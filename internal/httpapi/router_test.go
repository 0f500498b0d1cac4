package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dnaAuth "github.com/MrEthical07/dnaAuth"
	"github.com/MrEthical07/dnaAuth/internal/records"
	"github.com/MrEthical07/dnaAuth/metrics/export/prometheus"
	dnamw "github.com/MrEthical07/dnaAuth/middleware"
)

// Start of a fingerprint window. From clientIP at this instant the user agents
// below match the stock admin, student and instructor profiles.
var epoch = time.UnixMilli(1_740_830_400_000)

const (
	clientIP     = "203.0.113.7"
	adminUA      = "dna-probe/78"
	studentUA    = "dna-probe/306"
	instructorUA = "dna-probe/108"
	strangerUA   = "Mozilla/5.0"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type testAPI struct {
	handler http.Handler
	clock   *clock
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	return newTestAPIWith(t, func(*dnaAuth.Builder) {})
}

func newTestAPIWith(t *testing.T, configure func(*dnaAuth.Builder)) *testAPI {
	t.Helper()

	c := &clock{t: epoch}
	b := dnaAuth.New().WithClock(c.Now)
	configure(b)
	engine, err := b.Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	h := NewRouter(Options{
		Engine:  engine,
		Records: records.NewStore("Nuralai School", c.Now),
		Metrics: prometheus.NewPrometheusExporter(engine).Handler(),
	})
	return &testAPI{handler: h, clock: c}
}

func (a *testAPI) do(t *testing.T, method, path, ua, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	r.RemoteAddr = clientIP + ":40000"
	r.Header.Set("User-Agent", ua)

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, r)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

const studentJSON = `{"name":"Ada Lovelace","email":"ada@example.edu","enrollmentDate":"2025-01-15"}`

func TestLoginMatchedProfile(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/auth/login", adminUA, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "authenticated", rec.Header().Get(dnamw.HeaderAuth))
	assert.Equal(t, "admin", rec.Header().Get(dnamw.HeaderRole))

	body := decode[loginResponse](t, rec)
	assert.Equal(t, "admin", body.User.Role)
	assert.Equal(t, 100, body.User.TrustScore)
	assert.Equal(t, 5, body.User.SecurityLevel)
	assert.NotEmpty(t, body.User.Token)
	assert.Contains(t, body.User.Permissions, "full_access")
}

func TestLoginUnknownSequence(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/auth/login", strangerUA, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode[dnamw.ErrorBody](t, rec)
	assert.Equal(t, dnamw.CodeAuthFailed, body.Code)
	assert.Equal(t, "TAATGAAGATAACAATGCATGGGC", body.Sequence)

	rec = api.do(t, http.MethodGet, "/api/auth/status", strangerUA, "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[dnaAuth.StatusReport](t, rec)
	assert.False(t, status.Authenticated)
	assert.Nil(t, status.User)
	assert.Equal(t, 10, status.Metrics.TrustScore)
	assert.Equal(t, "none", rec.Header().Get(dnamw.HeaderRole))
}

func TestPermissionGate(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/students", studentUA, studentJSON)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, dnamw.CodeAuthRequired, decode[dnamw.ErrorBody](t, rec).Code)

	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/auth/login", studentUA, "").Code)
	rec = api.do(t, http.MethodPost, "/api/students", studentUA, studentJSON)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, dnamw.CodeInsufficientPermission, decode[dnamw.ErrorBody](t, rec).Code)

	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/auth/login", adminUA, "").Code)
	rec = api.do(t, http.MethodPost, "/api/students", adminUA, studentJSON)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[records.Student](t, rec)
	assert.Equal(t, "NS-2025-001", created.StudentID)

	// Instructors may write but not delete.
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/auth/login", instructorUA, "").Code)
	rec = api.do(t, http.MethodPut, "/api/students/1", instructorUA, `{"status":"graduated"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "graduated", decode[records.Student](t, rec).Status)
	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodDelete, "/api/students/1", instructorUA, "").Code)

	assert.Equal(t, http.StatusOK, api.do(t, http.MethodDelete, "/api/students/1", adminUA, "").Code)
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodDelete, "/api/students/1", adminUA, "").Code)
}

func TestLogoutThenStatus(t *testing.T) {
	api := newTestAPI(t)

	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/auth/login", adminUA, "").Code)
	rec := api.do(t, http.MethodGet, "/api/auth/status", adminUA, "")
	status := decode[dnaAuth.StatusReport](t, rec)
	require.True(t, status.Authenticated)
	assert.Equal(t, "admin", status.User.Role)

	rec = api.do(t, http.MethodPost, "/api/auth/logout", adminUA, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[logoutResponse](t, rec).Success)

	rec = api.do(t, http.MethodGet, "/api/auth/status", adminUA, "")
	status = decode[dnaAuth.StatusReport](t, rec)
	assert.False(t, status.Authenticated)
	assert.Equal(t, http.StatusUnauthorized, api.do(t, http.MethodPost, "/api/students", adminUA, studentJSON).Code)
}

func TestLogoutStoreFailureStillReturns200(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	api := newTestAPIWith(t, func(b *dnaAuth.Builder) { b.WithRedis(rdb) })
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/auth/login", adminUA, "").Code)

	mr.Close()

	rec := api.do(t, http.MethodPost, "/api/auth/logout", adminUA, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[logoutResponse](t, rec)
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Message)
}

func TestSessionSurvivesWindowRollover(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/auth/login", adminUA, "").Code)

	api.clock.Advance(10 * time.Minute)
	rec := api.do(t, http.MethodPost, "/api/courses", adminUA,
		`{"title":"Applied Genetics","code":"GEN-101","description":"Sequencing","duration":12,"category":"Science","level":"Beginner"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	api.clock.Advance(24 * time.Hour)
	rec = api.do(t, http.MethodDelete, "/api/courses/1", adminUA, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRecordValidationErrors(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/auth/login", adminUA, "").Code)

	rec := api.do(t, http.MethodPost, "/api/students", adminUA, `{"name":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, dnamw.CodeInvalidInput, decode[dnamw.ErrorBody](t, rec).Code)

	rec = api.do(t, http.MethodPost, "/api/students", adminUA, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/api/students", adminUA, studentJSON).Code)
	rec = api.do(t, http.MethodPost, "/api/students", adminUA, studentJSON)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[dnamw.ErrorBody](t, rec).Message, "already exists")

	rec = api.do(t, http.MethodPut, "/api/courses/abc", adminUA, `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/certificates", adminUA, `{"studentId":1,"courseId":7,"completionDate":"2025-02-28"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCertificatesAndStats(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/auth/login", adminUA, "").Code)
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/api/students", adminUA, studentJSON).Code)
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/api/courses", adminUA,
		`{"title":"Applied Genetics","code":"GEN-101","description":"Sequencing","duration":12,"category":"Science","level":"Beginner"}`).Code)

	rec := api.do(t, http.MethodPost, "/api/certificates", adminUA, `{"studentId":1,"courseId":1,"completionDate":"2025-02-28"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	cert := decode[records.Certificate](t, rec)
	assert.Equal(t, "NS-CERT-2025-001", cert.CertificateID)

	rec = api.do(t, http.MethodGet, "/api/certificates/1", strangerUA, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada Lovelace", decode[records.Certificate](t, rec).StudentName)

	rec = api.do(t, http.MethodGet, "/api/stats", strangerUA, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, records.Stats{TotalStudents: 1, ActiveCourses: 1, CertificatesIssued: 1, ThisMonth: 1}, decode[records.Stats](t, rec))

	rec = api.do(t, http.MethodGet, "/api/students", strangerUA, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]records.Student](t, rec), 1)
}

func TestDiagnosticHeadersOnEveryResponse(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/api/stats", "/health", "/no-such-route"} {
		rec := api.do(t, http.MethodGet, path, instructorUA, "")
		assert.Equal(t, "Nuralai School", rec.Header().Get(dnamw.HeaderInstitution), path)
		assert.Equal(t, "Educational Services Provider", rec.Header().Get(dnamw.HeaderInstitutionType), path)
		assert.Equal(t, "instructor", rec.Header().Get(dnamw.HeaderRole), path)
		assert.Equal(t, "80", rec.Header().Get(dnamw.HeaderTrustScore), path)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", strangerUA, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[healthResponse](t, rec).Status)

	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/auth/login", adminUA, "").Code)
	rec = api.do(t, http.MethodGet, "/metrics", strangerUA, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dnaauth_login_success_total 1")
}

func TestRealIPHeaderChangesFingerprint(t *testing.T) {
	api := newTestAPI(t)

	r := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	r.Header.Set("X-Real-IP", clientIP)
	r.Header.Set("User-Agent", adminUA)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, r)

	assert.Equal(t, "admin", rec.Header().Get(dnamw.HeaderRole))
}
