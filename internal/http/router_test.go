package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accesshandler "signalbox/internal/access/handler"
	accessservice "signalbox/internal/access/service"
	"signalbox/internal/intake"
	msgservice "signalbox/internal/messaging/service"
	msgstore "signalbox/internal/messaging/store/messages"
	"signalbox/internal/platform/metrics"
	"signalbox/internal/platform/middleware"
	"signalbox/internal/ratelimit"
	"signalbox/internal/reportcase/credential"
	casehandler "signalbox/internal/reportcase/handler"
	caseservice "signalbox/internal/reportcase/service"
	"signalbox/internal/reportcase/store/cases"
	tenantservice "signalbox/internal/tenant/service"
	"signalbox/internal/tenant/store/tenants"
	id "signalbox/pkg/domain"
	"signalbox/pkg/events"
)

const (
	testJWTKey    = "router-test-jwt-key"
	testUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36"
)

func newTestServer(t *testing.T, rateLimit int) (http.Handler, id.TenantID) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	hasher, err := credential.NewHasher("router-test-credential-key")
	require.NoError(t, err)
	publisher := events.NewPublisher(events.NewMemorySink(), events.WithLogger(logger))
	store := cases.NewInMemory()
	msgs := msgservice.New(msgstore.NewInMemory(), logger)
	m := metrics.NewForTest()

	tenantSvc := tenantservice.New(tenants.NewInMemory(), logger)
	tenant, err := tenantSvc.Create(context.Background(), "acme-corp", "ACME Corporation")
	require.NoError(t, err)

	caseSvc := caseservice.New(store, msgs, intake.NewGate(), hasher, publisher, m, logger)
	accessSvc := accessservice.New(store, msgs, hasher, publisher, m, logger)

	router := New(Deps{
		Public:    accesshandler.New(tenantSvc, caseSvc, accessSvc, logger),
		Staff:     casehandler.New(caseSvc, logger),
		StaffAuth: middleware.NewStaffAuth(testJWTKey, logger),
		Metrics:   m,
		Limiter:   ratelimit.NewInMemory(time.Minute),
		RateLimit: rateLimit,
		Logger:    logger,
	})
	return router, tenant.ID
}

func submitPayload() map[string]any {
	return map[string]any{
		"category":     "safety",
		"title":        "Forklift operated without certification",
		"description":  "An employee has been operating the forklift for weeks without holding the required certification.",
		"is_anonymous": true,
		"honeypot":     "",
		"elapsed_ms":   12000,
	}
}

func postJSON(t *testing.T, router http.Handler, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", testUserAgent)
	req.RemoteAddr = "10.1.2.3:55001"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_PublicSubmitAndTrack(t *testing.T) {
	router, _ := newTestServer(t, 100)

	rec := postJSON(t, router, "/public/channels/acme-corp/reports", "", submitPayload())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		CaseNumber string `json:"case_number"`
		Credential string `json:"credential"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Credential, 26)

	rec = postJSON(t, router, "/public/track", "", map[string]string{"credential": resp.Credential})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_StaffRequiresToken(t *testing.T) {
	router, _ := newTestServer(t, 100)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_StaffFlow(t *testing.T) {
	router, tenantID := newTestServer(t, 100)

	rec := postJSON(t, router, "/public/channels/acme-corp/reports", "", submitPayload())
	require.Equal(t, http.StatusCreated, rec.Code)

	token, err := middleware.IssueStaffToken(testJWTKey, tenantID, id.NewActorID(), time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	listRec := httptest.NewRecorder()
	router.ServeHTTP(listRec, req)
	require.Equal(t, http.StatusOK, listRec.Code)

	var listed []map[string]any
	require.NoError(t, json.NewDecoder(listRec.Body).Decode(&listed))
	require.Len(t, listed, 1)

	caseID := listed[0]["id"].(string)
	rec = postJSON(t, router, "/api/v1/cases/"+caseID+"/status", token, map[string]string{"status": "ACKNOWLEDGED"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRouter_ForeignTenantTokenSeesNothing(t *testing.T) {
	router, _ := newTestServer(t, 100)

	rec := postJSON(t, router, "/public/channels/acme-corp/reports", "", submitPayload())
	require.Equal(t, http.StatusCreated, rec.Code)

	token, err := middleware.IssueStaffToken(testJWTKey, id.NewTenantID(), id.NewActorID(), time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	listRec := httptest.NewRecorder()
	router.ServeHTTP(listRec, req)
	require.Equal(t, http.StatusOK, listRec.Code)

	var listed []map[string]any
	require.NoError(t, json.NewDecoder(listRec.Body).Decode(&listed))
	assert.Empty(t, listed)
}

func TestRouter_RateLimit(t *testing.T) {
	router, _ := newTestServer(t, 2)

	body := map[string]string{"credential": "ABCDEFGHJKMNPQRSTVWXYZ0123"}
	assert.Equal(t, http.StatusNotFound, postJSON(t, router, "/public/track", "", body).Code)
	assert.Equal(t, http.StatusNotFound, postJSON(t, router, "/public/track", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, postJSON(t, router, "/public/track", "", body).Code)
}

func TestRouter_Healthz(t *testing.T) {
	router, _ := newTestServer(t, 100)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
