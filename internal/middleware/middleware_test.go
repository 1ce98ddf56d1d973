package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dealdesk/internal/auth"
	"dealdesk/internal/domain/models"
	"dealdesk/internal/httputil"
	"dealdesk/internal/repository/memory"
	authsvc "dealdesk/internal/service/auth"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// echoPrincipal answers 200 with the caller's user id
var echoPrincipal = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(httputil.GetUserID(r)))
})

func TestAuthMiddleware(t *testing.T) {
	verifier, err := auth.NewHMACVerifier("test-secret", testLogger())
	require.NoError(t, err)

	token, err := verifier.Sign(&models.Principal{UserID: "user-1", Role: models.RoleBank, OrgID: "bank-1"}, "", time.Hour)
	require.NoError(t, err)

	h := AuthMiddleware(verifier, testLogger())(echoPrincipal)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "/api/deals", "Bearer " + token, http.StatusOK, "user-1"},
		{"missing header", "/api/deals", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "/api/deals", "Basic " + token, http.StatusUnauthorized, ""},
		{"bad token", "/api/deals", "Bearer nope", http.StatusUnauthorized, ""},
		{"public health", "/health", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rr.Body.String())
			} else {
				assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(models.RoleBank, models.RoleClient)(echoPrincipal)

	serve := func(p *models.Principal) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if p != nil {
			req = httputil.WithPrincipal(req, p)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, serve(&models.Principal{UserID: "u", Role: models.RoleBank, OrgID: "b"}))
	assert.Equal(t, http.StatusOK, serve(&models.Principal{UserID: "u", Role: models.RoleClient, OrgID: "c"}))
	assert.Equal(t, http.StatusForbidden, serve(&models.Principal{UserID: "u", Role: models.RoleInvestor, OrgID: "i"}))
	assert.Equal(t, http.StatusUnauthorized, serve(nil))
}

func TestDealAccess(t *testing.T) {
	ctx := context.Background()
	deals := memory.NewDealRepository(memory.NewStore())
	deal := &models.Deal{BankID: "bank-1", Name: "Atlas", Status: models.DealStatusPitch}
	require.NoError(t, deals.Create(ctx, deal))
	require.NoError(t, deals.GrantInvestor(ctx, deal.ID, "fund-1"))

	access := NewDealAccess(authsvc.NewRoleBasedAuthorizer(deals), testLogger())

	r := chi.NewRouter()
	r.With(access.Read).Get("/deals/{dealID}", echoPrincipal)
	r.With(access.Write).Post("/deals/{dealID}", echoPrincipal)

	banker := &models.Principal{UserID: "banker", Role: models.RoleBank, OrgID: "bank-1"}
	investor := &models.Principal{UserID: "investor", Role: models.RoleInvestor, OrgID: "fund-1"}

	serve := func(method, dealID string, p *models.Principal) int {
		req := httptest.NewRequest(method, "/deals/"+dealID, nil)
		if p != nil {
			req = httputil.WithPrincipal(req, p)
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, serve(http.MethodGet, deal.ID, banker))
	assert.Equal(t, http.StatusOK, serve(http.MethodPost, deal.ID, banker))
	assert.Equal(t, http.StatusOK, serve(http.MethodGet, deal.ID, investor))
	assert.Equal(t, http.StatusForbidden, serve(http.MethodPost, deal.ID, investor))
	assert.Equal(t, http.StatusNotFound, serve(http.MethodGet, "missing", banker))
	assert.Equal(t, http.StatusUnauthorized, serve(http.MethodGet, deal.ID, nil))
}

func TestRecovery(t *testing.T) {
	h := Recovery(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "internal server error")
}

func TestRequestLogger(t *testing.T) {
	h := RequestLogger(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}
