package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/vnkhanh/e-storybook-backend/apperror"
	"github.com/vnkhanh/e-storybook-backend/metrics"
	"github.com/vnkhanh/e-storybook-backend/middleware"
	mockservices "github.com/vnkhanh/e-storybook-backend/mocks/services"
	"github.com/vnkhanh/e-storybook-backend/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(verifier *mockservices.MockIdentityVerifier, optional bool) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler(zap.NewNop()))
	auth := middleware.AuthMiddleware(verifier)
	if optional {
		auth = middleware.OptionalAuthMiddleware(verifier)
	}
	r.GET("/me", auth, func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": user.ID})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		setup    func(v *mockservices.MockIdentityVerifier)
		wantCode int
		wantBody string
	}{
		{
			name:     "no header",
			wantCode: http.StatusUnauthorized,
			wantBody: `{"success":false,"error":"Missing or invalid authorization header"}`,
		},
		{
			name:     "wrong scheme",
			headers:  map[string]string{"Authorization": "Token abc"},
			wantCode: http.StatusUnauthorized,
			wantBody: `{"success":false,"error":"Missing or invalid authorization header"}`,
		},
		{
			name:    "verifier rejects",
			headers: map[string]string{"Authorization": "Bearer bad"},
			setup: func(v *mockservices.MockIdentityVerifier) {
				v.EXPECT().Verify(gomock.Any(), "bad").Return(nil, errors.New("network down"))
			},
			wantCode: http.StatusUnauthorized,
			wantBody: `{"success":false,"error":"Invalid user token"}`,
		},
		{
			name:    "bearer header",
			headers: map[string]string{"Authorization": "Bearer good"},
			setup: func(v *mockservices.MockIdentityVerifier) {
				v.EXPECT().Verify(gomock.Any(), "good").Return(&models.AuthUser{ID: "u1"}, nil)
			},
			wantCode: http.StatusOK,
			wantBody: `{"id":"u1"}`,
		},
		{
			name:    "x-auth-token fallback",
			headers: map[string]string{"X-Auth-Token": "Bearer ios"},
			setup: func(v *mockservices.MockIdentityVerifier) {
				v.EXPECT().Verify(gomock.Any(), "ios").Return(&models.AuthUser{ID: "u2"}, nil)
			},
			wantCode: http.StatusOK,
			wantBody: `{"id":"u2"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			verifier := mockservices.NewMockIdentityVerifier(ctrl)
			if tt.setup != nil {
				tt.setup(verifier)
			}

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			newEngine(verifier, false).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := mockservices.NewMockIdentityVerifier(ctrl)
	verifier.EXPECT().Verify(gomock.Any(), "expired").Return(nil, apperror.Unauthorized("Invalid user token"))

	r := newEngine(verifier, true)

	for _, header := range []string{"", "Bearer expired"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"anonymous":true}`, rec.Body.String())
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(middleware.ErrorHandler(zap.NewNop()))
	r.GET("/upstream", func(c *gin.Context) {
		_ = c.Error(apperror.Upstream("Suna API", 429, "slow down"))
	})
	r.GET("/internal", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: connection refused"))
	})
	r.GET("/conflict", func(c *gin.Context) {
		_ = c.Error(apperror.Conflict("Already liked"))
	})

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/upstream", http.StatusInternalServerError, `{"success":false,"error":"Suna API error (429): slow down","upstreamStatus":429}`},
		{"/internal", http.StatusInternalServerError, `{"success":false,"error":"Internal server error"}`},
		{"/conflict", http.StatusConflict, `{"success":false,"error":"Already liked"}`},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.wantCode, rec.Code, tt.path)
		assert.JSONEq(t, tt.wantBody, rec.Body.String(), tt.path)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(middleware.Metrics(m))
	r.GET("/books/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books/"+id, nil))
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(),
		`storybook_http_requests_total{method="GET",route="/books/:id",status="204"} 2`))

	n, err := testutil.GatherAndCount(m.Registry, "storybook_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
