package services_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vnkhanh/e-storybook-backend/apperror"
	"github.com/vnkhanh/e-storybook-backend/models"
	"github.com/vnkhanh/e-storybook-backend/services"
)

type memoryCache struct {
	mu    sync.Mutex
	items map[string]*models.AuthUser
}

func (c *memoryCache) Get(_ context.Context, key string) (*models.AuthUser, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.items[key]
	return u, ok
}

func (c *memoryCache) Set(_ context.Context, key string, user *models.AuthUser, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = map[string]*models.AuthUser{}
	}
	c.items[key] = user
}

func newAuthServer(t *testing.T, linkBody string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/auth/v1/user":
			if r.Header.Get("Authorization") != "Bearer good-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = io.WriteString(w, `{"id":"user-1","email":"an@example.com","user_metadata":{"name":"An"}}`)
		case "/auth/v1/admin/generate_link":
			_, _ = io.WriteString(w, linkBody)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestSupabaseAuth_VerifyLocalJWT(t *testing.T) {
	srv, hits := newAuthServer(t, "")
	auth := services.NewSupabaseAuth(services.SupabaseAuthConfig{
		URL:       srv.URL,
		JWTSecret: "super-secret",
	}, nil, zap.NewNop())

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":           "user-42",
		"email":         "lan@example.com",
		"user_metadata": map[string]interface{}{"full_name": "Lan"},
		"exp":           time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("super-secret"))
	require.NoError(t, err)

	user, err := auth.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, &models.AuthUser{ID: "user-42", Email: "lan@example.com", Name: "Lan"}, user)
	assert.EqualValues(t, 0, hits.Load())
}

func TestSupabaseAuth_VerifyFallsBackToRemote(t *testing.T) {
	srv, hits := newAuthServer(t, "")
	auth := services.NewSupabaseAuth(services.SupabaseAuthConfig{
		URL:       srv.URL,
		JWTSecret: "super-secret",
	}, nil, zap.NewNop())

	user, err := auth.Verify(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "An", user.Name)
	assert.EqualValues(t, 1, hits.Load())
}

func TestSupabaseAuth_VerifyUsesCache(t *testing.T) {
	srv, hits := newAuthServer(t, "")
	auth := services.NewSupabaseAuth(services.SupabaseAuthConfig{
		URL:      srv.URL,
		CacheTTL: time.Minute,
	}, &memoryCache{}, zap.NewNop())

	for i := 0; i < 3; i++ {
		user, err := auth.Verify(context.Background(), "good-token")
		require.NoError(t, err)
		assert.Equal(t, "an@example.com", user.Email)
	}
	assert.EqualValues(t, 1, hits.Load())
}

func TestSupabaseAuth_VerifyRejected(t *testing.T) {
	srv, _ := newAuthServer(t, "")
	auth := services.NewSupabaseAuth(services.SupabaseAuthConfig{URL: srv.URL}, nil, zap.NewNop())

	_, err := auth.Verify(context.Background(), "expired")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAuth))
	assert.Equal(t, "Invalid user token", apperror.From(err).Message)
}

func TestSupabaseAuth_MintExchangeToken(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		user    *models.AuthUser
		want    string
		wantErr string
	}{
		{
			name: "top level action link",
			body: `{"action_link":"https://x.supabase.co/auth/v1/verify?token=abc123&type=magiclink"}`,
			user: &models.AuthUser{ID: "u", Email: "a@b.c"},
			want: "abc123",
		},
		{
			name: "nested properties",
			body: `{"properties":{"action_link":"https://x.supabase.co/auth/v1/verify?type=magiclink&token=xyz"}}`,
			user: &models.AuthUser{ID: "u", Email: "a@b.c"},
			want: "xyz",
		},
		{
			name:    "link without token",
			body:    `{"action_link":"https://x.supabase.co/auth/v1/verify?type=magiclink"}`,
			user:    &models.AuthUser{ID: "u", Email: "a@b.c"},
			wantErr: "Failed to extract token from auth link",
		},
		{
			name:    "user without email",
			body:    `{}`,
			user:    &models.AuthUser{ID: "u"},
			wantErr: "Failed to generate auth link",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newAuthServer(t, tt.body)
			auth := services.NewSupabaseAuth(services.SupabaseAuthConfig{URL: srv.URL, ServiceKey: "svc"}, nil, zap.NewNop())

			got, err := auth.MintExchangeToken(context.Background(), tt.user)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, apperror.IsKind(err, apperror.KindUpstream))
				assert.Equal(t, tt.wantErr, apperror.From(err).Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRedisTokenCache_NilClientIsNoop(t *testing.T) {
	cache := services.NewRedisTokenCache(nil, zap.NewNop())
	cache.Set(context.Background(), "k", &models.AuthUser{ID: "1"}, time.Minute)
	_, ok := cache.Get(context.Background(), "k")
	assert.False(t, ok)
}
