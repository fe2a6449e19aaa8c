package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/vnkhanh/e-storybook-backend/apperror"
	"github.com/vnkhanh/e-storybook-backend/models"
)

//go:generate mockgen -destination=../mocks/services/mock_identity.go -package=mockservices . IdentityVerifier,TokenMinter

// IdentityVerifier trả về người dùng sở hữu session token
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*models.AuthUser, error)
}

// TokenMinter cấp credential dùng một lần cho backend sinh truyện.
// Hiện đi qua magic link nên người dùng cũng nhận thêm một email đăng nhập.
type TokenMinter interface {
	MintExchangeToken(ctx context.Context, user *models.AuthUser) (string, error)
}

type SupabaseAuthConfig struct {
	URL         string
	AnonKey     string
	ServiceKey  string
	JWTSecret   string
	RedirectTo  string
	CacheTTL    time.Duration
	HTTPTimeout time.Duration
}

type SupabaseAuth struct {
	cfg   SupabaseAuthConfig
	http  *resty.Client
	cache TokenCache
	log   *zap.Logger
}

func NewSupabaseAuth(cfg SupabaseAuthConfig, cache TokenCache, log *zap.Logger) *SupabaseAuth {
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}
	if cache == nil {
		cache = noopCache{}
	}
	return &SupabaseAuth{
		cfg:   cfg,
		http:  resty.New().SetBaseURL(cfg.URL).SetTimeout(cfg.HTTPTimeout),
		cache: cache,
		log:   log,
	}
}

func (s *SupabaseAuth) Close() error { return s.http.Close() }

func tokenCacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "auth:user:" + hex.EncodeToString(sum[:])
}

// Verify ưu tiên kiểm tra chữ ký JWT cục bộ, sau đó cache, cuối cùng gọi /auth/v1/user
func (s *SupabaseAuth) Verify(ctx context.Context, token string) (*models.AuthUser, error) {
	if token == "" {
		return nil, apperror.Unauthorized("Invalid user token")
	}
	if s.cfg.JWTSecret != "" {
		user, err := s.verifyLocal(token)
		if err == nil {
			return user, nil
		}
		s.log.Debug("local jwt verification failed, asking supabase", zap.Error(err))
	}

	key := tokenCacheKey(token)
	if user, ok := s.cache.Get(ctx, key); ok {
		return user, nil
	}

	user, err := s.verifyRemote(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.cfg.CacheTTL > 0 {
		s.cache.Set(ctx, key, user, s.cfg.CacheTTL)
	}
	return user, nil
}

type supabaseClaims struct {
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

func (s *SupabaseAuth) verifyLocal(token string) (*models.AuthUser, error) {
	var claims supabaseClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwt parse: %w", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("jwt invalid")
	}
	return &models.AuthUser{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  metadataName(claims.UserMetadata),
	}, nil
}

func metadataName(meta map[string]interface{}) string {
	for _, key := range []string{"full_name", "name", "display_name"} {
		if v, ok := meta[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func (s *SupabaseAuth) verifyRemote(ctx context.Context, token string) (*models.AuthUser, error) {
	apiKey := s.cfg.AnonKey
	if apiKey == "" {
		apiKey = s.cfg.ServiceKey
	}
	resp, err := s.http.R().
		SetContext(ctx).
		SetHeader("apikey", apiKey).
		SetAuthToken(token).
		Get("/auth/v1/user")
	if err != nil {
		return nil, apperror.UnauthorizedWrap("Invalid user token", err)
	}
	if resp.StatusCode() != 200 {
		return nil, apperror.Unauthorized("Invalid user token")
	}

	body := resp.String()
	id := gjson.Get(body, "id").String()
	if id == "" {
		return nil, apperror.Unauthorized("Invalid user token")
	}
	name := gjson.Get(body, "user_metadata.full_name").String()
	if name == "" {
		name = gjson.Get(body, "user_metadata.name").String()
	}
	return &models.AuthUser{
		ID:    id,
		Email: gjson.Get(body, "email").String(),
		Name:  name,
	}, nil
}

// MintExchangeToken tạo magic link qua admin API và lấy tham số token trong link
func (s *SupabaseAuth) MintExchangeToken(ctx context.Context, user *models.AuthUser) (string, error) {
	if user == nil || user.Email == "" {
		return "", apperror.UpstreamWrap("Failed to generate auth link", fmt.Errorf("user has no email"))
	}
	resp, err := s.http.R().
		SetContext(ctx).
		SetHeader("apikey", s.cfg.ServiceKey).
		SetAuthToken(s.cfg.ServiceKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"type":        "magiclink",
			"email":       user.Email,
			"redirect_to": s.cfg.RedirectTo,
		}).
		Post("/auth/v1/admin/generate_link")
	if err != nil {
		return "", apperror.UpstreamWrap("Failed to generate auth link", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return "", apperror.Upstream("Supabase auth", resp.StatusCode(), resp.String())
	}

	body := resp.String()
	link := gjson.Get(body, "action_link").String()
	if link == "" {
		link = gjson.Get(body, "properties.action_link").String()
	}
	token, err := tokenFromLink(link)
	if err != nil {
		return "", apperror.UpstreamWrap("Failed to extract token from auth link", err)
	}
	return token, nil
}

func tokenFromLink(link string) (string, error) {
	if link == "" {
		return "", fmt.Errorf("empty action link")
	}
	u, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	token := u.Query().Get("token")
	if token == "" {
		return "", fmt.Errorf("no token parameter in action link")
	}
	return token, nil
}
