package services

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/vnkhanh/e-storybook-backend/apperror"
	"github.com/vnkhanh/e-storybook-backend/metrics"
	"github.com/vnkhanh/e-storybook-backend/models"
)

const bearerPrefix = "Bearer "

// BearerToken lấy token từ header "Bearer <token>", phân biệt hoa thường như client gửi
func BearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", apperror.Unauthorized("Missing or invalid authorization header")
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", apperror.Unauthorized("Missing or invalid authorization header")
	}
	return token, nil
}

// Relay chuyển request sinh truyện của người dùng sang Suna bằng token đã mint
type Relay struct {
	identity IdentityVerifier
	minter   TokenMinter
	suna     SunaAPI
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewRelay(identity IdentityVerifier, minter TokenMinter, suna SunaAPI, m *metrics.Metrics, log *zap.Logger) *Relay {
	return &Relay{identity: identity, minter: minter, suna: suna, metrics: m, log: log}
}

// authorize: header -> xác thực người dùng -> mint token cho Suna
func (r *Relay) authorize(ctx context.Context, token string) (*models.AuthUser, string, error) {
	user, err := r.identity.Verify(ctx, token)
	if err != nil {
		if apperror.IsKind(err, apperror.KindAuth) {
			return nil, "", err
		}
		return nil, "", apperror.UnauthorizedWrap("Invalid user token", err)
	}
	minted, err := r.minter.MintExchangeToken(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, minted, nil
}

// Forward kiểm tra header và action trước khi gọi ra ngoài
func (r *Relay) Forward(ctx context.Context, authHeader, action string, params map[string]interface{}) (json.RawMessage, error) {
	token, err := BearerToken(authHeader)
	if err != nil {
		return nil, err
	}
	call, err := BuildUpstreamCall(action, params)
	if err != nil {
		return nil, err
	}

	user, minted, err := r.authorize(ctx, token)
	if err != nil {
		r.metrics.ObserveRelay(action, err)
		return nil, err
	}

	data, err := r.suna.Call(ctx, minted, call)
	r.metrics.ObserveRelay(action, err)
	if err != nil {
		r.log.Warn("suna relay failed",
			zap.String("action", action),
			zap.String("user_id", user.ID),
			zap.Error(err))
		return nil, err
	}
	return data, nil
}

func (r *Relay) TaskStatus(ctx context.Context, authHeader, taskID string) (json.RawMessage, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, apperror.Validation("Missing taskId parameter")
	}
	token, err := BearerToken(authHeader)
	if err != nil {
		return nil, err
	}
	_, minted, err := r.authorize(ctx, token)
	if err != nil {
		r.metrics.ObserveRelay("task_status", err)
		return nil, err
	}
	data, err := r.suna.TaskStatus(ctx, minted, taskID)
	r.metrics.ObserveRelay("task_status", err)
	return data, err
}
