package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/vnkhanh/e-storybook-backend/metrics"
	"github.com/vnkhanh/e-storybook-backend/models"
)

// ProviderFactory dựng Orchestrator cho từng lần sinh truyện.
// Ảnh luôn đi qua Suna nên mỗi lần chạy đều mint đúng một token.
type ProviderFactory struct {
	minter   TokenMinter
	suna     SunaAPI
	writer   StoryWriter
	narrator Narrator
	metrics  *metrics.Metrics
	log      *zap.Logger
}

type FactoryOption func(*ProviderFactory)

// WithStoryWriter thay Suna ở bước sinh nội dung
func WithStoryWriter(w StoryWriter) FactoryOption {
	return func(f *ProviderFactory) { f.writer = w }
}

// WithNarrator thay Suna ở bước sinh audio
func WithNarrator(n Narrator) FactoryOption {
	return func(f *ProviderFactory) { f.narrator = n }
}

func NewPipelineFactory(minter TokenMinter, suna SunaAPI, m *metrics.Metrics, log *zap.Logger, opts ...FactoryOption) *ProviderFactory {
	f := &ProviderFactory{minter: minter, suna: suna, metrics: m, log: log}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *ProviderFactory) ForUser(ctx context.Context, user *models.AuthUser) (Pipeline, error) {
	token, err := f.minter.MintExchangeToken(ctx, user)
	if err != nil {
		return nil, err
	}
	session := NewSunaSession(f.suna, token)

	var writer StoryWriter = session
	if f.writer != nil {
		writer = f.writer
	}
	var narrator Narrator = session
	if f.narrator != nil {
		narrator = f.narrator
	}
	return NewOrchestrator(writer, session, narrator, f.metrics, f.log.With(zap.String("user_id", user.ID))), nil
}
