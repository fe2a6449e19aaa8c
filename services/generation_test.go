package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/vnkhanh/e-storybook-backend/apperror"
	"github.com/vnkhanh/e-storybook-backend/metrics"
	mockservices "github.com/vnkhanh/e-storybook-backend/mocks/services"
	"github.com/vnkhanh/e-storybook-backend/models"
	"github.com/vnkhanh/e-storybook-backend/services"
)

type orchestratorMocks struct {
	writer      *mockservices.MockStoryWriter
	illustrator *mockservices.MockIllustrator
	narrator    *mockservices.MockNarrator
}

func newOrchestrator(t *testing.T) (*services.Orchestrator, orchestratorMocks) {
	ctrl := gomock.NewController(t)
	m := orchestratorMocks{
		writer:      mockservices.NewMockStoryWriter(ctrl),
		illustrator: mockservices.NewMockIllustrator(ctrl),
		narrator:    mockservices.NewMockNarrator(ctrl),
	}
	return services.NewOrchestrator(m.writer, m.illustrator, m.narrator, metrics.New(), zap.NewNop()), m
}

func threePageDraft() *services.StoryDraft {
	return &services.StoryDraft{
		Title:   "The Lost Kite",
		Summary: "A kite finds its way home.",
		Pages: []services.DraftPage{
			{PageNumber: 1, Text: "page one", ImagePrompt: "kite in sky"},
			{PageNumber: 2, Text: "page two", ImagePrompt: "kite in tree"},
			{PageNumber: 3, Text: "page three", ImagePrompt: "kite at home"},
		},
	}
}

func TestOrchestrator_GenerateStorybook(t *testing.T) {
	o, m := newOrchestrator(t)
	req := services.StoryRequest{Title: "Kite", Prompt: "a kite", AgeGroup: models.AgeToddler, Language: models.LangEN, PageCount: 3}

	m.writer.EXPECT().WriteStory(gomock.Any(), req).Return(threePageDraft(), nil)
	m.illustrator.EXPECT().Illustrate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, prompt string) (string, error) {
			if prompt == "kite in tree" {
				return "", errors.New("image backend down")
			}
			return "https://img/" + prompt, nil
		}).Times(3)
	m.narrator.EXPECT().Narrate(gomock.Any(), gomock.Any(), models.LangEN).
		DoAndReturn(func(_ context.Context, text string, _ models.Language) (string, error) {
			if text == "page three" {
				return "", errors.New("tts quota")
			}
			return "https://audio/" + text, nil
		}).Times(3)

	var mu sync.Mutex
	var events []services.ProgressEvent
	book, err := o.GenerateStorybook(context.Background(), req, func(ev services.ProgressEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	require.NoError(t, err)

	assert.Equal(t, "The Lost Kite", book.Title)
	require.Len(t, book.Pages, 3)

	assert.Equal(t, "https://img/kite in sky", book.Pages[0].ImageURL)
	assert.Equal(t, "https://audio/page one", book.Pages[0].AudioURL)

	assert.Empty(t, book.Pages[1].ImageURL)
	assert.Equal(t, "https://audio/page two", book.Pages[1].AudioURL)

	assert.Equal(t, "https://img/kite at home", book.Pages[2].ImageURL)
	assert.Empty(t, book.Pages[2].AudioURL)

	// story + 3 image + 3 audio + done
	require.Len(t, events, 8)
	assert.Equal(t, services.StageStory, events[0].Stage)
	assert.Equal(t, services.StageDone, events[7].Stage)
}

func TestOrchestrator_TextFailureAborts(t *testing.T) {
	o, m := newOrchestrator(t)
	upstream := apperror.Upstream("Suna API", 503, "busy")

	m.writer.EXPECT().WriteStory(gomock.Any(), gomock.Any()).Return(nil, upstream)

	book, err := o.GenerateStorybook(context.Background(), services.StoryRequest{PageCount: 2}, nil)
	assert.Nil(t, book)
	assert.ErrorIs(t, err, upstream)
}

func TestOrchestrator_PassesThroughPageCountMismatch(t *testing.T) {
	o, m := newOrchestrator(t)

	m.writer.EXPECT().WriteStory(gomock.Any(), gomock.Any()).Return(threePageDraft(), nil)
	m.illustrator.EXPECT().Illustrate(gomock.Any(), gomock.Any()).Return("https://img", nil).Times(3)
	m.narrator.EXPECT().Narrate(gomock.Any(), gomock.Any(), gomock.Any()).Return("https://audio", nil).Times(3)

	book, err := o.GenerateStorybook(context.Background(), services.StoryRequest{Title: "fallback", PageCount: 5}, nil)
	require.NoError(t, err)
	assert.Len(t, book.Pages, 3)
}

func TestOrchestrator_TitleFallsBackToRequest(t *testing.T) {
	o, m := newOrchestrator(t)
	draft := &services.StoryDraft{Pages: []services.DraftPage{{PageNumber: 1, Text: "only page", ImagePrompt: "sun"}}}

	m.writer.EXPECT().WriteStory(gomock.Any(), gomock.Any()).Return(draft, nil)
	m.illustrator.EXPECT().Illustrate(gomock.Any(), "sun").Return("https://img", nil)
	m.narrator.EXPECT().Narrate(gomock.Any(), "only page", gomock.Any()).Return("https://audio", nil)

	book, err := o.GenerateStorybook(context.Background(), services.StoryRequest{Title: "My Title", PageCount: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, "My Title", book.Title)
}

func TestOrchestrator_DetachedFromCallerCancellation(t *testing.T) {
	o, m := newOrchestrator(t)
	ctx, cancel := context.WithCancel(context.Background())

	m.writer.EXPECT().WriteStory(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, services.StoryRequest) (*services.StoryDraft, error) {
			// client ngắt kết nối ngay sau bước text
			cancel()
			return threePageDraft(), nil
		})
	m.illustrator.EXPECT().Illustrate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string) (string, error) {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "https://img", nil
		}).Times(3)
	m.narrator.EXPECT().Narrate(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ models.Language) (string, error) {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "https://audio", nil
		}).Times(3)

	book, err := o.GenerateStorybook(ctx, services.StoryRequest{PageCount: 3}, nil)
	require.NoError(t, err)
	for _, p := range book.Pages {
		assert.Equal(t, "https://img", p.ImageURL)
		assert.Equal(t, "https://audio", p.AudioURL)
	}
}

func TestOrchestrator_RegeneratePage(t *testing.T) {
	tests := []struct {
		name     string
		imageErr error
		audioErr error
		want     services.PageMedia
	}{
		{"both succeed", nil, nil, services.PageMedia{ImageURL: "https://img/new", AudioURL: "https://audio/new"}},
		{"image fails", errors.New("x"), nil, services.PageMedia{AudioURL: "https://audio/new"}},
		{"audio fails", nil, errors.New("x"), services.PageMedia{ImageURL: "https://img/new"}},
		{"both fail", errors.New("x"), errors.New("y"), services.PageMedia{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, m := newOrchestrator(t)
			imgURL, audioURL := "https://img/new", "https://audio/new"
			if tt.imageErr != nil {
				imgURL = ""
			}
			if tt.audioErr != nil {
				audioURL = ""
			}
			m.illustrator.EXPECT().Illustrate(gomock.Any(), "a dragon").Return(imgURL, tt.imageErr)
			m.narrator.EXPECT().Narrate(gomock.Any(), "once upon a time", models.LangZH).Return(audioURL, tt.audioErr)

			got := o.RegeneratePage(context.Background(), services.PageInput{
				Text: "once upon a time", ImagePrompt: "a dragon", Language: models.LangZH,
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProviderFactory_ForUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	minter := mockservices.NewMockTokenMinter(ctrl)
	suna := mockservices.NewMockSunaAPI(ctrl)
	writer := mockservices.NewMockStoryWriter(ctrl)
	user := &models.AuthUser{ID: "u1", Email: "u1@example.com"}

	minter.EXPECT().MintExchangeToken(gomock.Any(), user).Return("minted", nil).Times(1)
	writer.EXPECT().WriteStory(gomock.Any(), gomock.Any()).Return(&services.StoryDraft{
		Pages: []services.DraftPage{{PageNumber: 1, Text: "t", ImagePrompt: "p"}},
	}, nil)
	suna.EXPECT().Call(gomock.Any(), "minted", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, call *services.UpstreamCall) (json.RawMessage, error) {
			switch call.Action {
			case services.ActionGenerateImage:
				return json.RawMessage(`{"success":true,"data":{"imageUrl":"https://img/1","prompt":"p"}}`), nil
			case services.ActionGenerateAudio:
				return json.RawMessage(`{"audioUrl":"https://audio/1","duration":3.5}`), nil
			}
			return nil, errors.New("unexpected action " + call.Action)
		}).Times(2)

	f := services.NewPipelineFactory(minter, suna, nil, zap.NewNop(), services.WithStoryWriter(writer))
	p, err := f.ForUser(context.Background(), user)
	require.NoError(t, err)

	book, err := p.GenerateStorybook(context.Background(), services.StoryRequest{Title: "t", PageCount: 1}, nil)
	require.NoError(t, err)
	require.Len(t, book.Pages, 1)
	assert.Equal(t, "https://img/1", book.Pages[0].ImageURL)
	assert.Equal(t, "https://audio/1", book.Pages[0].AudioURL)
}

func TestProviderFactory_MintFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	minter := mockservices.NewMockTokenMinter(ctrl)
	minter.EXPECT().MintExchangeToken(gomock.Any(), gomock.Any()).
		Return("", apperror.UpstreamWrap("Failed to generate auth link", errors.New("503")))

	f := services.NewPipelineFactory(minter, mockservices.NewMockSunaAPI(ctrl), nil, zap.NewNop())
	_, err := f.ForUser(context.Background(), &models.AuthUser{ID: "u", Email: "e@x"})
	assert.True(t, apperror.IsKind(err, apperror.KindUpstream))
}
