package services

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vnkhanh/e-storybook-backend/metrics"
	"github.com/vnkhanh/e-storybook-backend/models"
)

//go:generate mockgen -destination=../mocks/services/mock_generation.go -package=mockservices . StoryWriter,Illustrator,Narrator,Pipeline,PipelineFactory

// StoryWriter sinh toàn bộ nội dung truyện trong một lần gọi
type StoryWriter interface {
	WriteStory(ctx context.Context, req StoryRequest) (*StoryDraft, error)
}

type Illustrator interface {
	Illustrate(ctx context.Context, prompt string) (string, error)
}

type Narrator interface {
	Narrate(ctx context.Context, text string, lang models.Language) (string, error)
}

type StoryRequest struct {
	Title     string
	Prompt    string
	AgeGroup  models.AgeGroup
	Language  models.Language
	PageCount int
}

type DraftPage struct {
	PageNumber  int
	Text        string
	ImagePrompt string
}

type StoryDraft struct {
	Title   string
	Summary string
	Pages   []DraftPage
}

// GeneratedPage: ImageURL/AudioURL rỗng nghĩa là bước tương ứng đã thất bại
type GeneratedPage struct {
	PageNumber  int
	Text        string
	ImagePrompt string
	ImageURL    string
	AudioURL    string
}

type GeneratedStorybook struct {
	Title   string
	Summary string
	Pages   []GeneratedPage
}

type PageInput struct {
	Text        string
	ImagePrompt string
	Language    models.Language
}

type PageMedia struct {
	ImageURL string
	AudioURL string
}

const (
	StageStory = "story"
	StageImage = "image"
	StageAudio = "audio"
	StageDone  = "done"
)

type ProgressEvent struct {
	Stage string `json:"stage"`
	Page  int    `json:"page,omitempty"`
	Done  int    `json:"done"`
	Total int    `json:"total"`
	Error string `json:"error,omitempty"`
}

// ProgressFunc được gọi đồng thời từ nhiều goroutine khi chạy song song các trang
type ProgressFunc func(ProgressEvent)

type Pipeline interface {
	GenerateStorybook(ctx context.Context, req StoryRequest, progress ProgressFunc) (*GeneratedStorybook, error)
	RegeneratePage(ctx context.Context, in PageInput) PageMedia
}

// PipelineFactory gắn pipeline với credential upstream của người dùng đang gọi
type PipelineFactory interface {
	ForUser(ctx context.Context, user *models.AuthUser) (Pipeline, error)
}

type Orchestrator struct {
	writer      StoryWriter
	illustrator Illustrator
	narrator    Narrator
	metrics     *metrics.Metrics
	log         *zap.Logger
}

func NewOrchestrator(writer StoryWriter, illustrator Illustrator, narrator Narrator, m *metrics.Metrics, log *zap.Logger) *Orchestrator {
	return &Orchestrator{writer: writer, illustrator: illustrator, narrator: narrator, metrics: m, log: log}
}

func (o *Orchestrator) GenerateStorybook(ctx context.Context, req StoryRequest, progress ProgressFunc) (*GeneratedStorybook, error) {
	start := time.Now()
	notify := func(ev ProgressEvent) {
		if progress != nil {
			progress(ev)
		}
	}

	notify(ProgressEvent{Stage: StageStory, Total: 1})
	draft, err := o.writer.WriteStory(ctx, req)
	o.metrics.ObserveGeneration(StageStory, err)
	if err != nil {
		o.metrics.ObserveStorybook(time.Since(start), err)
		notify(ProgressEvent{Stage: StageStory, Total: 1, Error: err.Error()})
		return nil, err
	}
	if req.PageCount > 0 && len(draft.Pages) != req.PageCount {
		o.log.Warn("story page count differs from request",
			zap.Int("requested", req.PageCount),
			zap.Int("returned", len(draft.Pages)))
	}

	pages := make([]GeneratedPage, len(draft.Pages))
	for i, p := range draft.Pages {
		pages[i] = GeneratedPage{PageNumber: p.PageNumber, Text: p.Text, ImagePrompt: p.ImagePrompt}
	}

	// Lệnh đã phát đi thì chạy tới cùng, không theo cancel của request
	detached := context.WithoutCancel(ctx)
	total := len(pages)

	var g errgroup.Group
	var imagesDone atomic.Int32
	for i := range pages {
		g.Go(func() error {
			url, err := o.illustrate(detached, pages[i])
			ev := ProgressEvent{Stage: StageImage, Page: pages[i].PageNumber, Total: total}
			if err != nil {
				ev.Error = err.Error()
			} else {
				pages[i].ImageURL = url
			}
			ev.Done = int(imagesDone.Add(1))
			notify(ev)
			return nil
		})
	}
	_ = g.Wait()

	var audio errgroup.Group
	var audioDone atomic.Int32
	for i := range pages {
		audio.Go(func() error {
			url, err := o.narrate(detached, pages[i].PageNumber, pages[i].Text, req.Language)
			ev := ProgressEvent{Stage: StageAudio, Page: pages[i].PageNumber, Total: total}
			if err != nil {
				ev.Error = err.Error()
			} else {
				pages[i].AudioURL = url
			}
			ev.Done = int(audioDone.Add(1))
			notify(ev)
			return nil
		})
	}
	_ = audio.Wait()

	title := strings.TrimSpace(draft.Title)
	if title == "" {
		title = req.Title
	}
	o.metrics.ObserveStorybook(time.Since(start), nil)
	notify(ProgressEvent{Stage: StageDone, Done: total, Total: total})

	return &GeneratedStorybook{Title: title, Summary: draft.Summary, Pages: pages}, nil
}

// RegeneratePage chạy ảnh và audio song song cho một trang, lỗi của bước nào thì bước đó để trống
func (o *Orchestrator) RegeneratePage(ctx context.Context, in PageInput) PageMedia {
	detached := context.WithoutCancel(ctx)
	page := GeneratedPage{Text: in.Text, ImagePrompt: in.ImagePrompt}

	var media PageMedia
	var g errgroup.Group
	g.Go(func() error {
		if url, err := o.illustrate(detached, page); err == nil {
			media.ImageURL = url
		}
		return nil
	})
	g.Go(func() error {
		if url, err := o.narrate(detached, 0, in.Text, in.Language); err == nil {
			media.AudioURL = url
		}
		return nil
	})
	_ = g.Wait()
	return media
}

func (o *Orchestrator) illustrate(ctx context.Context, page GeneratedPage) (string, error) {
	prompt := page.ImagePrompt
	if strings.TrimSpace(prompt) == "" {
		prompt = page.Text
	}
	url, err := o.illustrator.Illustrate(ctx, prompt)
	if err == nil && url == "" {
		err = errEmptyMedia
	}
	o.metrics.ObserveGeneration(StageImage, err)
	if err != nil {
		o.log.Warn("illustration failed, page left without image",
			zap.Int("page", page.PageNumber), zap.Error(err))
	}
	return url, err
}

func (o *Orchestrator) narrate(ctx context.Context, pageNumber int, text string, lang models.Language) (string, error) {
	url, err := o.narrator.Narrate(ctx, text, lang)
	if err == nil && url == "" {
		err = errEmptyMedia
	}
	o.metrics.ObserveGeneration(StageAudio, err)
	if err != nil {
		o.log.Warn("narration failed, page left without audio",
			zap.Int("page", pageNumber), zap.Error(err))
	}
	return url, err
}
