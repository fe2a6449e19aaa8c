package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/vnkhanh/e-storybook-backend/apperror"
	"github.com/vnkhanh/e-storybook-backend/models"
)

const geminiService = "Gemini"

// GeminiStoryWriter viết nội dung truyện bằng Gemini, ảnh và audio vẫn đi qua provider khác
type GeminiStoryWriter struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

func NewGeminiStoryWriter(ctx context.Context, apiKey, model string, log *zap.Logger) (*GeminiStoryWriter, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("không thể tạo Gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiStoryWriter{client: client, model: model, log: log}, nil
}

func (w *GeminiStoryWriter) Close() error { return w.client.Close() }

func (w *GeminiStoryWriter) WriteStory(ctx context.Context, req StoryRequest) (*StoryDraft, error) {
	model := w.client.GenerativeModel(w.model)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(storySystemPrompt)}}

	resp, err := model.GenerateContent(ctx, genai.Text(buildStoryPrompt(req)))
	if err != nil {
		return nil, apperror.UpstreamWrap("Gemini request failed", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, apperror.Upstream(geminiService, 200, "empty candidate list")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	draft, err := parseStoryDraft(sb.String())
	if err != nil {
		w.log.Warn("gemini returned unusable story", zap.Error(err))
		return nil, err
	}
	return draft, nil
}

const storySystemPrompt = `You write picture books for children.
Reply with JSON only, no markdown:
{"title": string, "summary": string, "pages": [{"pageNumber": number, "text": string, "imagePrompt": string}]}
Each imagePrompt describes one illustration for that page in English, in a warm children's illustration style.`

func ageGroupHint(a models.AgeGroup) string {
	switch a {
	case models.AgeToddler:
		return "toddlers aged 1-3: one or two very short sentences per page, simple repeated words"
	case models.AgePreschool:
		return "preschoolers aged 3-6: two to four short sentences per page"
	case models.AgeElementary:
		return "early readers aged 6-10: a short paragraph per page"
	default:
		return "readers of all ages"
	}
}

func buildStoryPrompt(req StoryRequest) string {
	lang := "English"
	if req.Language == models.LangZH {
		lang = "Simplified Chinese"
	}
	var b strings.Builder
	if req.Title != "" {
		fmt.Fprintf(&b, "Working title: %s\n", req.Title)
	}
	fmt.Fprintf(&b, "Story idea: %s\n", req.Prompt)
	fmt.Fprintf(&b, "Audience: %s\n", ageGroupHint(req.AgeGroup))
	fmt.Fprintf(&b, "Write the title, summary and page text in %s.\n", lang)
	fmt.Fprintf(&b, "Number of pages: %d\n", req.PageCount)
	return b.String()
}

// parseStoryDraft chấp nhận cả JSON bọc trong ```json ... ```
func parseStoryDraft(text string) (*StoryDraft, error) {
	text = stripCodeFence(text)
	if !gjson.Valid(text) {
		return nil, apperror.Upstream(geminiService, 200, "malformed story JSON: "+truncate(text, 200))
	}
	draft, err := parseSunaStory([]byte(text))
	if err != nil {
		return nil, apperror.Upstream(geminiService, 200, "story response has no pages")
	}
	if len(draft.Pages) == 0 {
		return nil, apperror.Upstream(geminiService, 200, "story response has no pages")
	}
	return draft, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
