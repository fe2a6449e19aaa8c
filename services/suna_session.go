package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/tidwall/gjson"

	"github.com/vnkhanh/e-storybook-backend/apperror"
	"github.com/vnkhanh/e-storybook-backend/models"
)

var errEmptyMedia = errors.New("generation returned no media url")

// SunaSession là các provider Suna gắn với một token đã mint cho người dùng
type SunaSession struct {
	api   SunaAPI
	token string
}

func NewSunaSession(api SunaAPI, token string) *SunaSession {
	return &SunaSession{api: api, token: token}
}

func (s *SunaSession) call(ctx context.Context, action string, params map[string]interface{}) (json.RawMessage, error) {
	call, err := BuildUpstreamCall(action, params)
	if err != nil {
		return nil, err
	}
	return s.api.Call(ctx, s.token, call)
}

func (s *SunaSession) WriteStory(ctx context.Context, req StoryRequest) (*StoryDraft, error) {
	raw, err := s.call(ctx, ActionGenerateStory, map[string]interface{}{
		"prompt":    req.Prompt,
		"ageGroup":  string(req.AgeGroup),
		"language":  string(req.Language),
		"pageCount": req.PageCount,
	})
	if err != nil {
		return nil, err
	}
	return parseSunaStory(raw)
}

func (s *SunaSession) Illustrate(ctx context.Context, prompt string) (string, error) {
	raw, err := s.call(ctx, ActionGenerateImage, map[string]interface{}{
		"prompt": prompt,
		"style":  defaultImageStyle,
	})
	if err != nil {
		return "", err
	}
	return sunaField(raw, "imageUrl", "image_url").String(), nil
}

func (s *SunaSession) Narrate(ctx context.Context, text string, lang models.Language) (string, error) {
	raw, err := s.call(ctx, ActionGenerateAudio, map[string]interface{}{
		"text":     text,
		"language": string(lang),
	})
	if err != nil {
		return "", err
	}
	return sunaField(raw, "audioUrl", "audio_url").String(), nil
}

// sunaField đọc field ở gốc hoặc trong envelope {success, data}
func sunaField(raw json.RawMessage, paths ...string) gjson.Result {
	body := gjson.ParseBytes(raw)
	if data := body.Get("data"); data.IsObject() {
		body = data
	}
	for _, p := range paths {
		if v := body.Get(p); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func parseSunaStory(raw json.RawMessage) (*StoryDraft, error) {
	pages := sunaField(raw, "pages")
	if !pages.IsArray() {
		return nil, apperror.Upstream(sunaService, 200, "story response has no pages")
	}

	draft := &StoryDraft{
		Title:   sunaField(raw, "title").String(),
		Summary: sunaField(raw, "summary").String(),
	}
	for i, p := range pages.Array() {
		number := int(p.Get("pageNumber").Int())
		if number == 0 {
			number = int(p.Get("page_number").Int())
		}
		if number == 0 {
			number = i + 1
		}
		prompt := p.Get("imagePrompt").String()
		if prompt == "" {
			prompt = p.Get("image_prompt").String()
		}
		draft.Pages = append(draft.Pages, DraftPage{
			PageNumber:  number,
			Text:        p.Get("text").String(),
			ImagePrompt: prompt,
		})
	}
	sort.SliceStable(draft.Pages, func(i, j int) bool {
		return draft.Pages[i].PageNumber < draft.Pages[j].PageNumber
	})
	return draft, nil
}
