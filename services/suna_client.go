package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"resty.dev/v3"

	"github.com/vnkhanh/e-storybook-backend/apperror"
)

const (
	ActionGenerateStory = "generate_story"
	ActionGenerateImage = "generate_image"
	ActionGenerateAudio = "generate_audio"

	defaultImageStyle = "children_illustration"
	defaultImageSize  = "1024x1024"
	defaultVoice      = "default"
	defaultAudioLang  = "zh-CN"

	sunaService = "Suna API"
)

// UpstreamCall là một request đã được ánh xạ sang endpoint của Suna
type UpstreamCall struct {
	Action string
	Method string
	Path   string
	Body   map[string]interface{}
}

func paramOr(params map[string]interface{}, key string, def interface{}) interface{} {
	v, ok := params[key]
	if !ok || v == nil {
		return def
	}
	if s, isStr := v.(string); isStr && s == "" {
		return def
	}
	return v
}

// BuildUpstreamCall ánh xạ action và tham số sang bảng endpoint cố định của Suna.
// Action lạ trả lỗi luôn, không gọi mạng.
func BuildUpstreamCall(action string, params map[string]interface{}) (*UpstreamCall, error) {
	switch action {
	case ActionGenerateStory:
		return &UpstreamCall{
			Action: action,
			Method: http.MethodPost,
			Path:   "/api/generate/story",
			Body: map[string]interface{}{
				"prompt":     params["prompt"],
				"age_group":  params["ageGroup"],
				"language":   params["language"],
				"page_count": params["pageCount"],
			},
		}, nil
	case ActionGenerateImage:
		return &UpstreamCall{
			Action: action,
			Method: http.MethodPost,
			Path:   "/api/generate/image",
			Body: map[string]interface{}{
				"prompt": params["prompt"],
				"style":  paramOr(params, "style", defaultImageStyle),
				"size":   paramOr(params, "size", defaultImageSize),
			},
		}, nil
	case ActionGenerateAudio:
		return &UpstreamCall{
			Action: action,
			Method: http.MethodPost,
			Path:   "/api/generate/audio",
			Body: map[string]interface{}{
				"text":     params["text"],
				"voice":    paramOr(params, "voice", defaultVoice),
				"language": paramOr(params, "language", defaultAudioLang),
			},
		}, nil
	default:
		return nil, apperror.Validation("Unknown action: " + action)
	}
}

//go:generate mockgen -destination=../mocks/services/mock_suna.go -package=mockservices . SunaAPI

// SunaAPI là backend sinh truyện bên thứ ba
type SunaAPI interface {
	BaseURL() string
	Call(ctx context.Context, token string, call *UpstreamCall) (json.RawMessage, error)
	TaskStatus(ctx context.Context, token, taskID string) (json.RawMessage, error)
}

type SunaClient struct {
	baseURL string
	http    *resty.Client
}

func NewSunaClient(baseURL string, timeout time.Duration) *SunaClient {
	baseURL = strings.TrimRight(baseURL, "/")
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &SunaClient{baseURL: baseURL, http: c}
}

func (c *SunaClient) BaseURL() string { return c.baseURL }

func (c *SunaClient) Close() error { return c.http.Close() }

func (c *SunaClient) Call(ctx context.Context, token string, call *UpstreamCall) (json.RawMessage, error) {
	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(token)
	if call.Body != nil {
		req.SetBody(call.Body)
	}
	resp, err := req.Execute(call.Method, call.Path)
	if err != nil {
		return nil, apperror.UpstreamWrap("Suna API request failed", err)
	}
	return decodeUpstream(resp.StatusCode(), resp.String())
}

func (c *SunaClient) TaskStatus(ctx context.Context, token, taskID string) (json.RawMessage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		Get("/api/tasks/" + url.PathEscape(taskID))
	if err != nil {
		return nil, apperror.UpstreamWrap("Suna API request failed", err)
	}
	return decodeUpstream(resp.StatusCode(), resp.String())
}

// decodeUpstream: khác 2xx thì giữ nguyên status + body, 2xx phải là JSON hợp lệ
func decodeUpstream(status int, body string) (json.RawMessage, error) {
	if status < 200 || status >= 300 {
		return nil, apperror.Upstream(sunaService, status, body)
	}
	if strings.TrimSpace(body) == "" {
		return json.RawMessage("null"), nil
	}
	if !gjson.Valid(body) {
		return nil, apperror.Upstream(sunaService, status, "malformed response: "+truncate(body, 200))
	}
	return json.RawMessage(body), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
