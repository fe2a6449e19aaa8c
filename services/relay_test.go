package services_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/vnkhanh/e-storybook-backend/apperror"
	"github.com/vnkhanh/e-storybook-backend/services"
)

type upstreams struct {
	supabase *httptest.Server
	suna     *httptest.Server
	hits     atomic.Int32
}

func newUpstreams(t *testing.T) *upstreams {
	t.Helper()
	u := &upstreams{}

	u.supabase = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/v1/user":
			if r.Header.Get("Authorization") != "Bearer good-token" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"msg":"invalid JWT"}`)
				return
			}
			_, _ = io.WriteString(w, `{"id":"user-1","email":"mai@example.com","user_metadata":{"full_name":"Mai"}}`)
		case "/auth/v1/admin/generate_link":
			if r.Header.Get("apikey") != "service-key" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			_, _ = io.WriteString(w, `{"action_link":"https://project.supabase.co/auth/v1/verify?token=minted-123&type=magiclink"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	u.suna = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		if r.Header.Get("Authorization") != "Bearer minted-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/generate/image":
			var body map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["style"] != "children_illustration" || body["size"] != "1024x1024" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"imageUrl": "https://cdn.example.com/fox.png",
				"prompt":   body["prompt"],
			})
		case r.Method == http.MethodPost && r.URL.Path == "/api/generate/story":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "model overloaded")
		case r.Method == http.MethodGet && r.URL.Path == "/api/tasks/task-9":
			_, _ = io.WriteString(w, `{"taskId":"task-9","status":"completed"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	t.Cleanup(func() {
		u.supabase.Close()
		u.suna.Close()
	})
	return u
}

func (u *upstreams) relay() *services.Relay {
	auth := services.NewSupabaseAuth(services.SupabaseAuthConfig{
		URL:        u.supabase.URL,
		AnonKey:    "anon-key",
		ServiceKey: "service-key",
		RedirectTo: u.suna.URL + "/auth/callback",
	}, nil, zap.NewNop())
	suna := services.NewSunaClient(u.suna.URL, 5*time.Second)
	return services.NewRelay(auth, auth, suna, nil, zap.NewNop())
}

func TestRelay_ForwardGenerateImage(t *testing.T) {
	u := newUpstreams(t)

	data, err := u.relay().Forward(context.Background(), "Bearer good-token", "generate_image",
		map[string]interface{}{"prompt": "a fox"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/fox.png", gjson.GetBytes(data, "imageUrl").String())
	assert.Equal(t, "a fox", gjson.GetBytes(data, "prompt").String())
	// verify + mint + suna
	assert.EqualValues(t, 3, u.hits.Load())
}

func TestRelay_RejectsBeforeAnyNetworkCall(t *testing.T) {
	tests := []struct {
		name   string
		header string
		action string
		kind   apperror.Kind
		msg    string
	}{
		{"missing header", "", "generate_image", apperror.KindAuth, "Missing or invalid authorization header"},
		{"basic scheme", "Basic abc", "generate_image", apperror.KindAuth, "Missing or invalid authorization header"},
		{"empty bearer", "Bearer   ", "generate_image", apperror.KindAuth, "Missing or invalid authorization header"},
		{"unknown action", "Bearer good-token", "generate_video", apperror.KindValidation, "Unknown action: generate_video"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newUpstreams(t)
			_, err := u.relay().Forward(context.Background(), tt.header, tt.action, map[string]interface{}{})
			require.Error(t, err)
			assert.True(t, apperror.IsKind(err, tt.kind))
			assert.Equal(t, tt.msg, apperror.From(err).Message)
			assert.EqualValues(t, 0, u.hits.Load())
		})
	}
}

func TestRelay_InvalidUserToken(t *testing.T) {
	u := newUpstreams(t)

	_, err := u.relay().Forward(context.Background(), "Bearer stolen", "generate_image", map[string]interface{}{"prompt": "x"})
	require.Error(t, err)
	ae := apperror.From(err)
	assert.Equal(t, http.StatusUnauthorized, ae.Status())
	assert.Equal(t, "Invalid user token", ae.Message)
	// chỉ gọi verify, không mint
	assert.EqualValues(t, 1, u.hits.Load())
}

func TestRelay_UpstreamFailureKeepsStatusAndBody(t *testing.T) {
	u := newUpstreams(t)

	_, err := u.relay().Forward(context.Background(), "Bearer good-token", "generate_story",
		map[string]interface{}{"prompt": "p", "ageGroup": "toddler", "language": "en", "pageCount": 3})
	require.Error(t, err)
	ae := apperror.From(err)
	assert.Equal(t, apperror.KindUpstream, ae.Kind)
	assert.Equal(t, http.StatusBadGateway, ae.UpstreamStatus)
	assert.Equal(t, http.StatusInternalServerError, ae.Status())
	assert.Equal(t, "Suna API error (502): model overloaded", ae.Message)
}

func TestRelay_TaskStatus(t *testing.T) {
	t.Run("missing task id is checked first", func(t *testing.T) {
		u := newUpstreams(t)
		_, err := u.relay().TaskStatus(context.Background(), "", "  ")
		require.Error(t, err)
		assert.Equal(t, "Missing taskId parameter", apperror.From(err).Message)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
		assert.EqualValues(t, 0, u.hits.Load())
	})

	t.Run("polls with minted token", func(t *testing.T) {
		u := newUpstreams(t)
		data, err := u.relay().TaskStatus(context.Background(), "Bearer good-token", "task-9")
		require.NoError(t, err)
		assert.Equal(t, "completed", gjson.GetBytes(data, "status").String())
	})
}

func TestBuildUpstreamCall(t *testing.T) {
	call, err := services.BuildUpstreamCall("generate_story", map[string]interface{}{
		"prompt": "a brave turtle", "ageGroup": "preschool", "language": "zh", "pageCount": 6,
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, "/api/generate/story", call.Path)
	assert.Equal(t, map[string]interface{}{
		"prompt": "a brave turtle", "age_group": "preschool", "language": "zh", "page_count": 6,
	}, call.Body)

	call, err = services.BuildUpstreamCall("generate_audio", map[string]interface{}{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "/api/generate/audio", call.Path)
	assert.Equal(t, "default", call.Body["voice"])
	assert.Equal(t, "zh-CN", call.Body["language"])

	_, err = services.BuildUpstreamCall("", nil)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}
