package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_NAME", "storybook")
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-key")
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		env               map[string]string
		wantErrorContains []string
		check             func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults from environment only",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "8080", cfg.Server.Port)
				assert.Equal(t, "postgres", cfg.Database.Driver)
				assert.Equal(t, uint(5), cfg.Database.ConnectAttempts)
				assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
				assert.Equal(t, "uploads", cfg.Supabase.StorageBucket)
				assert.Equal(t, "https://suna-1.learnwise.app", cfg.Suna.BaseURL)
				assert.Equal(t, "suna", cfg.Generation.StoryProvider)
				assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
				assert.False(t, cfg.Gemini.Enabled)
			},
		},
		{
			name: "file values and env overrides",
			configContent: `server:
  port: "9090"
  allowed_origins: ["https://kids.example.com"]
suna:
  timeout: 30s
log:
  level: debug
`,
			env: map[string]string{"SUNA_API_BASE_URL": "https://suna.internal"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "9090", cfg.Server.Port)
				assert.Equal(t, []string{"https://kids.example.com"}, cfg.Server.AllowedOrigins)
				assert.Equal(t, 30*time.Second, cfg.Suna.Timeout)
				assert.Equal(t, "https://suna.internal", cfg.Suna.BaseURL)
				assert.Equal(t, "debug", cfg.Log.Level)
			},
		},
		{
			name: "gemini provider requires api key",
			env:  map[string]string{"STORY_PROVIDER": "gemini"},
			wantErrorContains: []string{
				"invalid configuration",
				"gemini.api_key",
			},
		},
		{
			name: "gemini provider with key",
			env:  map[string]string{"STORY_PROVIDER": "gemini", "GEMINI_API_KEY": "k"},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Gemini.Enabled)
			},
		},
		{
			name: "unknown audio provider",
			env:  map[string]string{"AUDIO_PROVIDER": "espeak"},
			wantErrorContains: []string{"generation.audio_provider"},
		},
		{
			name: "invalid YAML format",
			configContent: `server:
  port: 1
  invalid yaml format here [[[
`,
			wantErrorContains: []string{"configuration file found but could not be read"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var path string
			if tt.configContent != "" {
				path = filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.configContent), 0o600))
			}

			cfg, err := Load(path)
			if len(tt.wantErrorContains) > 0 {
				require.Error(t, err)
				for _, s := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), s)
				}
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad_MissingSupabase(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_NAME", "storybook")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supabase.url")
	assert.Contains(t, err.Error(), "supabase.service_key")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", User: "u", Password: "p", Name: "n", Port: "5432", SSLMode: "disable", TimeZone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", d.DSN())
}
