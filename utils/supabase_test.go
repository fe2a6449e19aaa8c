package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseObjectURL(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantBucket string
		wantObject string
		wantOK     bool
	}{
		{
			name:       "public url",
			url:        "https://abc.supabase.co/storage/v1/object/public/uploads/audio/fox-tale/page-1.mp3",
			wantBucket: "uploads",
			wantObject: "audio/fox-tale/page-1.mp3",
			wantOK:     true,
		},
		{
			name:       "signed url with query and escapes",
			url:        "https://abc.supabase.co/storage/v1/object/sign/uploads/images/a%20b.png?token=x",
			wantBucket: "uploads",
			wantObject: "images/a b.png",
			wantOK:     true,
		},
		{
			name: "foreign url",
			url:  "https://cdn.suna.app/img/1.png",
		},
		{
			name: "bucket only",
			url:  "https://abc.supabase.co/storage/v1/object/public/uploads",
		},
		{
			name: "empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, ok := ParseObjectURL(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
		})
	}
}

func TestSupabaseStorage_PublicURL(t *testing.T) {
	s := NewSupabaseStorage("https://abc.supabase.co/", "key", "uploads")
	assert.Equal(t, "https://abc.supabase.co/storage/v1/object/public/uploads/audio/x.mp3", s.PublicURL("audio/x.mp3"))
}

func TestSupabaseStorage_DeleteIgnoresForeignURLs(t *testing.T) {
	s := NewSupabaseStorage("https://abc.supabase.co", "key", "uploads")
	assert.NoError(t, s.Delete(context.Background(), "https://cdn.suna.app/img/1.png"))
	assert.NoError(t, s.Delete(context.Background(), "https://other.supabase.co/storage/v1/object/public/uploads/a.png"))
	assert.NoError(t, s.Delete(context.Background(), ""))
}
