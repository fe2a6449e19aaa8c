package utils

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

// ObjectStore lưu file media sinh ra (ảnh, audio) và trả về public URL
type ObjectStore interface {
	Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, publicURL string) error
}

type SupabaseStorage struct {
	baseURL string
	bucket  string
	client  *storage.Client
}

func NewSupabaseStorage(supabaseURL, serviceKey, bucket string) *SupabaseStorage {
	baseURL := strings.TrimRight(supabaseURL, "/")
	return &SupabaseStorage{
		baseURL: baseURL,
		bucket:  bucket,
		client:  storage.NewClient(baseURL+"/storage/v1", serviceKey, nil),
	}
}

// PublicURL: <supabase>/storage/v1/object/public/<bucket>/<path>
func (s *SupabaseStorage) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, objectPath)
}

// Upload ghi đè nếu object đã tồn tại (tái tạo trang dùng lại đường dẫn)
func (s *SupabaseStorage) Upload(_ context.Context, objectPath string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	upsert := true
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}
	if _, err := s.client.UploadFile(s.bucket, objectPath, bytes.NewReader(data), options); err != nil {
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	return s.PublicURL(objectPath), nil
}

// Delete nhận public URL, chỉ xoá object thuộc bucket của mình.
// URL ngoài (ví dụ ảnh do Suna host) được bỏ qua.
func (s *SupabaseStorage) Delete(_ context.Context, publicURL string) error {
	bucket, object, ok := ParseObjectURL(publicURL)
	if !ok || bucket != s.bucket || !strings.HasPrefix(publicURL, s.baseURL) {
		return nil
	}
	if _, err := s.client.RemoveFile(bucket, []string{object}); err != nil {
		return fmt.Errorf("delete %s: %w", object, err)
	}
	return nil
}

// ParseObjectURL tách bucket và object path từ URL chứa "/storage/v1/object/"
func ParseObjectURL(publicURL string) (bucket, object string, ok bool) {
	if publicURL == "" {
		return "", "", false
	}
	idx := strings.Index(publicURL, "/storage/v1/object/")
	if idx == -1 {
		return "", "", false
	}
	rest := publicURL[idx+len("/storage/v1/object/"):]
	for _, prefix := range []string{"public/", "sign/", "authenticated/"} {
		rest = strings.TrimPrefix(rest, prefix)
	}

	parts := strings.SplitN(rest, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	bucket = parts[0]
	object = parts[1]
	// bỏ query params nếu có
	if qIdx := strings.Index(object, "?"); qIdx != -1 {
		object = object[:qIdx]
	}
	if u, err := url.PathUnescape(object); err == nil {
		object = u
	}
	return bucket, object, true
}
