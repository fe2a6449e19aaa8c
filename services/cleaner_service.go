package services

import (
	"html"
	"regexp"
	"strings"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy    = bluemonday.StrictPolicy()
	reInlineSpace   = regexp.MustCompile(`[ \t\f\v]+`)
	reMultiNewLine  = regexp.MustCompile(`\n{3,}`)
	reTrailingSpace = regexp.MustCompile(`(?m)[ \t]+$`)
)

// SanitizeText bỏ toàn bộ HTML, gom khoảng trắng, giữ tối đa một dòng trống giữa các đoạn
func SanitizeText(text string) string {
	cleaned := strictPolicy.Sanitize(text)
	// bluemonday escape ký tự đặc biệt, text thuần nên trả lại nguyên dạng
	cleaned = html.UnescapeString(cleaned)
	cleaned = strings.ReplaceAll(cleaned, "\r\n", "\n")
	cleaned = reInlineSpace.ReplaceAllString(cleaned, " ")
	cleaned = reTrailingSpace.ReplaceAllString(cleaned, "")
	cleaned = reMultiNewLine.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

// SanitizeLine giống SanitizeText nhưng gộp thành một dòng (title, tag)
func SanitizeLine(text string) string {
	return strings.Join(strings.Fields(SanitizeText(text)), " ")
}

// Slugify dùng cho slug của truyện và đường dẫn object trên storage.
// Tiêu đề chỉ có ký hiệu (emoji...) sẽ ra slug rỗng, khi đó dùng fallback.
func Slugify(title, fallback string) string {
	s := slug.Make(title)
	if s == "" {
		return fallback
	}
	if len(s) > 80 {
		s = strings.Trim(s[:80], "-")
	}
	return s
}
