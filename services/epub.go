package services

import (
	"fmt"
	"html"
	"io"
	"strings"

	epub "github.com/go-shiori/go-epub"
	"go.uber.org/zap"

	"github.com/vnkhanh/e-storybook-backend/models"
)

// EpubExporter xuất storybook thành EPUB, mỗi trang là một section.
// Ảnh được go-epub tải về lúc ghi file.
type EpubExporter struct {
	log *zap.Logger
}

func NewEpubExporter(log *zap.Logger) *EpubExporter {
	return &EpubExporter{log: log}
}

func (x *EpubExporter) Export(book *models.Storybook, w io.Writer) (int64, error) {
	title := book.Title
	if title == "" {
		title = "Storybook"
	}
	e, err := epub.NewEpub(title)
	if err != nil {
		return 0, fmt.Errorf("failed to create epub: %w", err)
	}
	e.SetIdentifier("urn:uuid:" + book.ID)
	e.SetAuthor(book.AuthorName)
	e.SetDescription(book.Description)
	if book.Language == models.LangEN {
		e.SetLang("en")
	} else {
		e.SetLang("zh")
	}

	if book.CoverImageURL != "" {
		if cover, err := e.AddImage(book.CoverImageURL, "cover"); err == nil {
			if err := e.SetCover(cover, ""); err != nil {
				x.log.Warn("epub cover not set", zap.String("book_id", book.ID), zap.Error(err))
			}
		}
	}

	for _, p := range book.Pages {
		var body strings.Builder
		if p.ImageURL != "" {
			img, err := e.AddImage(p.ImageURL, fmt.Sprintf("page-%03d", p.PageNumber))
			if err != nil {
				x.log.Warn("epub image skipped",
					zap.String("book_id", book.ID), zap.Int("page", p.PageNumber), zap.Error(err))
			} else {
				fmt.Fprintf(&body, `<p><img src="%s" alt="%s"/></p>`, img, html.EscapeString(p.ImagePrompt))
			}
		}
		for _, para := range strings.Split(p.Text, "\n") {
			if para = strings.TrimSpace(para); para != "" {
				fmt.Fprintf(&body, "<p>%s</p>", html.EscapeString(para))
			}
		}
		sectionTitle := fmt.Sprintf("%d", p.PageNumber)
		if _, err := e.AddSection(body.String(), sectionTitle, fmt.Sprintf("page-%03d.xhtml", p.PageNumber), ""); err != nil {
			return 0, fmt.Errorf("failed to add page %d: %w", p.PageNumber, err)
		}
	}

	return e.WriteTo(w)
}
