package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Storybook struct {
	ID                string                      `gorm:"type:uuid;primaryKey" json:"id" bson:"_id"`
	Title             string                      `gorm:"size:255;not null" json:"title" bson:"title"`
	Slug              string                      `gorm:"size:255;index" json:"slug" bson:"slug"`
	Description       string                      `gorm:"type:text" json:"description" bson:"description"`
	CoverImageURL     string                      `gorm:"type:text" json:"coverImageUrl,omitempty" bson:"coverImageUrl,omitempty"`
	Pages             []StoryPage                 `gorm:"foreignKey:StorybookID;constraint:OnDelete:CASCADE;" json:"pages" bson:"pages"`
	AuthorID          string                      `gorm:"size:64;index;not null" json:"authorId" bson:"authorId"`
	AuthorName        string                      `gorm:"size:255" json:"authorName" bson:"authorName"`
	IsPublic          bool                        `gorm:"default:false" json:"isPublic" bson:"isPublic"`
	Tags              datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"tags" bson:"tags"`
	AgeGroup          AgeGroup                    `gorm:"type:VARCHAR(20);default:'all'" json:"ageGroup" bson:"ageGroup"`
	Language          Language                    `gorm:"type:VARCHAR(8);default:'zh'" json:"language" bson:"language"`
	Status            Status                      `gorm:"type:VARCHAR(20);default:'draft';index" json:"status" bson:"status"`
	TotalPages        int                         `json:"totalPages" bson:"totalPages"`
	EstimatedReadTime int                         `json:"estimatedReadTime" bson:"estimatedReadTime"` // phút
	ViewCount         int                         `gorm:"default:0" json:"viewCount" bson:"viewCount"`
	LikeCount         int                         `gorm:"default:0" json:"likeCount" bson:"likeCount"`
	CreatedAt         time.Time                   `gorm:"autoCreateTime" json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time                   `gorm:"autoUpdateTime" json:"updatedAt" bson:"updatedAt"`
	PublishedAt       *time.Time                  `json:"publishedAt,omitempty" bson:"publishedAt,omitempty"`
}

func (b *Storybook) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// TransitionTo đổi trạng thái, từ chối khi lùi trạng thái
func (b *Storybook) TransitionTo(to Status) error {
	if !to.Valid() {
		return fmt.Errorf("invalid status %q", to)
	}
	if !b.Status.CanTransition(to) {
		return fmt.Errorf("cannot move storybook from %s to %s", b.Status, to)
	}
	if to == StatusPublished && b.Status != StatusPublished {
		now := time.Now()
		b.PublishedAt = &now
		b.IsPublic = true
	}
	b.Status = to
	return nil
}

// SetPages sắp theo số trang client gửi, đánh số lại liên tục từ 1
// và cập nhật các trường suy ra từ danh sách trang.
func (b *Storybook) SetPages(pages []StoryPage) {
	sorted := make([]StoryPage, len(pages))
	copy(sorted, pages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PageNumber < sorted[j].PageNumber
	})
	now := time.Now()
	for i := range sorted {
		p := &sorted[i]
		p.PageNumber = i + 1
		p.StorybookID = b.ID
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now
	}
	b.Pages = sorted
	b.RefreshDerived()
}

// RefreshDerived giữ totalPages == len(pages)
func (b *Storybook) RefreshDerived() {
	b.TotalPages = len(b.Pages)
	b.EstimatedReadTime = EstimateReadMinutes(b.Pages)
	if b.CoverImageURL == "" {
		for _, p := range b.Pages {
			if p.ImageURL != "" {
				b.CoverImageURL = p.ImageURL
				break
			}
		}
	}
}

// Page trả về trang theo số thứ tự (1-based)
func (b *Storybook) Page(number int) (*StoryPage, bool) {
	for i := range b.Pages {
		if b.Pages[i].PageNumber == number {
			return &b.Pages[i], true
		}
	}
	return nil, false
}

const (
	wordsPerMinute = 80  // truyện tranh được đọc to, chậm
	hanziPerMinute = 150
	secondsPerPage = 15  // thời gian xem tranh
)

// EstimateReadMinutes đếm riêng từ latin và ký tự CJK
func EstimateReadMinutes(pages []StoryPage) int {
	if len(pages) == 0 {
		return 0
	}
	var words, hanzi int
	for _, p := range pages {
		inWord := false
		for _, r := range p.Text {
			switch {
			case unicode.Is(unicode.Han, r):
				hanzi++
				inWord = false
			case unicode.IsLetter(r) || unicode.IsDigit(r):
				if !inWord {
					words++
				}
				inWord = true
			default:
				inWord = false
			}
		}
	}
	seconds := float64(words)/wordsPerMinute*60 + float64(hanzi)/hanziPerMinute*60 + float64(len(pages)*secondsPerPage)
	minutes := int(seconds+59) / 60
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// NormalizeTags bỏ tag rỗng và trùng lặp, giữ thứ tự
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
