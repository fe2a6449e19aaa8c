package repository

import (
	"context"
	"errors"
	"math"

	"github.com/vnkhanh/e-storybook-backend/models"
)

var (
	ErrNotFound     = errors.New("storybook not found")
	ErrAlreadyLiked = errors.New("storybook already liked")
	ErrNotLiked     = errors.New("storybook not liked")
	ErrDuplicate    = errors.New("storybook id already exists")
)

// ListFilter các điều kiện lọc danh sách, trường rỗng = không lọc
type ListFilter struct {
	AuthorID string
	AgeGroup models.AgeGroup
	Language models.Language
	Status   models.Status
	IsPublic *bool
	Search   string
	Page     int
	Limit    int
}

// Offset bản ghi đầu của trang, page quá lớn thì chặn ở math.MaxInt thay vì tràn số
func (f ListFilter) Offset() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}

type ListResult struct {
	Books []models.Storybook
	Total int64
}

// TotalPages = ceil(total / limit)
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

//go:generate mockgen -destination=../mocks/repository/mock_storybook.go -package=mockrepository . StorybookRepository

// StorybookRepository có hai bản cài đặt: postgres và mongo.
// Save thay toàn bộ danh sách trang, không có optimistic locking.
type StorybookRepository interface {
	List(ctx context.Context, f ListFilter) (*ListResult, error)
	Get(ctx context.Context, id string) (*models.Storybook, error)
	Create(ctx context.Context, book *models.Storybook) error
	Save(ctx context.Context, book *models.Storybook) error
	SavePage(ctx context.Context, bookID string, page *models.StoryPage) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) (int, error)
	AddLike(ctx context.Context, userID, bookID string) (int, error)
	RemoveLike(ctx context.Context, userID, bookID string) (int, error)
	AuthorStats(ctx context.Context, authorID string) (*models.AuthorStats, error)
}
