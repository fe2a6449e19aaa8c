package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-storybook-backend/models"
)

type gormStorybookRepository struct {
	db *gorm.DB
}

func NewGormStorybookRepository(db *gorm.DB) StorybookRepository {
	return &gormStorybookRepository{db: db}
}

func orderedPages(db *gorm.DB) *gorm.DB {
	return db.Order("page_number ASC")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern tạo pattern ILIKE, ký tự đại diện do người dùng gõ được hiểu theo nghĩa đen
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// searchClause tìm trong tiêu đề, mô tả và từng tag; tags không phải mảng coi như rỗng
const searchClause = `title ILIKE ? ESCAPE '\' OR description ILIKE ? ESCAPE '\' OR EXISTS (` +
	`SELECT 1 FROM jsonb_array_elements_text(CASE WHEN jsonb_typeof(tags) = 'array' THEN tags ELSE '[]'::jsonb END) AS tag ` +
	`WHERE tag ILIKE ? ESCAPE '\')`

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *gormStorybookRepository) List(ctx context.Context, f ListFilter) (*ListResult, error) {
	query := r.db.WithContext(ctx).Model(&models.Storybook{})

	if f.AuthorID != "" {
		query = query.Where("author_id = ?", f.AuthorID)
	}
	if f.AgeGroup != "" {
		query = query.Where("age_group = ?", f.AgeGroup)
	}
	if f.Language != "" {
		query = query.Where("language = ?", f.Language)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.IsPublic != nil {
		query = query.Where("is_public = ?", *f.IsPublic)
	}
	if f.Search != "" {
		like := containsPattern(f.Search)
		query = query.Where(searchClause, like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count storybooks")
	}

	books := make([]models.Storybook, 0, f.Limit)
	if total > 0 {
		if err := query.Preload("Pages", orderedPages).
			Order("created_at DESC").
			Offset(f.Offset()).
			Limit(f.Limit).
			Find(&books).Error; err != nil {
			return nil, errors.Wrap(err, "list storybooks")
		}
	}
	return &ListResult{Books: books, Total: total}, nil
}

func (r *gormStorybookRepository) Get(ctx context.Context, id string) (*models.Storybook, error) {
	// cột id kiểu uuid, chuỗi sai định dạng coi như không tồn tại
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var book models.Storybook
	err := r.db.WithContext(ctx).Preload("Pages", orderedPages).First(&book, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get storybook %s", id)
	}
	return &book, nil
}

func (r *gormStorybookRepository) Create(ctx context.Context, book *models.Storybook) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return errors.Wrap(err, "create storybook")
	}
	return nil
}

// Save ghi đè metadata và thay toàn bộ danh sách trang
func (r *gormStorybookRepository) Save(ctx context.Context, book *models.Storybook) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return errors.Wrap(tx.Error, "begin tx")
	}

	res := tx.Model(&models.Storybook{}).Where("id = ?", book.ID).Updates(storybookColumns(book))
	if res.Error != nil {
		tx.Rollback()
		return errors.Wrap(res.Error, "update storybook")
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return ErrNotFound
	}

	if err := tx.Where("storybook_id = ?", book.ID).Delete(&models.StoryPage{}).Error; err != nil {
		tx.Rollback()
		return errors.Wrap(err, "delete old pages")
	}
	if len(book.Pages) > 0 {
		for i := range book.Pages {
			book.Pages[i].StorybookID = book.ID
		}
		if err := tx.Create(&book.Pages).Error; err != nil {
			tx.Rollback()
			return errors.Wrap(err, "insert pages")
		}
	}
	return errors.Wrap(tx.Commit().Error, "commit storybook")
}

func storybookColumns(b *models.Storybook) map[string]interface{} {
	return map[string]interface{}{
		"title":               b.Title,
		"slug":                b.Slug,
		"description":         b.Description,
		"cover_image_url":     b.CoverImageURL,
		"author_name":         b.AuthorName,
		"is_public":           b.IsPublic,
		"tags":                b.Tags,
		"age_group":           b.AgeGroup,
		"language":            b.Language,
		"status":              b.Status,
		"total_pages":         b.TotalPages,
		"estimated_read_time": b.EstimatedReadTime,
		"published_at":        b.PublishedAt,
		"updated_at":          time.Now(),
	}
}

func (r *gormStorybookRepository) SavePage(ctx context.Context, bookID string, page *models.StoryPage) error {
	page.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.StoryPage{}).
		Where("storybook_id = ? AND page_number = ?", bookID, page.PageNumber).
		Updates(map[string]interface{}{
			"text":         page.Text,
			"image_url":    page.ImageURL,
			"image_prompt": page.ImagePrompt,
			"audio_url":    page.AudioURL,
			"updated_at":   page.UpdatedAt,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "update page")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormStorybookRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return errors.Wrap(tx.Error, "begin tx")
	}
	if err := tx.Where("storybook_id = ?", id).Delete(&models.StorybookLike{}).Error; err != nil {
		tx.Rollback()
		return errors.Wrap(err, "delete likes")
	}
	if err := tx.Where("storybook_id = ?", id).Delete(&models.StoryPage{}).Error; err != nil {
		tx.Rollback()
		return errors.Wrap(err, "delete pages")
	}
	res := tx.Where("id = ?", id).Delete(&models.Storybook{})
	if res.Error != nil {
		tx.Rollback()
		return errors.Wrap(res.Error, "delete storybook")
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return ErrNotFound
	}
	return errors.Wrap(tx.Commit().Error, "commit delete")
}

func (r *gormStorybookRepository) IncrementViews(ctx context.Context, id string) (int, error) {
	if _, err := uuid.Parse(id); err != nil {
		return 0, ErrNotFound
	}
	db := r.db.WithContext(ctx)
	res := db.Model(&models.Storybook{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "increment views")
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	var book models.Storybook
	if err := db.Select("view_count").First(&book, "id = ?", id).Error; err != nil {
		return 0, errors.Wrap(err, "read views")
	}
	return book.ViewCount, nil
}

func (r *gormStorybookRepository) AddLike(ctx context.Context, userID, bookID string) (int, error) {
	if _, err := uuid.Parse(bookID); err != nil {
		return 0, ErrNotFound
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return 0, errors.Wrap(tx.Error, "begin tx")
	}

	var book models.Storybook
	if err := tx.Select("id", "like_count").First(&book, "id = ?", bookID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, errors.Wrap(err, "find storybook")
	}

	// Kiểm tra xem đã thích chưa
	var existing int64
	if err := tx.Model(&models.StorybookLike{}).
		Where("user_id = ? AND storybook_id = ?", userID, bookID).
		Count(&existing).Error; err != nil {
		tx.Rollback()
		return 0, errors.Wrap(err, "check like")
	}
	if existing > 0 {
		tx.Rollback()
		return 0, ErrAlreadyLiked
	}

	if err := tx.Create(&models.StorybookLike{UserID: userID, StorybookID: bookID}).Error; err != nil {
		tx.Rollback()
		return 0, errors.Wrap(err, "create like")
	}
	if err := tx.Model(&models.Storybook{}).Where("id = ?", bookID).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error; err != nil {
		tx.Rollback()
		return 0, errors.Wrap(err, "update like count")
	}
	if err := tx.Commit().Error; err != nil {
		return 0, errors.Wrap(err, "commit like")
	}
	return book.LikeCount + 1, nil
}

func (r *gormStorybookRepository) RemoveLike(ctx context.Context, userID, bookID string) (int, error) {
	if _, err := uuid.Parse(bookID); err != nil {
		return 0, ErrNotFound
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return 0, errors.Wrap(tx.Error, "begin tx")
	}

	res := tx.Where("user_id = ? AND storybook_id = ?", userID, bookID).Delete(&models.StorybookLike{})
	if res.Error != nil {
		tx.Rollback()
		return 0, errors.Wrap(res.Error, "delete like")
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return 0, ErrNotLiked
	}
	if err := tx.Model(&models.Storybook{}).Where("id = ?", bookID).
		UpdateColumn("like_count", gorm.Expr("GREATEST(like_count - ?, 0)", 1)).Error; err != nil {
		tx.Rollback()
		return 0, errors.Wrap(err, "update like count")
	}
	var book models.Storybook
	if err := tx.Select("like_count").First(&book, "id = ?", bookID).Error; err != nil {
		tx.Rollback()
		return 0, errors.Wrap(err, "read like count")
	}
	if err := tx.Commit().Error; err != nil {
		return 0, errors.Wrap(err, "commit unlike")
	}
	return book.LikeCount, nil
}

func (r *gormStorybookRepository) AuthorStats(ctx context.Context, authorID string) (*models.AuthorStats, error) {
	var stats models.AuthorStats
	err := r.db.WithContext(ctx).Model(&models.Storybook{}).
		Select(
			"COUNT(*) AS total_books, "+
				"COUNT(*) FILTER (WHERE status = ?) AS published_books, "+
				"COALESCE(SUM(view_count), 0) AS total_views, "+
				"COALESCE(SUM(like_count), 0) AS total_likes, "+
				"MIN(created_at) AS join_date",
			models.StatusPublished,
		).
		Where("author_id = ?", authorID).
		Scan(&stats).Error
	if err != nil {
		return nil, errors.Wrap(err, "author stats")
	}
	return &stats, nil
}
