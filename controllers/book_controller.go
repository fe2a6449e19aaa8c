package controllers

import (
	"bytes"
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vnkhanh/e-storybook-backend/apperror"
	"github.com/vnkhanh/e-storybook-backend/middleware"
	"github.com/vnkhanh/e-storybook-backend/models"
	"github.com/vnkhanh/e-storybook-backend/repository"
	"github.com/vnkhanh/e-storybook-backend/services"
	"github.com/vnkhanh/e-storybook-backend/utils"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Notifier đẩy sự kiện realtime tới client (ws.Hub)
type Notifier interface {
	SendProgress(bookID, status string, progress interface{})
	BroadcastBookListChanged(bookID string)
}

type BookController struct {
	repo      repository.StorybookRepository
	pipelines services.PipelineFactory
	store     utils.ObjectStore
	exporter  *services.EpubExporter
	notifier  Notifier
	log       *zap.Logger
}

func NewBookController(
	repo repository.StorybookRepository,
	pipelines services.PipelineFactory,
	store utils.ObjectStore,
	exporter *services.EpubExporter,
	notifier Notifier,
	log *zap.Logger,
) *BookController {
	setupValidator()
	return &BookController{
		repo:      repo,
		pipelines: pipelines,
		store:     store,
		exporter:  exporter,
		notifier:  notifier,
		log:       log,
	}
}

type pageRequest struct {
	PageNumber  int    `json:"pageNumber" binding:"gte=0"`
	Text        string `json:"text"`
	ImageURL    string `json:"imageUrl" binding:"omitempty,url"`
	ImagePrompt string `json:"imagePrompt"`
	AudioURL    string `json:"audioUrl" binding:"omitempty,url"`
}

func toPages(in []pageRequest) []models.StoryPage {
	pages := make([]models.StoryPage, 0, len(in))
	for _, p := range in {
		pages = append(pages, models.StoryPage{
			PageNumber:  p.PageNumber,
			Text:        services.SanitizeText(p.Text),
			ImageURL:    strings.TrimSpace(p.ImageURL),
			ImagePrompt: services.SanitizeText(p.ImagePrompt),
			AudioURL:    strings.TrimSpace(p.AudioURL),
		})
	}
	return pages
}

func (bc *BookController) bookNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("Book not found")
	}
	return apperror.Internal(err)
}

// loadOwned: 404 nếu không có, 403 nếu người gọi không phải tác giả
func (bc *BookController) loadOwned(c *gin.Context) (*models.Storybook, *models.AuthUser, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, nil, apperror.Unauthorized("")
	}
	book, err := bc.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, nil, bc.bookNotFound(err)
	}
	if book.AuthorID != user.ID {
		return nil, nil, apperror.Forbidden("Forbidden")
	}
	return book, user, nil
}

func validateEnums(age models.AgeGroup, lang models.Language) error {
	if age != "" && !age.Valid() {
		return apperror.Validation("Invalid ageGroup: " + string(age))
	}
	if lang != "" && !lang.Valid() {
		return apperror.Validation("Invalid language: " + string(lang))
	}
	return nil
}

// GET /books
func (bc *BookController) ListBooks(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	// offset (page-1)*limit phải vừa kiểu int
	if page-1 > math.MaxInt/limit {
		_ = c.Error(apperror.Validation("Invalid page: " + c.Query("page")))
		return
	}

	filter := repository.ListFilter{
		AuthorID: strings.TrimSpace(firstNonEmpty(c.Query("authorId"), c.Query("userId"))),
		AgeGroup: models.AgeGroup(c.Query("ageGroup")),
		Language: models.Language(c.Query("language")),
		Status:   models.Status(c.Query("status")),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     page,
		Limit:    limit,
	}
	// authorId=me (hoặc userId=me): truyện của chính người gọi, cần token
	if filter.AuthorID == "me" {
		user := middleware.CurrentUser(c)
		if user == nil {
			_ = c.Error(apperror.Unauthorized(""))
			return
		}
		filter.AuthorID = user.ID
	}
	if err := validateEnums(filter.AgeGroup, filter.Language); err != nil {
		_ = c.Error(err)
		return
	}
	if filter.Status != "" && !filter.Status.Valid() {
		_ = c.Error(apperror.Validation("Invalid status: " + string(filter.Status)))
		return
	}
	if v := c.Query("isPublic"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			_ = c.Error(apperror.Validation("Invalid isPublic: " + v))
			return
		}
		filter.IsPublic = &b
	}

	result, err := bc.repo.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(apperror.Internal(err))
		return
	}
	books := result.Books
	if books == nil {
		books = []models.Storybook{}
	}
	c.JSON(http.StatusOK, gin.H{
		"books": books,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": result.Total,
			"pages": repository.TotalPages(result.Total, limit),
		},
	})
}

type createBookRequest struct {
	Title         string          `json:"title" binding:"required,max=255"`
	Description   string          `json:"description"`
	Summary       string          `json:"summary"`
	CoverImageURL string          `json:"coverImageUrl" binding:"omitempty,url"`
	Pages         []pageRequest   `json:"pages" binding:"required,min=1,dive"`
	Tags          []string        `json:"tags"`
	AgeGroup      models.AgeGroup `json:"ageGroup"`
	Language      models.Language `json:"language"`
}

// POST /books: sách tạo tay được publish ngay
func (bc *BookController) CreateBook(c *gin.Context) {
	user := middleware.CurrentUser(c)
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}
	if err := validateEnums(req.AgeGroup, req.Language); err != nil {
		_ = c.Error(err)
		return
	}
	title := services.SanitizeLine(req.Title)
	if title == "" {
		_ = c.Error(apperror.Validation("title is a required field"))
		return
	}

	book := newBook(user, title, firstNonEmpty(req.Description, req.Summary), req.Tags, req.AgeGroup, req.Language)
	book.CoverImageURL = strings.TrimSpace(req.CoverImageURL)
	book.SetPages(toPages(req.Pages))
	if err := book.TransitionTo(models.StatusPublished); err != nil {
		_ = c.Error(apperror.Internal(err))
		return
	}

	if err := bc.repo.Create(c.Request.Context(), book); err != nil {
		_ = c.Error(createError(err))
		return
	}
	bc.notifier.BroadcastBookListChanged(book.ID)
	c.JSON(http.StatusCreated, gin.H{"success": true, "book": book})
}

func newBook(user *models.AuthUser, title, description string, tags []string, age models.AgeGroup, lang models.Language) *models.Storybook {
	if age == "" {
		age = models.AgeAll
	}
	if lang == "" {
		lang = models.LangZH
	}
	id := uuid.NewString()
	return &models.Storybook{
		ID:          id,
		Title:       title,
		Slug:        services.Slugify(title, id),
		Description: services.SanitizeText(description),
		AuthorID:    user.ID,
		AuthorName:  user.DisplayName(),
		Tags:        models.NormalizeTags(tags),
		AgeGroup:    age,
		Language:    lang,
		Status:      models.StatusDraft,
	}
}

// createError: id client gửi lên trùng với truyện đã có thì trả 409
func createError(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperror.Conflict("Storybook id already exists")
	}
	return apperror.Internal(err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// GET /books/:id
func (bc *BookController) GetBook(c *gin.Context) {
	book, err := bc.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(bc.bookNotFound(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": book})
}

type updateBookRequest struct {
	Title         *string          `json:"title" binding:"omitempty,max=255"`
	Description   *string          `json:"description"`
	Summary       *string          `json:"summary"`
	CoverImageURL *string          `json:"coverImageUrl" binding:"omitempty,url"`
	Tags          []string         `json:"tags"`
	AgeGroup      *models.AgeGroup `json:"ageGroup"`
	Language      *models.Language `json:"language"`
	IsPublic      *bool            `json:"isPublic"`
	Status        *models.Status   `json:"status"`
	Pages         []pageRequest    `json:"pages" binding:"omitempty,dive"`
}

// PUT /books/:id: cập nhật một phần, chỉ tác giả
func (bc *BookController) UpdateBook(c *gin.Context) {
	book, _, err := bc.loadOwned(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	if req.Title != nil {
		title := services.SanitizeLine(*req.Title)
		if title == "" {
			_ = c.Error(apperror.Validation("title cannot be empty"))
			return
		}
		book.Title = title
		book.Slug = services.Slugify(title, book.ID)
	}
	if req.Description != nil {
		book.Description = services.SanitizeText(*req.Description)
	} else if req.Summary != nil {
		book.Description = services.SanitizeText(*req.Summary)
	}
	if req.CoverImageURL != nil {
		book.CoverImageURL = strings.TrimSpace(*req.CoverImageURL)
	}
	if req.Tags != nil {
		book.Tags = models.NormalizeTags(req.Tags)
	}
	if req.AgeGroup != nil {
		if !req.AgeGroup.Valid() {
			_ = c.Error(apperror.Validation("Invalid ageGroup: " + string(*req.AgeGroup)))
			return
		}
		book.AgeGroup = *req.AgeGroup
	}
	if req.Language != nil {
		if !req.Language.Valid() {
			_ = c.Error(apperror.Validation("Invalid language: " + string(*req.Language)))
			return
		}
		book.Language = *req.Language
	}
	if req.Pages != nil {
		if len(req.Pages) == 0 {
			_ = c.Error(apperror.Validation("pages must contain at least 1 item"))
			return
		}
		book.SetPages(toPages(req.Pages))
	}
	if req.Status != nil {
		if err := book.TransitionTo(*req.Status); err != nil {
			_ = c.Error(apperror.ValidationWrap(err.Error(), err))
			return
		}
	}
	if req.IsPublic != nil {
		book.IsPublic = *req.IsPublic
	}
	book.RefreshDerived()

	if err := bc.repo.Save(c.Request.Context(), book); err != nil {
		_ = c.Error(bc.bookNotFound(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "book": book})
}

// DELETE /books/:id
func (bc *BookController) DeleteBook(c *gin.Context) {
	book, _, err := bc.loadOwned(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := bc.repo.Delete(c.Request.Context(), book.ID); err != nil {
		_ = c.Error(bc.bookNotFound(err))
		return
	}

	bc.deleteMedia(context.WithoutCancel(c.Request.Context()), book)
	bc.notifier.BroadcastBookListChanged(book.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Book deleted successfully"})
}

// deleteMedia xoá file trên storage của mình, lỗi chỉ ghi log
func (bc *BookController) deleteMedia(ctx context.Context, book *models.Storybook) {
	if bc.store == nil {
		return
	}
	seen := map[string]struct{}{}
	urls := []string{book.CoverImageURL}
	for _, p := range book.Pages {
		urls = append(urls, p.ImageURL, p.AudioURL)
	}
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		if err := bc.store.Delete(ctx, u); err != nil {
			bc.log.Warn("media cleanup failed", zap.String("book_id", book.ID), zap.String("url", u), zap.Error(err))
		}
	}
}

type generateRequest struct {
	StorybookID string          `json:"storybookId" binding:"omitempty,uuid"`
	Title       string          `json:"title" binding:"required,max=255"`
	Prompt      string          `json:"prompt" binding:"required"`
	Description string          `json:"description"`
	AgeGroup    models.AgeGroup `json:"ageGroup"`
	Language    models.Language `json:"language"`
	PageCount   int             `json:"pageCount" binding:"required,min=1,max=30"`
	Tags        []string        `json:"tags"`
}

// POST /books/generate
// Tiến trình được đẩy qua /ws/books/:id. Client có thể gửi storybookId để subscribe trước khi gọi.
func (bc *BookController) GenerateBook(c *gin.Context) {
	user := middleware.CurrentUser(c)
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}
	if err := validateEnums(req.AgeGroup, req.Language); err != nil {
		_ = c.Error(err)
		return
	}
	ctx := c.Request.Context()

	pipeline, err := bc.pipelines.ForUser(ctx, user)
	if err != nil {
		_ = c.Error(err)
		return
	}

	book := newBook(user, services.SanitizeLine(req.Title), req.Description, req.Tags, req.AgeGroup, req.Language)
	if req.StorybookID != "" {
		book.ID = req.StorybookID
		book.Slug = services.Slugify(book.Title, book.ID)
	}
	if err := book.TransitionTo(models.StatusGenerating); err != nil {
		_ = c.Error(apperror.Internal(err))
		return
	}
	if err := bc.repo.Create(ctx, book); err != nil {
		_ = c.Error(createError(err))
		return
	}
	bc.notifier.BroadcastBookListChanged(book.ID)

	result, err := pipeline.GenerateStorybook(ctx, services.StoryRequest{
		Title:     book.Title,
		Prompt:    services.SanitizeText(req.Prompt),
		AgeGroup:  book.AgeGroup,
		Language:  book.Language,
		PageCount: req.PageCount,
	}, func(ev services.ProgressEvent) {
		bc.notifier.SendProgress(book.ID, string(models.StatusGenerating), ev)
	})
	if err != nil {
		// Không rollback: bản ghi ở lại trạng thái generating
		bc.notifier.SendProgress(book.ID, "failed", gin.H{"error": apperror.From(err).Message})
		_ = c.Error(err)
		return
	}

	pages := make([]models.StoryPage, 0, len(result.Pages))
	for _, p := range result.Pages {
		pages = append(pages, models.StoryPage{
			PageNumber:  p.PageNumber,
			Text:        services.SanitizeText(p.Text),
			ImagePrompt: p.ImagePrompt,
			ImageURL:    p.ImageURL,
			AudioURL:    p.AudioURL,
		})
	}
	if t := services.SanitizeLine(result.Title); t != "" {
		book.Title = t
		book.Slug = services.Slugify(t, book.ID)
	}
	if book.Description == "" {
		book.Description = services.SanitizeText(result.Summary)
	}
	book.SetPages(pages)
	if err := book.TransitionTo(models.StatusCompleted); err != nil {
		_ = c.Error(apperror.Internal(err))
		return
	}

	// Client có thể đã ngắt kết nối trong lúc sinh, vẫn phải lưu kết quả
	if err := bc.repo.Save(context.WithoutCancel(ctx), book); err != nil {
		_ = c.Error(apperror.Internal(err))
		return
	}
	bc.notifier.SendProgress(book.ID, string(models.StatusCompleted), nil)
	c.JSON(http.StatusCreated, gin.H{"success": true, "storybookId": book.ID, "book": book})
}

type regenerateRequest struct {
	Text        *string `json:"text"`
	ImagePrompt *string `json:"imagePrompt"`
}

// POST /books/:id/pages/:pageNumber/regenerate
// Bước nào thất bại thì giữ nguyên media cũ của trang.
func (bc *BookController) RegeneratePage(c *gin.Context) {
	book, user, err := bc.loadOwned(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	number, err := strconv.Atoi(c.Param("pageNumber"))
	if err != nil {
		_ = c.Error(apperror.Validation("Invalid page number"))
		return
	}
	page, ok := book.Page(number)
	if !ok {
		_ = c.Error(apperror.NotFound("Page not found"))
		return
	}

	var req regenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(bindError(err))
			return
		}
	}
	if req.Text != nil {
		page.Text = services.SanitizeText(*req.Text)
	}
	if req.ImagePrompt != nil {
		page.ImagePrompt = services.SanitizeText(*req.ImagePrompt)
	}

	pipeline, err := bc.pipelines.ForUser(c.Request.Context(), user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	media := pipeline.RegeneratePage(c.Request.Context(), services.PageInput{
		Text:        page.Text,
		ImagePrompt: page.ImagePrompt,
		Language:    book.Language,
	})
	if media.ImageURL != "" {
		page.ImageURL = media.ImageURL
	}
	if media.AudioURL != "" {
		page.AudioURL = media.AudioURL
	}

	if err := bc.repo.SavePage(context.WithoutCancel(c.Request.Context()), book.ID, page); err != nil {
		_ = c.Error(bc.bookNotFound(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"page":    page,
		"regenerated": gin.H{
			"image": media.ImageURL != "",
			"audio": media.AudioURL != "",
		},
	})
}

// POST /books/:id/publish
func (bc *BookController) PublishBook(c *gin.Context) {
	book, _, err := bc.loadOwned(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if book.Status != models.StatusCompleted && book.Status != models.StatusPublished {
		_ = c.Error(apperror.Conflict("Book is not ready to publish"))
		return
	}
	if err := book.TransitionTo(models.StatusPublished); err != nil {
		_ = c.Error(apperror.Conflict(err.Error()))
		return
	}
	if err := bc.repo.Save(c.Request.Context(), book); err != nil {
		_ = c.Error(bc.bookNotFound(err))
		return
	}
	bc.notifier.BroadcastBookListChanged(book.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "book": book})
}

// POST /books/:id/view
func (bc *BookController) RecordView(c *gin.Context) {
	count, err := bc.repo.IncrementViews(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(bc.bookNotFound(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "viewCount": count})
}

// POST /books/:id/like
func (bc *BookController) LikeBook(c *gin.Context) {
	user := middleware.CurrentUser(c)
	count, err := bc.repo.AddLike(c.Request.Context(), user.ID, c.Param("id"))
	switch {
	case errors.Is(err, repository.ErrAlreadyLiked):
		_ = c.Error(apperror.Conflict("Already liked"))
		return
	case err != nil:
		_ = c.Error(bc.bookNotFound(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "likeCount": count})
}

// DELETE /books/:id/like
func (bc *BookController) UnlikeBook(c *gin.Context) {
	user := middleware.CurrentUser(c)
	count, err := bc.repo.RemoveLike(c.Request.Context(), user.ID, c.Param("id"))
	switch {
	case errors.Is(err, repository.ErrNotLiked):
		_ = c.Error(apperror.Conflict("Not liked"))
		return
	case err != nil:
		_ = c.Error(bc.bookNotFound(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "likeCount": count})
}

// GET /books/:id/epub
func (bc *BookController) ExportEpub(c *gin.Context) {
	book, err := bc.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(bc.bookNotFound(err))
		return
	}
	var buf bytes.Buffer
	if _, err := bc.exporter.Export(book, &buf); err != nil {
		_ = c.Error(apperror.Internal(err))
		return
	}
	name := book.Slug
	if name == "" {
		name = book.ID
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`.epub"`)
	c.Data(http.StatusOK, "application/epub+zip", buf.Bytes())
}
