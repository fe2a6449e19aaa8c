package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/e-storybook-backend/apperror"
	"github.com/vnkhanh/e-storybook-backend/repository"
)

type StatsController struct {
	repo repository.StorybookRepository
}

func NewStatsController(repo repository.StorybookRepository) *StatsController {
	return &StatsController{repo: repo}
}

// GET /users/:id/stats
// Trả phẳng các trường ở cấp trên cùng cho trang hồ sơ; joinDate là null khi tác giả chưa có truyện.
func (sc *StatsController) GetAuthorStats(c *gin.Context) {
	authorID := strings.TrimSpace(c.Param("id"))
	if authorID == "" {
		_ = c.Error(apperror.Validation("Missing user id"))
		return
	}
	stats, err := sc.repo.AuthorStats(c.Request.Context(), authorID)
	if err != nil {
		_ = c.Error(apperror.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"totalStorybooks":     stats.TotalBooks,
		"publishedStorybooks": stats.PublishedBooks,
		"totalViews":          stats.TotalViews,
		"totalLikes":          stats.TotalLikes,
		"joinDate":            stats.JoinDate,
	})
}
