package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vnkhanh/e-storybook-backend/controllers"
	"github.com/vnkhanh/e-storybook-backend/metrics"
	"github.com/vnkhanh/e-storybook-backend/middleware"
	"github.com/vnkhanh/e-storybook-backend/services"
	"github.com/vnkhanh/e-storybook-backend/ws"
)

// Deps gom các thành phần đã khởi tạo ở main
type Deps struct {
	Books          *controllers.BookController
	Stats          *controllers.StatsController
	Relay          *controllers.RelayController
	Health         *controllers.HealthController
	WS             *ws.Handler
	Verifier       services.IdentityVerifier
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	Log            *zap.Logger
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Auth-Token"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}
	for _, o := range origins {
		if o == "*" {
			// wildcard không đi cùng credentials được
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

func SetupRouter(r *gin.Engine, d Deps) *gin.Engine {
	r.Use(gin.Recovery())
	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.New(corsConfig(d.AllowedOrigins)))
	}
	r.Use(
		middleware.RequestLogger(d.Log),
		middleware.Metrics(d.Metrics),
		middleware.ErrorHandler(d.Log),
	)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/health", d.Health.HealthCheck)
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	auth := middleware.AuthMiddleware(d.Verifier)
	optionalAuth := middleware.OptionalAuthMiddleware(d.Verifier)

	// Đọc công khai, ghi cần đăng nhập
	books := r.Group("/books")
	{
		books.GET("", optionalAuth, d.Books.ListBooks)
		books.GET("/:id", d.Books.GetBook)
		books.GET("/:id/epub", d.Books.ExportEpub)
		books.POST("/:id/view", d.Books.RecordView)

		books.POST("", auth, d.Books.CreateBook)
		books.POST("/generate", auth, d.Books.GenerateBook)
		books.PUT("/:id", auth, d.Books.UpdateBook)
		books.DELETE("/:id", auth, d.Books.DeleteBook)
		books.POST("/:id/publish", auth, d.Books.PublishBook)
		books.POST("/:id/pages/:pageNumber/regenerate", auth, d.Books.RegeneratePage)
		books.POST("/:id/like", auth, d.Books.LikeBook)
		books.DELETE("/:id/like", auth, d.Books.UnlikeBook)
	}

	r.GET("/users/:id/stats", d.Stats.GetAuthorStats)

	// relay tự kiểm tra header vì phải trả lỗi trước khi đọc body
	r.POST("/suna-proxy", d.Relay.Forward)
	r.GET("/suna-proxy", d.Relay.TaskStatus)

	r.GET("/ws/books", d.WS.HandleGlobalWebSocket)
	r.GET("/ws/books/:id", d.WS.HandleBookWebSocket)

	return r
}
