package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vnkhanh/e-storybook-backend/models"
	"github.com/vnkhanh/e-storybook-backend/repository"
	"github.com/vnkhanh/e-storybook-backend/services"
)

// BookLookup đọc truyện để kiểm tra chủ sở hữu phòng (repository.StorybookRepository)
type BookLookup interface {
	Get(ctx context.Context, id string) (*models.Storybook, error)
}

type Handler struct {
	hub      *Hub
	verifier services.IdentityVerifier
	books    BookLookup
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewHandler(hub *Hub, verifier services.IdentityVerifier, books BookLookup, allowedOrigins []string, log *zap.Logger) *Handler {
	return &Handler{
		hub:      hub,
		verifier: verifier,
		books:    books,
		upgrader: websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)},
		log:      log,
	}
}

// originChecker: không cấu hình origin thì cho qua hết (dev)
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

func (h *Handler) authenticate(c *gin.Context) (string, bool) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Missing token"})
		return "", false
	}
	user, err := h.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user token"})
		return "", false
	}
	return user.ID, true
}

// serve chạy read loop cho tới khi client đóng kết nối
func (h *Handler) serve(c *gin.Context, room, userID string) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := h.hub.Register(room, conn)
	defer h.hub.Unregister(room, conn)

	h.log.Debug("ws connected", zap.String("room", room), zap.String("user_id", userID))
	hello, _ := json.Marshal(Event{Type: "connected", StorybookID: room})
	client.Send <- hello

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.log.Debug("ws disconnected", zap.String("room", room), zap.String("user_id", userID))
}

// canJoin chỉ cho chủ truyện vào phòng. Id chưa có bản ghi vẫn cho vào
// để client subscribe trước rồi mới gọi POST /books/generate với storybookId đó.
func (h *Handler) canJoin(c *gin.Context, bookID, userID string) bool {
	book, err := h.books.Get(c.Request.Context(), bookID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return true
	case err != nil:
		h.log.Error("ws room lookup failed", zap.String("room", bookID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
		return false
	case book.AuthorID != userID:
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Forbidden"})
		return false
	}
	return true
}

// GET /ws/books/:id?token=
func (h *Handler) HandleBookWebSocket(c *gin.Context) {
	userID, ok := h.authenticate(c)
	if !ok {
		return
	}
	room := c.Param("id")
	if !h.canJoin(c, room, userID) {
		return
	}
	h.serve(c, room, userID)
}

// GET /ws/books?token=
func (h *Handler) HandleGlobalWebSocket(c *gin.Context) {
	userID, ok := h.authenticate(c)
	if !ok {
		return
	}
	h.serve(c, "", userID)
}
