package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/e-storybook-backend/apperror"
	"github.com/vnkhanh/e-storybook-backend/models"
	"github.com/vnkhanh/e-storybook-backend/services"
)

const (
	ctxUser   = "user"
	ctxUserID = "user_id"
)

func authHeader(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	// Nếu không có, thử X-Auth-Token (cho iOS)
	if h == "" {
		h = c.GetHeader("X-Auth-Token")
	}
	return h
}

func AuthMiddleware(verifier services.IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := services.BearerToken(authHeader(c))
		if err != nil {
			Abort(c, err)
			return
		}

		user, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			if !apperror.IsKind(err, apperror.KindAuth) {
				err = apperror.UnauthorizedWrap("Invalid user token", err)
			}
			Abort(c, err)
			return
		}

		// Lưu thông tin vào context để controller dùng
		c.Set(ctxUser, user)
		c.Set(ctxUserID, user.ID)
		c.Next()
	}
}

// OptionalAuthMiddleware coi request thiếu hoặc sai token là ẩn danh
func OptionalAuthMiddleware(verifier services.IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := services.BearerToken(authHeader(c))
		if err != nil {
			c.Next()
			return
		}
		if user, err := verifier.Verify(c.Request.Context(), token); err == nil {
			c.Set(ctxUser, user)
			c.Set(ctxUserID, user.ID)
		}
		c.Next()
	}
}

// CurrentUser trả về user đã xác thực, nil nếu request ẩn danh
func CurrentUser(c *gin.Context) *models.AuthUser {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil
	}
	user, _ := v.(*models.AuthUser)
	return user
}
