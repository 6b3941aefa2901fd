package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	internalauth "github.com/thereayou/backstagepass/internal/auth"
	"github.com/thereayou/backstagepass/pkg/auth"
)

const (
	UserIDKey = "userID"
	TokenKey  = "token"
)

// AuthMiddleware пускает только запросы с живой сессией
func AuthMiddleware(resolver *internalauth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			c.Abort()
			return
		}

		user, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session check failed"})
			c.Abort()
			return
		}
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Next()
	}
}

// WSAuthMiddleware — вариант для websocket: токен приходит в query
// string, сырой токен сохраняется в контексте — координатор повторно
// предъявит его при входе в комнату.
func WSAuthMiddleware(resolver *internalauth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromRequest(c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		user, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session check failed"})
			c.Abort()
			return
		}
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(TokenKey, token)
		c.Next()
	}
}
