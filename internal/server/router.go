package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	internalauth "github.com/thereayou/backstagepass/internal/auth"
	"github.com/thereayou/backstagepass/internal/handlers"
	"github.com/thereayou/backstagepass/internal/middleware"
)

func APIEndpoints(
	r *gin.Engine,
	resolver *internalauth.Resolver,
	authH *handlers.AuthHandler,
	userH *handlers.UserHandler,
	roomH *handlers.WatchRoomHandler,
	wsH *handlers.WebSocketHandler,
) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	// Auth endpoints
	auth := r.Group("/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
		auth.POST("/logout", middleware.AuthMiddleware(resolver), authH.Logout)
	}

	// API endpoints
	api := r.Group("/api/v1", middleware.AuthMiddleware(resolver))
	{
		api.GET("/users/me", userH.GetMe)
		api.GET("/users/:id", userH.GetUser)

		api.GET("/watchrooms/public-codes", roomH.PublicCodes)
		api.GET("/watchrooms/exists/:code", roomH.Exists)
		api.GET("/watchrooms/user-ids/:code", roomH.UserIDs)
	}

	// Websocket комнат совместного просмотра
	r.GET("/ws", middleware.WSAuthMiddleware(resolver), wsH.HandleWebSocket)
}
