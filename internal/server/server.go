package server

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	internalauth "github.com/thereayou/backstagepass/internal/auth"
	"github.com/thereayou/backstagepass/internal/database"
	"github.com/thereayou/backstagepass/internal/handlers"
	"github.com/thereayou/backstagepass/internal/watch"
	"github.com/thereayou/backstagepass/pkg/auth"
)

type Server struct {
	Router      *gin.Engine
	DB          *database.Database
	Redis       *redis.Client
	JWTManager  *auth.JWTManager
	Hub         *watch.Hub
	Coordinator *watch.Coordinator
}

func NewServer() *Server {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			logrus.Info(".env not found, using environment variables")
		}
	}

	dbConn := &database.Database{}
	if err := dbConn.Connect(); err != nil {
		logrus.Fatalf("Postgres connect failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		logrus.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logrus.Fatalf("Redis connect failed: %v", err)
	}

	jwtMgr := auth.NewJWTManager(
		os.Getenv("JWT_SECRET"),
		24*time.Hour,
	)

	resolver := internalauth.NewResolver(jwtMgr, rdb, dbConn)

	hub := watch.NewHub()
	coordinator := watch.NewCoordinator(dbConn, hub, resolver, internalauth.NewBcryptHasher())
	hub.OnDisconnect(coordinator.Disconnect)
	go hub.Run()

	authH := handlers.NewAuthHandler(dbConn, jwtMgr, rdb)
	userH := handlers.NewUserHandler(dbConn)
	roomH := handlers.NewWatchRoomHandler(dbConn)
	wsH := handlers.NewWebSocketHandler(hub, coordinator)

	router := gin.Default()
	APIEndpoints(router, resolver, authH, userH, roomH, wsH)

	return &Server{
		Router:      router,
		DB:          dbConn,
		Redis:       rdb,
		JWTManager:  jwtMgr,
		Hub:         hub,
		Coordinator: coordinator,
	}
}

func (s *Server) Run() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logrus.Infof("Server starting on port %s", port)
	if err := s.Router.Run(":" + port); err != nil {
		logrus.Fatalf("Server run error: %v", err)
	}
}
