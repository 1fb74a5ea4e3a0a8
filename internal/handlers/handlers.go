package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"radblog/internal/config"
	"radblog/internal/middleware"
	"radblog/internal/models"
	"radblog/internal/repository"
	"radblog/internal/service"
	"radblog/internal/storage"
)

type HandlerSet struct {
	log         zerolog.Logger
	cfg         *config.AppConfig
	authService service.AuthService
	postService service.PostService
	users       repository.UserRepository
	db          *pgxpool.Pool
	cache       *redis.Client
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	auth := service.NewAuthService(userRepo, cfg, log)
	posts := service.NewPostService(postRepo, store, cache, cfg, log)

	return HandlerSet{
		log:         log,
		cfg:         cfg,
		authService: auth,
		postService: posts,
		users:       userRepo,
		db:          db,
		cache:       cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.GET("/me", middleware.Auth(h.cfg), h.Me)
	}

	post := router.Group("/post")
	{
		post.GET("", h.ListPosts)
		post.GET("/:id", h.GetPost)
		post.POST("/create", middleware.Auth(h.cfg), middleware.RequirePublisher(), h.CreatePost)
		post.GET("/me", middleware.Auth(h.cfg), middleware.RequireRole(models.RoleUser), h.MyPosts)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.Auth(h.cfg), middleware.RequireRole(models.RoleAdmin))
	admin.GET("/users", h.AdminListUsers)
}
