package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"photolock/api/internal/attachments"
	"photolock/api/internal/config"
	"photolock/api/internal/gallery"
	"photolock/api/internal/middleware"
	"photolock/api/internal/models"
	"photolock/api/internal/repository"
	"photolock/api/internal/service"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	auth     *service.AuthService
	drafts   *service.DraftService
	posts    *service.PostService
	gallery  *gallery.Service
	previews *attachments.PreviewRegistry
	db       *pgxpool.Pool
	cache    *redis.Client
	users    *repository.UserRepository
	sessions *repository.SessionRepository
}

type Deps struct {
	Log      zerolog.Logger
	Cfg      *config.AppConfig
	Auth     *service.AuthService
	Drafts   *service.DraftService
	Posts    *service.PostService
	Gallery  *gallery.Service
	Previews *attachments.PreviewRegistry
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Users    *repository.UserRepository
	Sessions *repository.SessionRepository
}

func NewHandlerSet(deps Deps) HandlerSet {
	return HandlerSet{
		log:      deps.Log,
		cfg:      deps.Cfg,
		auth:     deps.Auth,
		drafts:   deps.Drafts,
		posts:    deps.Posts,
		gallery:  deps.Gallery,
		previews: deps.Previews,
		db:       deps.DB,
		cache:    deps.Cache,
		users:    deps.Users,
		sessions: deps.Sessions,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", h.RegisterUser)
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.Refresh)
	auth.POST("/logout", h.Logout)

	authed := middleware.Auth(h.cfg, h.users, h.sessions)

	me := v1.Group("/auth", authed)
	me.GET("/me", h.Me)
	me.GET("/sessions", h.ListSessions)
	me.DELETE("/sessions/:deviceId", h.RevokeSession)

	// Preview bytes are fetched by <img>/<video> tags, which cannot carry a
	// bearer token; the HMAC in the URL is the credential.
	v1.GET("/previews/:id", h.ServePreview)

	galleries := v1.Group("/gallery", authed)
	galleries.GET("", h.ListGallery)
	galleries.GET("/watch", h.WatchGallery)
	galleries.POST("/import", h.ImportGalleryItem)

	composer := v1.Group("/composer", authed)
	composer.POST("/upload", h.UploadFiles)
	composer.GET("/previews", h.DraftPreviews)
	composer.DELETE("/attachments/:id", h.RemoveAttachment)
	composer.DELETE("", h.DiscardDraft)

	posts := v1.Group("/posts", authed)
	posts.POST("", h.CreatePost)
	posts.GET("", h.ListMyPosts)
	posts.GET("/:id", h.GetPost)
	posts.DELETE("/:id", h.DeletePost)

	admin := v1.Group("/admin", authed, middleware.RequireRoles(models.UserRoleAdmin))
	admin.GET("/posts", h.AdminListPosts)
}
