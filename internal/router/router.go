package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/sitesafe-learn/internal/config"
	"github.com/stemsi/sitesafe-learn/internal/handler"
	"github.com/stemsi/sitesafe-learn/internal/middleware"
	"github.com/stemsi/sitesafe-learn/internal/response"
	"github.com/stemsi/sitesafe-learn/internal/service"
	"github.com/stemsi/sitesafe-learn/internal/web"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Page   *handler.PageHandler
	Mount  *handler.MountHandler
	WS     *handler.WSHandler
	System *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	mountService *service.MountService,
	limiter *middleware.RateLimiter,
	handlers *Handlers,
	cfg *config.Config,
) (*gin.Engine, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if gin.Mode() == gin.DebugMode {
		router.Use(gin.Logger())
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	router.Use(middleware.Brotli())

	// Stylesheet and other embedded assets.
	static := router.Group("/static")
	static.Use(middleware.CacheControl(cfg.StaticMaxAge))
	{
		static.StaticFS("/", http.FS(web.Static()))
	}

	router.GET("/health", handlers.System.Health)

	// ─── 1. Site (HTML, post-redirect-get) ─────────────────────────────
	router.GET("/", handlers.Page.Index)
	site := router.Group("/learn/:slug")
	{
		site.GET("", handlers.Page.Show)
		site.POST("/checks/:section_id", limiter.Middleware(), handlers.Page.SelectCheck)
		site.POST("/quiz/answers", limiter.Middleware(), handlers.Page.AnswerQuiz)
		site.POST("/quiz/reset", limiter.Middleware(), handlers.Page.ResetQuiz)
	}

	// ─── 2. Catalog API (Public) ───────────────────────────────────────
	api := router.Group("/api/v1")
	{
		api.GET("/pages", handlers.Mount.ListPages)
		api.GET("/pages/:slug", handlers.Mount.GetPage)
		api.POST("/pages/:slug/mounts", limiter.Middleware(), handlers.Mount.CreateMount)
	}

	// ─── 3. Mount API (Ticket) ─────────────────────────────────────────
	mount := router.Group("/api/v1/mount")
	mount.Use(middleware.RequireMount(mountService), middleware.NoStore())
	{
		mount.GET("", handlers.Mount.GetMount)
		mount.DELETE("", handlers.Mount.DiscardMount)
		mount.POST("/checks/:section_id/select", limiter.Middleware(), handlers.Mount.SelectCheck)
		mount.POST("/quiz/answers", limiter.Middleware(), handlers.Mount.AnswerQuiz)
		mount.GET("/quiz/score", handlers.Mount.GetScore)
		mount.POST("/quiz/reset", limiter.Middleware(), handlers.Mount.ResetQuiz)
	}

	// ─── 4. WebSocket Group (Ticket via ?token=) ───────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireMount(mountService))
	{
		ws.GET("/mount", handlers.WS.MountStream)
	}

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	return router, nil
}
