// Package app wires the HTTP surface together
package app

import (
	"fmt"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/juveniletion/medcore/app/article"
	"github.com/juveniletion/medcore/app/user"
	"github.com/juveniletion/medcore/db"
	"github.com/juveniletion/medcore/internal"
	"github.com/juveniletion/medcore/internal/service"
	"github.com/juveniletion/medcore/internal/storage"
	"github.com/juveniletion/medcore/pkg/middleware"
	"github.com/juveniletion/medcore/pkg/security"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

// NewRouter builds the production dependency set and the engine on
// top of it.
func NewRouter() (*gin.Engine, error) {
	makeLogger()

	conn, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	files, err := storage.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize attachment storage, %w", err)
	}

	d := &internal.Deps{
		DB:       conn,
		Argon:    security.New(),
		Mail:     service.NewMailer(),
		Sessions: service.NewSessionStore(time.Duration(viper.GetInt("session.ttl_hours")) * time.Hour),
		Codes:    &service.EmailCodes{DB: conn},
		Files:    files,
	}

	return NewRouterWithDeps(d), nil
}

// NewRouterWithDeps builds the engine around an existing dependency
// set. Kept separate so tests can swap in their own DB and mailer.
func NewRouterWithDeps(d *internal.Deps) *gin.Engine {
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("host.cors"),
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				return fields
			},
		}),
		middleware.NewSessionMiddleware(d.DB, d.Sessions),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 5 << 20

	// Per-engine so a rebuilt router never serves another instance's
	// cached bodies
	cacheStore := persist.NewMemoryStore(time.Minute)
	cacheFor := func(sec int) gin.HandlerFunc {
		return cache.CacheByRequestURI(cacheStore, time.Second*time.Duration(sec))
	}

	turnstile := middleware.NewTurnstileMiddleware()
	authLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: 5,
		Burst:             10,
	})
	maxUploadSize := viper.GetInt64("upload.max_size")

	api := router.Group("/api", middleware.BodySizeLimiter(1<<20))
	{
		// GET /api/me			-> Current identity or anonymous
		api.GET("/me", func(c *gin.Context) { user.Me(c, d) })

		// POST /api/register		-> Starts a registration, mails a code
		api.POST("/register", authLimiter, turnstile, func(c *gin.Context) { user.Register(c, d) })

		// POST /api/verify		-> Completes a registration with the code
		api.POST("/verify", authLimiter, func(c *gin.Context) { user.Verify(c, d) })

		// POST /api/login		-> Binds the session to a user
		api.POST("/login", authLimiter, func(c *gin.Context) { user.Login(c, d) })

		// GET /api/logout		-> Unbinds the session
		api.GET("/logout", middleware.RequireAuth(), func(c *gin.Context) { user.Logout(c, d) })

		// GET /api/articles		-> Newest articles, optional ?category=
		api.GET("/articles", func(c *gin.Context) { article.List(c, d) })

		// GET /api/article/:id		-> Article detail, 404 if missing
		api.GET("/article/:id", cacheFor(30), func(c *gin.Context) { article.Fetch(c, d) })
	}

	admin := router.Group("/api/admin", middleware.RequireAdmin())
	{
		// POST /api/admin/article/new	-> Publishes an article, multipart with optional attachment
		admin.POST("/article/new", middleware.BodySizeLimiter(maxUploadSize), func(c *gin.Context) { article.Create(c, d) })
	}

	// GET /uploads/:filename		-> Serves a stored attachment
	router.GET("/uploads/:filename", func(c *gin.Context) { article.ServeAttachment(c, d) })

	return router
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}
	cfg.DisableStacktrace = true

	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

