// Package app wires the HTTP routes to their handlers
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bitwise74/blog-api/app/post"
	"bitwise74/blog-api/app/root"
	"bitwise74/blog-api/app/session"
	"bitwise74/blog-api/app/user"
	"bitwise74/blog-api/db"
	"bitwise74/blog-api/internal"
	"bitwise74/blog-api/internal/service"
	"bitwise74/blog-api/pkg/middleware"
	"bitwise74/blog-api/pkg/security"
	"bitwise74/blog-api/pkg/validators"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

// RouterConfig holds the settings the route table needs
type RouterConfig struct {
	AllowOrigins    []string
	RateLimit       int
	ResendPerMinute int
	// ResendWindow is the window ResendPerMinute applies to, a minute unless set
	ResendWindow    time.Duration
	MaxBodySize     int64
}

// NewRouter builds everything from the loaded config, starts the background
// workers and returns the router. The workers stop when ctx is done, the
// mail queue has to be closed by the caller.
func NewRouter(ctx context.Context) (*gin.Engine, *internal.Deps, error) {
	if err := makeLogger(viper.GetString("app.log_level")); err != nil {
		return nil, nil, fmt.Errorf("failed to create logger, %w", err)
	}

	database, err := db.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	var mailer service.Mailer = service.LogMailer{}
	if host := viper.GetString("mail.host"); host != "" {
		mailer = service.NewSMTPMailer(
			host,
			viper.GetInt("mail.port"),
			viper.GetString("mail.username"),
			viper.GetString("mail.password"),
			viper.GetString("mail.from"),
		)
	}

	queue := service.NewMailQueue(mailer, viper.GetInt("mail.queue_size"), viper.GetInt("mail.workers"))

	d := NewDeps(database, security.New(), queue, DepsConfig{
		AppKey:             viper.GetString("app.key"),
		FrontendURL:        viper.GetString("frontend.url"),
		ResetTTL:           viper.GetDuration("auth.reset_ttl"),
		ResetThrottle:      viper.GetDuration("auth.reset_throttle"),
		RevealUnknownEmail: viper.GetBool("auth.reveal_unknown_email"),
	})
	d.Mail = queue

	router, err := NewEngine(ctx, d, RouterConfig{
		AllowOrigins:    strings.Split(viper.GetString("host.cors"), ","),
		RateLimit:       viper.GetInt("security.rate_limit"),
		ResendPerMinute: viper.GetInt("security.resend_per_minute"),
		MaxBodySize:     viper.GetInt64("host.max_body_size"),
	})
	if err != nil {
		return nil, nil, err
	}

	queue.StartWorkerPool()

	// Reset tokens live for an hour by default, no need to look more often
	service.TokenCleanup(ctx, viper.GetDuration("cleanup.interval"), d.Resets)

	return router, d, nil
}

type DepsConfig struct {
	AppKey             string
	FrontendURL        string
	ResetTTL           time.Duration
	ResetThrottle      time.Duration
	RevealUnknownEmail bool
}

// NewDeps builds the services on top of an open database. mail receives every
// outgoing message.
func NewDeps(database *gorm.DB, argon *security.ArgonHash, mail service.Enqueuer, cfg DepsConfig) *internal.Deps {
	tokens := service.NewTokenIssuer(database)
	verifier := service.NewEmailVerifier(database, security.NewLinkSigner(cfg.AppKey), mail, cfg.FrontendURL)

	return &internal.Deps{
		DB:       database,
		Argon:    argon,
		Tokens:   tokens,
		Verifier: verifier,
		Accounts: service.NewAccounts(database, argon, tokens, verifier),
		Resets: service.NewPasswordResets(database, argon, mail, service.ResetOptions{
			FrontendURL: cfg.FrontendURL,
			TTL:         cfg.ResetTTL,
			Throttle:    cfg.ResetThrottle,
		}),
		Sessions:           service.NewSessionDirectory(database, tokens),
		Posts:              service.NewPostStore(database),
		RevealUnknownEmail: cfg.RevealUnknownEmail,
	}
}

// NewEngine registers every route. Rate limiter state is dropped when ctx is done.
func NewEngine(ctx context.Context, d *internal.Deps, cfg RouterConfig) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validators.Register(v); err != nil {
			return nil, fmt.Errorf("failed to register validators, %w", err)
		}
	}

	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = 1 << 20
	}
	if cfg.ResendWindow <= 0 {
		cfg.ResendWindow = time.Minute
	}

	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     cfg.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString(middleware.UserIDKey); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true

	auth := middleware.NewAuthMiddleware(d.Tokens)
	verified := middleware.NewVerifiedMiddleware()
	turnstile := middleware.NewTurnstileMiddleware()
	rateLimiter := middleware.RateLimiterMiddleware(ctx, middleware.RateLimiterConfig{
		Limit: cfg.RateLimit,
		Burst: cfg.RateLimit * 2,
	})
	resendLimiter := middleware.RateLimiterMiddleware(ctx, middleware.RateLimiterConfig{
		Limit:  cfg.ResendPerMinute,
		Per:    cfg.ResendWindow,
		Window: true,
	})

	m := router.Group("/api", rateLimiter, middleware.BodySizeLimiter(cfg.MaxBodySize))
	{
		// HEAD /api/heartbeat 		-> Used to check if the server and database are alive
		m.HEAD("/heartbeat", func(c *gin.Context) { root.Heartbeat(c, d) })

		// POST /api/register		-> Registers a new user and mails a verification link
		m.POST("/register", turnstile, func(c *gin.Context) { user.UserRegister(c, d) })

		// POST /api/login		-> Checks credentials and returns a bearer token
		m.POST("/login", func(c *gin.Context) { user.UserLogin(c, d) })

		// POST /api/forgot-password	-> Mails a password reset link
		m.POST("/forgot-password", turnstile, func(c *gin.Context) { user.UserForgotPassword(c, d) })

		// POST /api/reset-password	-> Sets a new password using a reset token
		m.POST("/reset-password", func(c *gin.Context) { user.UserResetPassword(c, d) })

		// GET /api/email/verify/:id/:hash	-> Verifies the email of a user
		m.GET("/email/verify/:id/:hash", func(c *gin.Context) { user.UserVerify(c, d) })

		// POST /api/email/resend-verification	-> Mails the verification link again
		m.POST("/email/resend-verification", resendLimiter, func(c *gin.Context) { user.UserResendVerification(c, d) })
	}

	a := m.Group("", auth)
	{
		// GET /api/me			-> Returns the authenticated user
		a.GET("/me", user.UserFetch)

		// POST /api/logout		-> Revokes the token used for the request
		a.POST("/logout", func(c *gin.Context) { user.UserLogout(c, d) })
	}

	s := a.Group("/sessions")
	{
		// GET /api/sessions		-> Lists the user's active sessions
		s.GET("", func(c *gin.Context) { session.SessionList(c, d) })

		// POST /api/sessions/:token_id/revoke	-> Revokes one session
		s.POST("/:token_id/revoke", func(c *gin.Context) { session.SessionRevoke(c, d) })

		// POST /api/sessions/revoke-all-except-current	-> Revokes every other session
		s.POST("/revoke-all-except-current", func(c *gin.Context) { session.SessionRevokeOthers(c, d) })
	}

	p := a.Group("/posts", verified)
	{
		// GET /api/posts		-> Lists posts, ?my_posts=1 and ?sort=most_liked are supported
		p.GET("", func(c *gin.Context) { post.PostIndex(c, d) })

		// POST /api/posts		-> Creates a post
		p.POST("", func(c *gin.Context) { post.PostStore(c, d) })

		// GET /api/posts/:id		-> Returns a single post
		p.GET("/:id", func(c *gin.Context) { post.PostShow(c, d) })

		// PUT/PATCH /api/posts/:id	-> Updates a post owned by the user
		p.PUT("/:id", func(c *gin.Context) { post.PostUpdate(c, d) })
		p.PATCH("/:id", func(c *gin.Context) { post.PostUpdate(c, d) })

		// DELETE /api/posts/:id	-> Deletes a post owned by the user
		p.DELETE("/:id", func(c *gin.Context) { post.PostDestroy(c, d) })

		// POST /api/posts/:id/like	-> Toggles the user's like on a post
		p.POST("/:id/like", func(c *gin.Context) { post.PostLike(c, d) })
	}

	return router, nil
}
