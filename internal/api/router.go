package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/Jooy-edu/jooy-auth/internal/api/handler"
	"github.com/Jooy-edu/jooy-auth/internal/api/middleware"
	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
	"github.com/Jooy-edu/jooy-auth/internal/core/ports"
	"github.com/Jooy-edu/jooy-auth/internal/core/service"
	"github.com/Jooy-edu/jooy-auth/internal/infrastructure/config"
	mongorepo "github.com/Jooy-edu/jooy-auth/internal/infrastructure/db/mongo"
	redisrepo "github.com/Jooy-edu/jooy-auth/internal/infrastructure/db/redis"
	"github.com/Jooy-edu/jooy-auth/internal/infrastructure/mail"
)

// Deps carries the externally owned resources the router wires together.
type Deps struct {
	DB     *mongo.Database
	Redis  *redis.Client
	Config *config.Config
	Logger zerolog.Logger

	// Audit overrides the default synchronous mongo sink; the server
	// installs the sharded dispatcher here.
	Audit ports.LoginAuditor

	// Mailer delivers verification and recovery links. Defaults to the
	// log-only mailer when unset.
	Mailer ports.Mailer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("jooy_auth"))

	// --- Repositories ---
	creds := mongorepo.NewCredentialRepository(deps.DB)
	profiles := mongorepo.NewProfileRepository(deps.DB)
	sessions := mongorepo.NewSessionRepository(deps.DB)
	worksheets := mongorepo.NewWorksheetRepository(deps.DB)
	limiter := redisrepo.NewLoginLimiter(deps.Redis, deps.Config.Auth.RateLimitMax, deps.Config.Auth.RateLimitWindow)

	audit := deps.Audit
	if audit == nil {
		audit = mongorepo.NewAuditRepository(deps.DB)
	}
	mailer := deps.Mailer
	if mailer == nil {
		mailer = mail.NewLogMailer(deps.Logger)
	}

	// --- Services ---
	tokens := service.NewTokenIssuer(
		deps.Config.Auth.JWTSecret,
		deps.Config.Auth.AccessTTL,
		deps.Config.Auth.VerifyTTL,
		deps.Config.Auth.RecoveryTTL,
	)
	authService := service.NewAuthService(service.AuthServiceDeps{
		Credentials:   creds,
		Profiles:      profiles,
		Sessions:      sessions,
		Limiter:       limiter,
		Audit:         audit,
		Mailer:        mailer,
		Tokens:        tokens,
		Logger:        deps.Logger,
		BaseURL:       deps.Config.BaseURL,
		SignupCredits: deps.Config.Auth.SignupCredits,
	})
	worksheetService := service.NewWorksheetService(worksheets, deps.Logger)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	profileHandler := handler.NewProfileHandler(profiles)
	worksheetHandler := handler.NewWorksheetHandler(worksheetService)
	adminHandler := handler.NewAdminHandler(profiles)

	authMW := middleware.Auth(deps.Config.Auth.JWTSecret)
	guardCfg := middleware.GuardConfig{
		JWTSecret:   deps.Config.Auth.JWTSecret,
		Profiles:    profiles,
		LoginPath:   "/auth/login",
		LandingPath: "/",
	}

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, authMW)
	e.POST("/auth/refresh", authHandler.Refresh, authMW)
	e.POST("/auth/password/forgot", authHandler.ForgotPassword)
	e.POST("/auth/password/reset", authHandler.ResetPassword)
	e.PUT("/auth/password", authHandler.UpdatePassword, authMW)
	e.GET("/auth/verify", authHandler.Verify)

	if deps.Config.OAuth.GoogleClientID != "" {
		oauthService := service.NewOAuthService(&oauth2.Config{
			ClientID:     deps.Config.OAuth.GoogleClientID,
			ClientSecret: deps.Config.OAuth.GoogleClientSecret,
			RedirectURL:  deps.Config.OAuth.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoints.Google,
		}, service.GoogleUserInfoURL, authService)
		oauthHandler := handler.NewOAuthHandler(oauthService)
		e.GET("/auth/oauth/google", oauthHandler.Start)
		e.GET("/auth/oauth/google/callback", oauthHandler.Callback)
	}

	// --- Profile routes ---
	e.GET("/profile", profileHandler.Get, authMW)
	e.PATCH("/profile", profileHandler.Update, authMW)

	// --- Protected app views ---
	app := e.Group("/app", middleware.Guard(guardCfg, ""))
	app.GET("/worksheets", worksheetHandler.List)
	app.GET("/worksheets/:id", worksheetHandler.Get)

	// --- Admin views ---
	admin := e.Group("/admin", middleware.Guard(guardCfg, domain.RoleAdmin))
	admin.GET("/users", adminHandler.ListUsers)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
