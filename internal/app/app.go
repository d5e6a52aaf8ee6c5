package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/placereviews/auth-api/internal/config"
	"github.com/placereviews/auth-api/internal/handler"
	"github.com/placereviews/auth-api/internal/oauth"
	"github.com/placereviews/auth-api/internal/repository"
	"github.com/placereviews/auth-api/internal/service"
	"github.com/placereviews/auth-api/internal/utils"
	"github.com/placereviews/auth-api/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	repos := repository.NewRepositories(infra.Postgres())

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.SessionTokenExpiry.Duration)

	authConfig := service.AuthConfig{
		CodeSecret: cfg.Code.HMACSecret,
		BCryptCost: cfg.Security.BCryptCost,
	}
	if cfg.Google.Enabled() {
		authConfig.Federated = oauth.NewGoogleProvider(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
		infra.Logger().Info("Federated sign-in enabled", zap.String("provider", oauth.ProviderGoogle))
	}

	authService := service.NewAuthService(repos.Account, repos.Identity, jwtManager, infra.Mailer(), infra.Logger(), authConfig)

	router, err := newRouter(cfg, infra.Logger(), routeDeps{
		authHandler: handler.NewAuthHandler(authService, infra.Logger(), cfg.IsProduction()),
		authService: authService,
		limiter:     service.NewRateLimiter(infra.Redis()),
		health:      NewHealthChecker(infra).Handler,
		metrics:     infra.MetricsHandler(),
	})
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

type routeDeps struct {
	authHandler *handler.AuthHandler
	authService service.AuthService
	limiter     handler.Limiter
	health      gin.HandlerFunc
	metrics     http.Handler
}

func newRouter(cfg *config.Config, logger *zap.Logger, deps routeDeps) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	// nil trusts no proxy, so ClientIP falls back to the remote address
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid SERVER_TRUSTED_PROXIES: %w", err)
	}
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(handler.LoggerMiddleware(logger))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	router.GET("/metrics", observability.PrometheusHandler(deps.metrics))
	router.GET("/health", deps.health)

	h := deps.authHandler
	rateLimit := handler.RateLimitMiddleware(
		deps.limiter,
		cfg.Security.RateLimitRequests,
		cfg.Security.RateLimitWindow.Duration,
		handler.RouteAndIPKey,
		logger,
	)
	authenticated := handler.AuthMiddleware(deps.authService)

	auth := router.Group("/api/auth")
	{
		auth.POST("/signup", rateLimit, h.Signup)
		auth.POST("/signin", rateLimit, h.Signin)
		auth.POST("/google", rateLimit, h.SigninWithGoogle)
		auth.POST("/signout", authenticated, h.Signout)
		auth.GET("/me", authenticated, h.GetMe)

		auth.PATCH("/send-verification-code", rateLimit, h.SendVerificationCode)
		auth.PATCH("/verify-verification-code", rateLimit, h.VerifyVerificationCode)
		auth.PATCH("/change-password", authenticated, h.ChangePassword)

		auth.PATCH("/send-forgot-password-code", rateLimit, h.SendForgotPasswordCode)
		auth.POST("/validate-forgot-password-code", rateLimit, h.ValidateForgotPasswordCode)
		auth.PATCH("/verify-forgot-password-code", rateLimit, h.VerifyForgotPasswordCode)
	}

	return router, nil
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("addr", a.server.Addr),
			zap.String("env", a.config.Env),
		)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Server failed", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// The server drains in-flight requests before the backing services close.
	if err := a.server.Shutdown(ctx); err != nil {
		a.infra.Logger().Error("HTTP server shutdown failed", zap.Error(err))
		return errors.Join(err, a.infra.Shutdown(ctx))
	}

	if err := a.infra.Shutdown(ctx); err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
