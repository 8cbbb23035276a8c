package app

import (
	"context"
	"net/http"
	"time"

	"catalog-service/internal/auth/handler"
	"catalog-service/internal/auth/provider"
	"catalog-service/internal/auth/provider/facebook"
	"catalog-service/internal/auth/provider/google"
	"catalog-service/internal/auth/resolver"
	"catalog-service/internal/catalog"
	"catalog-service/internal/config"
	"catalog-service/internal/logger"
	"catalog-service/internal/middleware"
	"catalog-service/internal/session"
	"catalog-service/internal/web"
	"catalog-service/internal/web/templates"

	"github.com/gin-gonic/gin"
)

// idle rate limit buckets are dropped after this long
const limiterTTL = 10 * time.Minute

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {
	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	router, err := newRouter(ctx, cfg, infra)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	return router, infra.Close, nil
}

func newRouter(ctx context.Context, cfg config.Config, infra *Infra) (*gin.Engine, error) {
	sessions, err := session.NewManager(
		infra.sessionStore(),
		[]byte(cfg.SessionSecret),
		cfg.SessionTTL,
		session.CookieOptions{Secure: cfg.CookieSecure},
	)
	if err != nil {
		return nil, err
	}

	registry, err := setupProviders(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tpl, err := templates.Load()
	if err != nil {
		return nil, err
	}

	authHandler := handler.NewHandler(
		registry,
		sessions,
		resolver.NewDBResolver(infra.DB),
	)
	webHandler := web.NewHandler(catalog.NewService(infra.DB.DB), sessions)
	limiter := middleware.NewRateLimiter(cfg.ConnectRate, cfg.ConnectBurst, limiterTTL)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.FromHTTP(middleware.RequestID),
		middleware.Logging(),
	)
	router.SetHTMLTemplate(tpl)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler.RegisterRoutes(router, limiter.Middleware())
	webHandler.RegisterRoutes(router)

	for _, route := range router.Routes() {
		logger.Debug("route", map[string]any{
			"method": route.Method,
			"path":   route.Path,
		})
	}

	return router, nil
}

// setupProviders registers only the providers that have credentials.
func setupProviders(ctx context.Context, cfg config.Config) (*provider.Registry, error) {
	client := &http.Client{Timeout: cfg.HTTPClientTimeout}

	var list []provider.OAuthProvider

	if cfg.Google.Configured() {
		g, err := google.New(ctx, google.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Endpoints:    google.DefaultEndpoints,
			HTTPClient:   client,
		})
		if err != nil {
			return nil, err
		}
		list = append(list, g)
	}

	if cfg.Facebook.Configured() {
		fb, err := facebook.New(facebook.Config{
			ClientID:     cfg.Facebook.ClientID,
			ClientSecret: cfg.Facebook.ClientSecret,
			GraphURL:     cfg.FacebookGraphURL,
			HTTPClient:   client,
		})
		if err != nil {
			return nil, err
		}
		list = append(list, fb)
	}

	registry := provider.NewRegistry(list...)
	if len(registry.Names()) == 0 {
		logger.Warn("no oauth providers configured; login is disabled", nil)
	} else {
		logger.Info("oauth providers ready", map[string]any{"providers": registry.Names()})
	}
	return registry, nil
}
