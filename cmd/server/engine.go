package main

import (
	"fmt"

	"github.com/dfryer1193/postfeed/internal/middleware"
	"github.com/dfryer1193/postfeed/shared/config"
	"github.com/gin-gonic/gin"
)

// newEngine builds the router with the common middleware. Client IPs come
// from forwarding headers only when the peer is one of cfg.TrustedProxies.
func newEngine(cfg config.Config) (*gin.Engine, error) {
	service := gin.New()
	if err := service.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	service.Use(middleware.LoggingMiddleware())
	service.Use(gin.CustomRecovery(middleware.HandlePanics()))
	service.Use(middleware.Session(cfg.AuthorDomain))
	return service, nil
}
