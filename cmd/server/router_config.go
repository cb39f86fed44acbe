package main

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/medicaments-api/auth"
	"github.com/diewo77/medicaments-api/internal/config"
	"github.com/diewo77/medicaments-api/internal/handlers"
	"github.com/diewo77/medicaments-api/internal/policy"
	"github.com/diewo77/medicaments-api/internal/services"
)

// RouterConfig holds the configured handlers and authorization for the API.
type RouterConfig struct {
	// Gate decides product and shopping list permissions
	Gate *policy.Gate
	// Gateway binds bearer tokens to requests
	Gateway *auth.Gateway

	AuthHandler         *handlers.AuthHandler
	ClientHandler       *handlers.ClientHandler
	ProductHandler      *handlers.ProductHandler
	ShoppingListHandler *handlers.ShoppingListHandler

	DB *gorm.DB
	// CORSOrigins are the browser origins allowed to call the API; empty allows all.
	CORSOrigins []string
}

// NewRouterConfig wires services, policies and handlers together.
func NewRouterConfig(db *gorm.DB, cfg *config.Config, log *zap.Logger) *RouterConfig {
	g := policy.NewGate(cfg.Auth.CatalogAdminRoles)
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret)

	clients := services.NewClientService(db, auth.NewBcryptHasher(cfg.Auth.BcryptCost))
	sessions := services.NewSessionService(db, clients, tokens,
		services.WithClientStatusCache(time.Duration(cfg.Auth.ClientStatusCacheTTL)*time.Second))
	catalog := services.NewCatalogService(db)
	lists := services.NewShoppingListService(db, g,
		services.WithUncheckedTransitions(cfg.App.LegacyStatusTransitions))

	if cfg.App.LegacyStatusTransitions {
		log.Warn("shopping list status transitions are unchecked")
	}

	return &RouterConfig{
		Gate:                g,
		Gateway:             auth.NewGateway(tokens, sessions.Verifier()),
		AuthHandler:         handlers.NewAuthHandler(clients, sessions, log.Named("auth")),
		ClientHandler:       handlers.NewClientHandler(clients, log.Named("clients")),
		ProductHandler:      handlers.NewProductHandler(catalog, log.Named("products")),
		ShoppingListHandler: handlers.NewShoppingListHandler(lists, log.Named("shopping_lists")),
		DB:                  db,
		CORSOrigins:         cfg.Server.CORSAllowedOrigins,
	}
}
