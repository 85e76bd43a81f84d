package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/tonpilot/backend/internal/auth"
	"github.com/user/tonpilot/backend/internal/config"
	"github.com/user/tonpilot/backend/internal/dispatch"
	"github.com/user/tonpilot/backend/internal/gateway"
	"github.com/user/tonpilot/backend/internal/handlers"
	"github.com/user/tonpilot/backend/internal/keygen"
	"github.com/user/tonpilot/backend/internal/locale"
	"github.com/user/tonpilot/backend/internal/middleware"
	"github.com/user/tonpilot/backend/internal/nav"
	"github.com/user/tonpilot/backend/internal/registry"
	"github.com/user/tonpilot/backend/internal/session"
	"github.com/user/tonpilot/backend/internal/settlement"
	"github.com/user/tonpilot/backend/internal/ticker"
	"github.com/user/tonpilot/backend/internal/txbuilder"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := config.LoadEnv(); err != nil {
		logger.Info("no .env file found, relying on system env vars")
	}
	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// Engine wiring: registry + sessions are the only mutable state.
	locales := locale.NewStore(cfg.DefaultLocale)
	reg := registry.New(keygen.New(), logger)
	sessions := session.NewStore(cfg.DefaultLocale)
	builder := txbuilder.New(cfg.FeeRate)
	settler := settlement.NewClient(cfg.SettlementURL, cfg.SettlementAPIKey,
		cfg.PlatformAddress, cfg.PlatformSecret, logger)

	feed := ticker.NewFeed(2*time.Second, logger)
	feed.Start()
	defer feed.Stop()

	renderer := nav.NewRenderer(locales, feed)
	dispatcher := dispatch.New(reg, sessions, builder, settler, renderer, locales, logger)

	// Transport wiring.
	issuer := auth.NewTokenIssuer(cfg.JWTSecret)
	accounts := auth.NewAccounts()
	authHandler := handlers.NewAuthHandler(accounts, issuer, logger)

	hub := gateway.NewHub(logger)
	go hub.Run(feed)

	app := fiber.New()

	// --- WebSocket routes ---
	wsGroup := app.Group("/ws")
	wsGroup.Use("/", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	wsGroup.Get("/chat", websocket.New(gateway.ChatEndpoint(hub, dispatcher, issuer, logger)))
	wsGroup.Get("/prices", websocket.New(gateway.PricesEndpoint(hub, logger)))

	// --- API routes ---
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("tonpilot is healthy!")
	})

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/login", authHandler.Login)

	api.Use(middleware.Protected(issuer))

	api.Get("/me", func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uuid.UUID)
		username, ok2 := c.Locals("username").(string)
		if !ok || !ok2 {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to get user info from context"})
		}
		return c.JSON(fiber.Map{
			"user_id":  userID,
			"username": username,
			"wallets":  reg.Count(userID.String()),
		})
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.ListenAddr))
		errCh <- app.Listen(cfg.ListenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("shutting down gracefully")
		_ = app.ShutdownWithTimeout(5 * time.Second)
	case err := <-errCh:
		logger.Fatal("server error", zap.Error(err))
	}
}
