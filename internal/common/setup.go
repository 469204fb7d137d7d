package common

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"social-wallet-client-go/internal/api"
	"social-wallet-client-go/internal/config"
	"social-wallet-client-go/internal/database"
	"social-wallet-client-go/internal/models"
	"social-wallet-client-go/internal/redisstore"
	"social-wallet-client-go/internal/state"
	"social-wallet-client-go/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	Tokens store.TokenStore
	Client *api.Client
	App    *state.App
}

// InitializeLogger builds the production logger at LOG_LEVEL (default info)
// and installs it as the zap global.
func InitializeLogger() (*zap.Logger, func()) {
	cfg := zap.NewProductionConfig()
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			log.Printf("Unknown LOG_LEVEL %q, using info\n", level)
		} else {
			cfg.Level = zap.NewAtomicLevelAt(parsed)
		}
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// NewTokenStore opens the backend selected by TOKEN_STORE.
func NewTokenStore(ctx context.Context, cfg *models.Config) (store.TokenStore, error) {
	switch cfg.Session.TokenStore {
	case config.TokenStoreSqlite:
		svc, err := database.NewService(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return svc, nil
	case config.TokenStoreRedis:
		rs, err := redisstore.NewStore(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return rs, nil
	case config.TokenStoreMemory:
		zap.L().Warn("Using in-memory token store, the session ends with the process")
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown token store %q", cfg.Session.TokenStore)
	}
}

// InitializeServices opens the token store, builds the API client and the
// application state, restoring any persisted session.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	zap.L().Info("Opening token store", zap.String("backend", cfg.Session.TokenStore))
	tokens, err := NewTokenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(cfg.Api)
	if err != nil {
		tokens.Close()
		return nil, err
	}

	app, err := state.NewApp(ctx, state.AppConfig{
		Client:    client,
		Tokens:    tokens,
		Logger:    zap.L(),
		PageLimit: cfg.Wallet.PageLimit,
	})
	if err != nil {
		tokens.Close()
		return nil, err
	}

	session := app.Auth.Snapshot()
	zap.L().Info("Services initialized",
		zap.String("api", client.BaseURL()),
		zap.Bool("authenticated", session.Authenticated()),
		zap.String("token", MaskToken(session.Token)))

	return &Services{
		Tokens: tokens,
		Client: client,
		App:    app,
	}, nil
}

// RequireSession fails when no session was restored.
func (s *Services) RequireSession() error {
	if !s.App.Auth.Snapshot().Authenticated() {
		return fmt.Errorf("%w: run the login tool first", state.ErrNotAuthenticated)
	}
	return nil
}

func (s *Services) Close() {
	if s.App != nil {
		s.App.Close()
	}
	if s.Tokens != nil {
		s.Tokens.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
