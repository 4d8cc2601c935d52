package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/otebot/otebot-api/internal/infra/config"
	"github.com/otebot/otebot-api/internal/infra/logging"
	http_ "github.com/otebot/otebot-api/internal/infra/transport/http"
	"github.com/otebot/otebot-api/internal/repo/admin"
	"github.com/otebot/otebot-api/internal/svc/authsvc"
	"github.com/otebot/otebot-api/internal/svc/chatsvc"
)

const (
	appName = "otebot"
	svcName = "api"
)

type Config struct {
	config.EnvConfig

	Log   logging.LoggerConfig `envPrefix:"LOG_"`
	HTTP  http_.HTTPTransportConfig
	Token authsvc.TokenConfig
	Admin admin.StaticRepositoryConfig
	Chat  chatsvc.ChatConfig

	// AdminStore selects the credential store: "static" (env-seeded, default)
	// or "sqlite".
	AdminStore string `env:"ADMIN_STORE" default:"static"`

	AdminDB admin.SQLiteRepositoryConfig
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg); err != nil {
		panic(err)
	}
}

func adminRepositoryFactory(ctx context.Context, cfg Config) admin.RepositoryFactory {
	if cfg.AdminStore != "sqlite" {
		return admin.StaticRepositoryFactory(cfg.Admin)
	}

	return func() (admin.Repository, error) {
		repo, err := admin.NewSQLiteRepository(cfg.AdminDB)
		if err != nil {
			return nil, fmt.Errorf("new sqlite repo: %w", err)
		}

		// Provision the env-configured administrator on first run.
		if cfg.Admin.AdminPasswordHash != "" {
			if err := repo.SeedAdmin(ctx, cfg.Admin.AdminEmail, []byte(cfg.Admin.AdminPasswordHash)); err != nil {
				repo.Close()

				return nil, fmt.Errorf("seed admin: %w", err)
			}
		}

		return repo, nil
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	defer func() {
		log := logging.GetLogger("cmd.otebot")

		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
			panic(err)
		}

		log.InfoContext(ctx, "shutdown")
	}()

	tokenSvc := authsvc.NewTokenService(cfg.Token)

	authSvc, err := authsvc.NewAuthService(adminRepositoryFactory(ctx, cfg), tokenSvc)
	if err != nil {
		return fmt.Errorf("new auth service: %w", err)
	}
	defer authSvc.Close()

	chatSvc := chatsvc.NewChatService(cfg.Chat, nil)

	mux := http.NewServeMux()
	mux.Handle("/auth/", http_.HTTPHandlerFunc(authsvc.NewHTTPTransport(authSvc)))
	mux.Handle("/", http_.HTTPHandlerFunc(chatsvc.NewHTTPTransport(chatSvc, tokenSvc)))

	if err := http_.ListenAndServe(ctx, mux, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
