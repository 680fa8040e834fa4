package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/article-platform/internal/api/http"
	"github.com/spec-kit/article-platform/internal/api/http/handlers"
	"github.com/spec-kit/article-platform/internal/auth"
	"github.com/spec-kit/article-platform/internal/config"
	"github.com/spec-kit/article-platform/internal/events"
	"github.com/spec-kit/article-platform/internal/observability"
	"github.com/spec-kit/article-platform/internal/persistence"
	"github.com/spec-kit/article-platform/internal/repository"
	"github.com/spec-kit/article-platform/internal/service"
	"github.com/spec-kit/article-platform/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	// Keys are loaded once; without them the process cannot serve
	// authenticated requests, so any failure aborts startup.
	keys, err := auth.LoadKeyStore(cfg.Auth)
	if err != nil {
		logger.Fatal("failed to load signing keys", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	articleRepo := repository.NewArticleRepository(pool)
	tagRepo := repository.NewTagRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	voteRepo := repository.NewVoteRepository(pool)
	ledger := repository.NewCachedRevokedTokenRepository(
		repository.NewRevokedTokenRepository(pool), redis.Client, logger)

	dispatcher := events.NewInMemoryDispatcher()
	auditService := service.NewAuditService(dispatcher, logger)
	auditService.RegisterHandlers()

	authService := service.NewAuthService(cfg.Auth, keys, service.AuthDependencies{
		UserRepo:   userRepo,
		Ledger:     ledger,
		Dispatcher: dispatcher,
	})
	userService := service.NewUserService(userRepo, cfg.Auth.BcryptCost)
	articleService := service.NewArticleService(articleRepo, dispatcher)
	tagService := service.NewTagService(tagRepo)
	commentService := service.NewCommentService(commentRepo, articleRepo, dispatcher)
	voteService := service.NewVoteService(voteRepo, articleRepo, dispatcher)

	authMiddleware := auth.NewAuthMiddleware(authService.AccessTokens(), ledger)

	worker.StartLedgerPruner(ctx, ledger, cfg.Auth.LedgerPruneInterval(), logger)

	app := fiber.New()
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService, userService),
		Articles:       handlers.NewArticlesHandler(articleService),
		Tags:           handlers.NewTagsHandler(tagService),
		Comments:       handlers.NewCommentsHandler(commentService),
		Votes:          handlers.NewVotesHandler(voteService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
