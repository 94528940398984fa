// Package server assembles the identity backend: storage, caches, provider
// verifiers and notification channels behind the gRPC and HTTP endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/cache"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/notify"
	"github.com/dmitrijs2005/gophauth/internal/server/providers"
	"github.com/dmitrijs2005/gophauth/internal/server/rate"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

const (
	cachePrefix = "gophauth"
	quotaWindow = time.Hour
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	redis    *redis.Client
	metrics  *metrics.Metrics
	identity *services.IdentityService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(c.LogFormat, c.LogLevel)
	app := &App{config: c, logger: logger, metrics: metrics.New()}

	repos, err := app.initRepositories(ctx)
	if err != nil {
		return nil, err
	}
	app.repos = repos

	store, limiter, err := app.initCache(ctx)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	registry, err := buildProviders(ctx, c, logger)
	if err != nil {
		app.close()
		return nil, err
	}

	sms := notify.NewLogSender(logger)
	var mailer notify.Mailer = sms
	if c.Email.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(c.Email.SMTPHost, c.Email.SMTPPort, c.Email.SMTPUser, c.Email.SMTPPassword, c.Email.From, logger)
	}

	app.identity = services.NewIdentityService(repos, c, services.Deps{
		Providers: registry,
		Cache:     store,
		Limiter:   limiter,
		SMS:       sms,
		Mailer:    mailer,
		Metrics:   app.metrics,
		Logger:    logger,
	})

	return app, nil
}

func (app *App) initRepositories(ctx context.Context) (repomanager.RepositoryManager, error) {
	if app.config.DatabaseDSN == "" {
		app.logger.Warn(ctx, "No database DSN, accounts are kept in memory")
		return repomanager.NewInMemoryRepositoryManager(), nil
	}

	pg, err := repomanager.OpenPostgres(app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := pg.RunMigrations(ctx); err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}
	return pg, nil
}

func (app *App) initCache(ctx context.Context) (cache.Cache, rate.Limiter, error) {
	quota := app.config.Phone.QuotaPerHour
	if app.config.RedisAddr == "" {
		return cache.NewMemory(app.config.Phone.CodeTTL), rate.NewMemoryLimiter(quota, quotaWindow), nil
	}

	client := redis.NewClient(&redis.Options{Addr: app.config.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis init error: %w", err)
	}
	app.redis = client
	return cache.NewRedis(client, cachePrefix), rate.NewRedisLimiter(client, cachePrefix+":rl", quota, quotaWindow), nil
}

// buildProviders registers a verifier for every federated provider that has
// credentials configured.
func buildProviders(ctx context.Context, c *config.Config, l logging.Logger) (providers.Registry, error) {
	r := providers.Registry{}

	if c.Google.ClientID != "" {
		r[models.ProviderGoogle] = providers.NewGoogle(c.Google.ClientID, c.Google.JWKSURL)
	}
	if c.Facebook.AppSecret != "" {
		r[models.ProviderFacebook] = providers.NewFacebook(c.Facebook.AppSecret, c.Facebook.GraphURL)
	}
	if c.Twitter.ConsumerKey != "" && c.Twitter.ConsumerSecret != "" {
		r[models.ProviderTwitter] = providers.NewTwitter(c.Twitter.ConsumerKey, c.Twitter.ConsumerSecret, c.Twitter.APIURL)
	}
	if c.Firebase.ProjectID != "" {
		fb, err := providers.NewFirebase(ctx, c.Firebase.ProjectID, c.Firebase.CredentialsFile)
		if err != nil {
			return nil, err
		}
		r[models.ProviderFirebase] = fb
	}

	for _, p := range []string{models.ProviderGoogle, models.ProviderFacebook, models.ProviderTwitter, models.ProviderFirebase} {
		if _, ok := r[p]; !ok {
			l.Info(ctx, "Provider not configured", "provider", p)
		}
	}
	return r, nil
}

// Run serves gRPC and HTTP until ctx is cancelled or either server fails.
func (app *App) Run(ctx context.Context) error {

	app.logger.Info(ctx, "Starting app...")
	defer app.close()

	grpcServer, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.identity, app.metrics)
	if err != nil {
		return err
	}
	httpServer := httpapi.NewServer(
		app.config.EndpointAddrHTTP,
		httpapi.NewRouter(app.logger, app.identity, app.repos, app.metrics.Handler()),
		app.logger,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return grpcServer.Run(ctx) })
	g.Go(func() error { return httpServer.Run(ctx) })

	err = g.Wait()
	if err != nil {
		app.logger.Error(ctx, "Server stopped with error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}

func (app *App) close() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if app.repos != nil {
		_ = app.repos.Close()
	}
}
