package campusmate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/campusmate/internal/config"
	"github.com/aretw0/campusmate/internal/logging"
	"github.com/aretw0/campusmate/pkg/adapters/file"
	httpAdapter "github.com/aretw0/campusmate/pkg/adapters/http"
	"github.com/aretw0/campusmate/pkg/adapters/mcp"
	"github.com/aretw0/campusmate/pkg/adapters/memory"
	"github.com/aretw0/campusmate/pkg/adapters/redis"
	"github.com/aretw0/campusmate/pkg/coordinator"
	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/frontdoor"
	"github.com/aretw0/campusmate/pkg/gatekeeper"
	"github.com/aretw0/campusmate/pkg/knowledge"
	"github.com/aretw0/campusmate/pkg/observability"
	"github.com/aretw0/campusmate/pkg/persistence/middleware"
	"github.com/aretw0/campusmate/pkg/planner"
	"github.com/aretw0/campusmate/pkg/ports"
	"github.com/aretw0/campusmate/pkg/session"
	"github.com/aretw0/campusmate/pkg/worker"
	backend "github.com/redis/go-redis/v9"
)

// App is a fully wired campusmate instance.
type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	Advisor     ports.Advisor
	Coordinator *coordinator.Coordinator
	FrontDoor   *frontdoor.FrontDoor
	Sessions    *session.Manager
	Knowledge   *knowledge.Store
	Catalogue   *domain.Catalogue
	Metrics     *observability.Metrics
	Streams     *httpAdapter.StreamManager

	cancel  context.CancelFunc
	closers []func() error
}

type options struct {
	logger  *slog.Logger
	advisor ports.Advisor
	redis   *backend.Client
	utility []worker.UtilityOption
}

// Option customizes New.
type Option func(*options)

// WithLogger overrides the logger built from the log section.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAdvisor bypasses advisor selection from the configuration.
func WithAdvisor(adv ports.Advisor) Option {
	return func(o *options) {
		o.advisor = adv
	}
}

// WithRedisClient reuses an existing client instead of dialing store.redis.addr.
// The caller keeps ownership of the client.
func WithRedisClient(client *backend.Client) Option {
	return func(o *options) {
		o.redis = client
	}
}

// WithUtilityOptions passes options to the utility worker, e.g. a fixed clock.
func WithUtilityOptions(opts ...worker.UtilityOption) Option {
	return func(o *options) {
		o.utility = append(o.utility, opts...)
	}
}

// New builds every component described by cfg and registers the actors with the coordinator.
// Background work (the static knowledge watcher) lives until Close.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = logging.NewWithFormat(cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))
	}

	bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
	app := &App{Config: cfg, Logger: logger, cancel: cancel}
	fail := func(err error) (*App, error) {
		_ = app.Close()
		return nil, err
	}

	adv := o.advisor
	if adv == nil {
		var err error
		if adv, err = NewAdvisor(cfg.Advisor, logger); err != nil {
			return fail(err)
		}
	}
	app.Advisor = adv

	client := o.redis
	if client == nil && cfg.UsesRedis() {
		client = backend.NewClient(&backend.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		app.closers = append(app.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return fail(fmt.Errorf("failed to reach redis at %s: %w", cfg.Store.Redis.Addr, err))
		}
	}

	sessions, err := newSessions(cfg, client, logger)
	if err != nil {
		return fail(err)
	}
	app.Sessions = sessions

	var history ports.HistoryStore
	switch cfg.History.Backend {
	case config.BackendRedis:
		history = redis.NewHistory(client, cfg.Store.Redis.Prefix, cfg.History.MaxTurns, cfg.History.TTL)
	default:
		history = memory.NewHistory(cfg.History.MaxTurns)
	}

	store, err := app.newKnowledge(ctx, bg, cfg.Knowledge)
	if err != nil {
		return fail(err)
	}
	app.Knowledge = store

	utility := worker.NewUtility(o.utility...)
	learned := worker.NewKnowledge(store)
	cat, err := worker.NewCatalogue(utility, learned)
	if err != nil {
		return fail(fmt.Errorf("failed to build catalogue: %w", err))
	}
	app.Catalogue = cat

	app.Metrics = observability.NewMetrics()
	app.Streams = httpAdapter.NewStreamManager(logger)
	hooks := observability.Combine(app.Metrics.Hooks(), app.Streams.Hooks(), observability.LogHooks(logger))

	coordOpts := []coordinator.Option{
		coordinator.WithLogger(logger),
		coordinator.WithHooks(hooks),
		coordinator.WithArchive(sessions),
		coordinator.WithTimeout(cfg.Coordinator.Timeout),
	}
	if cfg.Coordinator.Retention > 0 {
		coordOpts = append(coordOpts, coordinator.WithRetention(cfg.Coordinator.Retention))
	}
	if cfg.Coordinator.HandleTimeout > 0 {
		coordOpts = append(coordOpts, coordinator.WithHandleTimeout(cfg.Coordinator.HandleTimeout))
	}
	app.Coordinator = coordinator.New(coordOpts...)

	fdOpts := []frontdoor.Option{
		frontdoor.WithLogger(logger),
		frontdoor.WithTimeout(cfg.Coordinator.Timeout),
	}
	if cfg.Coordinator.MaxInputSize > 0 {
		fdOpts = append(fdOpts, frontdoor.WithMaxInputSize(cfg.Coordinator.MaxInputSize))
	}
	app.FrontDoor = frontdoor.New(app.Coordinator, history, sessions, fdOpts...)

	app.Coordinator.Register(
		app.FrontDoor,
		gatekeeper.New(adv, gatekeeper.WithLogger(logger)),
		planner.New(adv, cat, planner.WithLogger(logger)),
		worker.NewActor(utility, worker.WithActorLogger(logger)),
		worker.NewActor(learned, worker.WithActorLogger(logger)),
	)

	logger.Debug("campusmate ready",
		"advisor", cfg.Advisor.Provider,
		"store", cfg.Store.Backend,
		"history", cfg.History.Backend,
		"facts", cfg.Knowledge.Facts)
	return app, nil
}

// newSessions builds the archive store with its middleware chain and the turn lock.
func newSessions(cfg *config.Config, client *backend.Client, logger *slog.Logger) (*session.Manager, error) {
	var store ports.SessionStore
	var locker ports.DistributedLocker
	switch cfg.Store.Backend {
	case config.BackendRedis:
		opts := []redis.Option{redis.WithPrefix(cfg.Store.Redis.Prefix)}
		if cfg.Store.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Store.Redis.TTL))
		}
		store = redis.NewFromClient(client, opts...)
		locker = redis.NewLocker(client, cfg.Store.Redis.Prefix)
	case config.BackendFile:
		store = file.New(cfg.Store.FileDir)
	default:
		store = memory.NewStore()
	}

	var mws []middleware.Middleware
	if len(cfg.Store.PIIPatterns) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(cfg.Store.PIIPatterns))
	}
	if cfg.Store.EncryptionKey != "" {
		key, err := middleware.ParseKey(cfg.Store.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("store.encryption_key: %w", err)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	store = middleware.Chain(store, mws...)

	opts := []session.Option{session.WithLogger(logger), session.WithLockTTL(cfg.LockTTL())}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	return session.NewManager(store, opts...), nil
}

func (a *App) newKnowledge(ctx, bg context.Context, cfg config.KnowledgeConfig) (*knowledge.Store, error) {
	opts := []knowledge.Option{knowledge.WithLogger(a.Logger)}
	if cfg.StaticFile != "" {
		static, err := knowledge.LoadStatic(cfg.StaticFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, knowledge.WithStatic(static))
	}
	if cfg.Facts == config.BackendSQLite {
		facts, err := knowledge.OpenSQLiteFacts(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, facts.Close)
		opts = append(opts, knowledge.WithFacts(facts))
	}

	store, err := knowledge.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	if cfg.Watch && cfg.StaticFile != "" {
		if err := store.Watch(bg, cfg.StaticFile); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// Ask runs one user turn through the Front Door.
func (a *App) Ask(ctx context.Context, req frontdoor.Request) (frontdoor.Reply, error) {
	return a.FrontDoor.Ask(ctx, req)
}

// Session returns a live, retained or archived session.
func (a *App) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	return a.Coordinator.Session(ctx, sessionID)
}

// Promote copies knowledge taught by enough distinct users into the shared categories.
func (a *App) Promote(ctx context.Context) (knowledge.PromotionReport, error) {
	return a.Knowledge.Promote(ctx, a.Config.Knowledge.PromotionThreshold)
}

// HTTPHandler returns the chat, WeChat, session and metrics routes.
func (a *App) HTTPHandler() http.Handler {
	return httpAdapter.NewHandler(httpAdapter.Config{
		Asker:       a,
		Sessions:    a,
		Catalogue:   a.Catalogue,
		Metrics:     a.Metrics.Handler(),
		Streams:     a.Streams,
		WeChatToken: a.Config.Server.WeChatToken,
		Version:     Version,
		Logger:      a.Logger,
	})
}

// MCPServer returns an MCP server exposing ask and list_capabilities.
func (a *App) MCPServer() *mcp.Server {
	return mcp.NewServer(a, a.Catalogue, Version, mcp.WithLogger(a.Logger))
}

// Close stops background work and releases stores in reverse order of creation.
func (a *App) Close() error {
	a.cancel()
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
