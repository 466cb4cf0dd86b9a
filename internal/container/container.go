// Package container provides dependency injection for spendwise.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"

	"fjacquet/spendwise/internal/api"
	"fjacquet/spendwise/internal/config"
	"fjacquet/spendwise/internal/importer"
	"fjacquet/spendwise/internal/logging"
	"fjacquet/spendwise/internal/ratelimit"
	"fjacquet/spendwise/internal/service"
	"fjacquet/spendwise/internal/storage"
	"fjacquet/spendwise/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation; fields are private and only
// reachable through getters.
type Container struct {
	logger logging.Logger
	config *config.Config
	db     *storage.Store

	accounts     *service.AccountService
	categories   *service.CategoryService
	rules        *service.RuleService
	transactions *service.TransactionService
	search       *service.SearchService
	importer     *importer.Importer

	seedStore *store.SeedStore
	seeder    *store.Seeder
	limiter   *ratelimit.Store
}

// Option customises NewContainer.
type Option func(*options)

type options struct {
	logger logging.Logger
}

// WithLogger replaces the logger built from cfg.Log.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// NewContainer validates cfg, opens the database and wires every service.
// The caller must Close the container.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = config.NewLogger(cfg)
	}

	db, err := storage.Open(ctx, cfg.Database.Path, logger)
	if err != nil {
		return nil, err
	}

	c := &Container{
		logger:       logger,
		config:       cfg,
		db:           db,
		accounts:     service.NewAccountService(db, logger),
		categories:   service.NewCategoryService(db, logger),
		rules:        service.NewRuleService(db, logger),
		transactions: service.NewTransactionService(db, logger),
		search:       service.NewSearchService(db, logger),
		importer: importer.New(db, db, importer.Config{
			DefaultDirection:        cfg.ImportDirection(),
			TypeColumnAuthoritative: cfg.Import.TypeColumnAuthoritative,
			ApplyRules:              cfg.Import.ApplyRules,
			SkipDuplicates:          cfg.Import.SkipDuplicates,
			DuplicateSimilarity:     cfg.Import.DuplicateSimilarity,
			Delimiter:               cfg.ImportDelimiter(),
		}, logger),
		seedStore: store.NewSeedStore(cfg.Seed.File, logger),
	}
	c.seeder = store.NewSeeder(c.accounts, c.categories, c.rules, logger)

	if cfg.Server.RateLimit.Enabled {
		c.limiter = ratelimit.NewStore(cfg.Server.RateLimit.RequestsPerMinute, cfg.Server.RateLimit.Burst)
	}

	logger.Debug("Container initialized successfully",
		logging.F("database", cfg.Database.Path),
		logging.F("rate_limit", cfg.Server.RateLimit.Enabled))

	return c, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// UserID is the user CLI commands act as.
func (c *Container) UserID() string {
	return c.config.User.DefaultID
}

func (c *Container) GetAccounts() *service.AccountService {
	return c.accounts
}

func (c *Container) GetCategories() *service.CategoryService {
	return c.categories
}

func (c *Container) GetRules() *service.RuleService {
	return c.rules
}

func (c *Container) GetTransactions() *service.TransactionService {
	return c.transactions
}

func (c *Container) GetSearch() *service.SearchService {
	return c.search
}

func (c *Container) GetImporter() *importer.Importer {
	return c.importer
}

func (c *Container) GetSeedStore() *store.SeedStore {
	return c.seedStore
}

func (c *Container) GetSeeder() *store.Seeder {
	return c.seeder
}

// GetRateLimiter returns nil when rate limiting is disabled.
func (c *Container) GetRateLimiter() *ratelimit.Store {
	return c.limiter
}

// NewAPIServer builds the HTTP API over the container's services.
func (c *Container) NewAPIServer() *api.Server {
	return api.NewServer(api.Services{
		Accounts:     c.accounts,
		Categories:   c.categories,
		Rules:        c.rules,
		Transactions: c.transactions,
		Search:       c.search,
		Importer:     c.importer,
	}, api.Options{
		DefaultUserID:  c.config.User.DefaultID,
		AllowedOrigins: c.config.Server.AllowedOrigins,
		MaxBodyBytes:   c.config.Server.MaxBodyBytes,
		RateLimiter:    c.limiter,
	}, c.logger)
}

// Close releases the database.
func (c *Container) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	c.logger.Debug("Container closed")
	return nil
}
