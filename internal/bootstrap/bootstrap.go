// Package bootstrap wires configuration into the storage backends, the data
// gateway and the services shared by the API and refresher binaries.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-dashboard/internal/application/registry"
	"github.com/bimakw/wallet-dashboard/internal/application/services"
	"github.com/bimakw/wallet-dashboard/internal/config"
	"github.com/bimakw/wallet-dashboard/internal/domain/chains"
	"github.com/bimakw/wallet-dashboard/internal/domain/repositories"
	"github.com/bimakw/wallet-dashboard/internal/infrastructure/cache"
	"github.com/bimakw/wallet-dashboard/internal/infrastructure/covalent"
	"github.com/bimakw/wallet-dashboard/internal/infrastructure/database"
	"github.com/bimakw/wallet-dashboard/internal/infrastructure/ethereum"
	"github.com/bimakw/wallet-dashboard/internal/infrastructure/memory"
)

const memoryCacheCleanup = 5 * time.Minute

// HealthChecker is implemented by every external dependency
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// App holds the wired components. Health checkers are nil for in-process or
// disabled components.
type App struct {
	Store        *registry.Store
	Portfolio    *services.PortfolioService
	Transactions *services.TransactionService
	NFTs         *services.NFTService
	CustomTokens *services.CustomTokenService

	StoreHealth HealthChecker
	CacheHealth HealthChecker
	RPCHealth   HealthChecker

	closers []func()
}

// Build connects every configured backend and creates the services
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{}

	if cfg.Chains.OverridesFile != "" {
		n, err := chains.LoadOverrides(cfg.Chains.OverridesFile)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded chain overrides", zap.String("file", cfg.Chains.OverridesFile), zap.Int("chains", n))
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(cfg.Redis, cfg.API.BalancesTTL, logger)
		switch {
		case err == nil:
			redisCache = rc
			app.CacheHealth = rc
			app.onClose(func() { _ = rc.Close() })
		case cfg.Store.Backend == config.StoreBackendRedis:
			return nil, err
		default:
			logger.Warn("Failed to connect to Redis, using in-memory cache", zap.Error(err))
		}
	}

	stateRepo, err := app.openStateRepository(cfg, redisCache, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	var responseCache services.Cache
	if redisCache != nil {
		responseCache = redisCache
	} else {
		responseCache = memory.NewCache(cfg.API.BalancesTTL, memoryCacheCleanup, logger)
	}

	var (
		resolver        services.MetadataResolver
		resolverChainID int64
		enricher        services.TransferEnricher
	)
	if cfg.Ethereum.Enabled() {
		ethClient, err := ethereum.NewClient(cfg.Ethereum, logger)
		if err != nil {
			logger.Warn("Failed to connect to Ethereum node, metadata lookups disabled", zap.Error(err))
		} else {
			app.RPCHealth = ethClient
			app.onClose(ethClient.Close)

			metadata := ethereum.NewMetadataFetcher(ethClient, logger)
			resolver = metadata
			resolverChainID = ethClient.ChainID()
			enricher = ethereum.NewReceiptDecoder(ethClient, metadata, ethClient.ChainID(), logger)
		}
	}

	gateway := covalent.NewClient(cfg.Gateway, logger)
	if cfg.Gateway.APIKey == "" {
		logger.Warn("COVALENT_API_KEY is not set, wallet data requests will fail")
	}

	app.Store = registry.NewStore(ctx, stateRepo, logger, registry.WithNamespace(cfg.Store.Namespace))
	app.Portfolio = services.NewPortfolioService(gateway, app.Store, responseCache, cfg.API.BalancesTTL, logger)
	app.Transactions = services.NewTransactionService(gateway, app.Store, responseCache, cfg.API.TransactionsTTL, enricher, logger)
	app.NFTs = services.NewNFTService(gateway, app.Store, logger)
	app.CustomTokens = services.NewCustomTokenService(app.Store, resolver, resolverChainID, logger)

	return app, nil
}

func (a *App) openStateRepository(cfg *config.Config, redisCache *cache.RedisCache, logger *zap.Logger) (repositories.StateRepository, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		db, err := database.NewPostgresDB(cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		a.StoreHealth = db
		a.onClose(func() { _ = db.Close() })
		return database.NewStateRepo(db.DB()), nil

	case config.StoreBackendRedis:
		if redisCache == nil {
			return nil, fmt.Errorf("redis state backend requires a redis connection")
		}
		a.StoreHealth = redisCache
		return cache.NewRedisStateRepo(redisCache), nil

	default:
		logger.Info("Using in-memory state store, registry is lost on restart")
		return memory.NewStateRepo(), nil
	}
}

func (a *App) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close releases connections in reverse order of opening
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
