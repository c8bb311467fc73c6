package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/wallet-dashboard/internal/config"
)

// RefreshService keeps the caches of configured wallets warm
type RefreshService struct {
	portfolio    *PortfolioService
	transactions *TransactionService
	nfts         *NFTService
	config       config.RefresherConfig
	logger       *zap.Logger
	metrics      *RefreshMetrics
	stopCh       chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// RefreshMetrics tracks refresher progress
type RefreshMetrics struct {
	mu               sync.RWMutex
	Cycles           int64
	WalletsRefreshed int64
	ErrorCount       int64
	LastRefreshTime  time.Time
	RefreshLatencyMs int64
}

// RefreshMetricsSnapshot is a copy of RefreshMetrics without the lock
type RefreshMetricsSnapshot struct {
	Cycles           int64     `json:"cycles"`
	WalletsRefreshed int64     `json:"wallets_refreshed"`
	ErrorCount       int64     `json:"error_count"`
	LastRefreshTime  time.Time `json:"last_refresh_time"`
	RefreshLatencyMs int64     `json:"refresh_latency_ms"`
}

// NewRefreshService creates a new refresh service. nfts may be nil.
func NewRefreshService(
	portfolio *PortfolioService,
	transactions *TransactionService,
	nfts *NFTService,
	cfg config.RefresherConfig,
	logger *zap.Logger,
) *RefreshService {
	return &RefreshService{
		portfolio:    portfolio,
		transactions: transactions,
		nfts:         nfts,
		config:       cfg,
		logger:       logger,
		metrics:      &RefreshMetrics{},
		stopCh:       make(chan struct{}),
	}
}

type refreshJob struct {
	address string
	chainID int64
}

// Start validates the configured wallets and begins the refresh loop
func (s *RefreshService) Start(ctx context.Context) error {
	jobs, err := s.jobs()
	if err != nil {
		return err
	}

	s.logger.Info("Starting refresh service",
		zap.Strings("addresses", s.config.Addresses),
		zap.Int64s("chain_ids", s.config.ChainIDs),
		zap.Duration("interval", s.config.Interval),
	)

	s.wg.Add(1)
	go s.runRefreshLoop(ctx, jobs)

	return nil
}

// Stop gracefully stops the refresher
func (s *RefreshService) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping refresh service")
		close(s.stopCh)
	})
	s.wg.Wait()
}

// GetMetrics returns current refresher metrics
func (s *RefreshService) GetMetrics() RefreshMetricsSnapshot {
	s.metrics.mu.RLock()
	defer s.metrics.mu.RUnlock()
	return RefreshMetricsSnapshot{
		Cycles:           s.metrics.Cycles,
		WalletsRefreshed: s.metrics.WalletsRefreshed,
		ErrorCount:       s.metrics.ErrorCount,
		LastRefreshTime:  s.metrics.LastRefreshTime,
		RefreshLatencyMs: s.metrics.RefreshLatencyMs,
	}
}

func (s *RefreshService) jobs() ([]refreshJob, error) {
	if len(s.config.Addresses) == 0 {
		return nil, fmt.Errorf("no wallet addresses configured")
	}
	if len(s.config.ChainIDs) == 0 {
		return nil, fmt.Errorf("no chain ids configured")
	}
	if s.config.Interval <= 0 || s.config.WorkerCount < 1 {
		return nil, fmt.Errorf("invalid refresher interval %s or worker count %d", s.config.Interval, s.config.WorkerCount)
	}

	jobs := make([]refreshJob, 0, len(s.config.Addresses)*len(s.config.ChainIDs))
	for _, addr := range s.config.Addresses {
		addr = strings.TrimSpace(addr)
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("invalid wallet address %q", addr)
		}
		for _, chainID := range s.config.ChainIDs {
			if chainID <= 0 {
				return nil, fmt.Errorf("invalid chain id %d", chainID)
			}
			jobs = append(jobs, refreshJob{address: strings.ToLower(addr), chainID: chainID})
		}
	}
	return jobs, nil
}

// runRefreshLoop refreshes every wallet on each tick
func (s *RefreshService) runRefreshLoop(ctx context.Context, jobs []refreshJob) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Run immediately on start
	s.refreshAll(ctx, jobs)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.refreshAll(ctx, jobs)
		}
	}
}

// refreshAll runs one cycle. A failing wallet does not stop the others.
func (s *RefreshService) refreshAll(ctx context.Context, jobs []refreshJob) {
	startTime := time.Now()

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.WorkerCount)

	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := s.refreshWallet(gCtx, job); err != nil {
				s.logger.Error("Failed to refresh wallet",
					zap.String("address", job.address),
					zap.Int64("chain_id", job.chainID),
					zap.Error(err),
				)
				s.incrementErrorCount()
				refreshErrors.Inc()
				return nil
			}
			s.incrementRefreshed()
			refreshedWallets.Inc()
			return nil
		})
	}

	_ = g.Wait()

	elapsed := time.Since(startTime)
	refreshCycles.Inc()
	refreshDuration.Observe(elapsed.Seconds())
	refreshLastRun.SetToCurrentTime()

	s.metrics.mu.Lock()
	s.metrics.Cycles++
	s.metrics.RefreshLatencyMs = elapsed.Milliseconds()
	s.metrics.LastRefreshTime = time.Now()
	s.metrics.mu.Unlock()

	s.logger.Debug("Refresh cycle completed",
		zap.Int("jobs", len(jobs)),
		zap.Duration("elapsed", elapsed),
	)
}

func (s *RefreshService) refreshWallet(ctx context.Context, job refreshJob) error {
	if err := s.portfolio.Warm(ctx, job.address, job.chainID); err != nil {
		return err
	}
	if err := s.transactions.Warm(ctx, job.address, job.chainID, s.config.PageSize); err != nil {
		return err
	}
	if s.config.RefreshNFTs && s.nfts != nil {
		if _, err := s.nfts.Refresh(ctx, job.address, job.chainID); err != nil {
			return err
		}
	}
	return nil
}

func (s *RefreshService) incrementRefreshed() {
	s.metrics.mu.Lock()
	defer s.metrics.mu.Unlock()
	s.metrics.WalletsRefreshed++
}

func (s *RefreshService) incrementErrorCount() {
	s.metrics.mu.Lock()
	defer s.metrics.mu.Unlock()
	s.metrics.ErrorCount++
}
