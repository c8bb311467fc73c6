package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-dashboard/internal/domain"
	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
	"github.com/bimakw/wallet-dashboard/internal/testutil"
)

func TestCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss", func(t *testing.T) {
		c := NewCache(time.Minute, time.Minute, zap.NewNop())

		var dest []entities.TokenBalance
		err := c.Get(ctx, "absent", &dest)

		if !errors.Is(err, domain.ErrCacheMiss) {
			t.Errorf("expected ErrCacheMiss, got %v", err)
		}
	})

	t.Run("round trip returns an independent copy", func(t *testing.T) {
		c := NewCache(time.Minute, time.Minute, zap.NewNop())
		balances := []entities.TokenBalance{testutil.CreateTestBalance()}

		if err := c.SetWithTTL(ctx, "balances:1", balances, time.Minute); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		balances[0].Symbol = "mutated"

		var got []entities.TokenBalance
		if err := c.Get(ctx, "balances:1", &got); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].Symbol != "USDT" {
			t.Errorf("unexpected cached value %+v", got)
		}
	})

	t.Run("expired entries miss", func(t *testing.T) {
		c := NewCache(time.Minute, time.Minute, zap.NewNop())
		_ = c.SetWithTTL(ctx, "short", 1, time.Millisecond)

		time.Sleep(5 * time.Millisecond)

		var got int
		if err := c.Get(ctx, "short", &got); !errors.Is(err, domain.ErrCacheMiss) {
			t.Errorf("expected ErrCacheMiss after expiry, got %v", err)
		}
	})

	t.Run("delete prefix", func(t *testing.T) {
		c := NewCache(time.Minute, time.Minute, zap.NewNop())
		_ = c.SetWithTTL(ctx, "balances:0xabc:1", 1, time.Minute)
		_ = c.SetWithTTL(ctx, "balances:0xabc:137", 2, time.Minute)
		_ = c.SetWithTTL(ctx, "balances:0xdef:1", 3, time.Minute)

		if err := c.DeletePrefix(ctx, "balances:0xabc:"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got int
		if err := c.Get(ctx, "balances:0xabc:1", &got); !errors.Is(err, domain.ErrCacheMiss) {
			t.Error("expected prefixed key removed")
		}
		if err := c.Get(ctx, "balances:0xdef:1", &got); err != nil || got != 3 {
			t.Errorf("expected other key kept, got %d (%v)", got, err)
		}
	})
}

func TestStateRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("absent namespace loads nil", func(t *testing.T) {
		repo := NewStateRepo()

		state, err := repo.Load(ctx, "portfolio-wallet-storage")

		if err != nil || state != nil {
			t.Errorf("expected nil state and error, got %+v, %v", state, err)
		}
	})

	t.Run("save then load", func(t *testing.T) {
		repo := NewStateRepo()
		state := entities.NewRegistryState()
		state.SelectedChainID = 137
		state.NFTs = append(state.NFTs, testutil.CreateTestNFT())

		if err := repo.Save(ctx, "ns", state); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		loaded, err := repo.Load(ctx, "ns")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loaded.SelectedChainID != 137 {
			t.Errorf("expected chain 137, got %d", loaded.SelectedChainID)
		}
		if len(loaded.NFTs) != 1 || loaded.NFTs[0].ID != state.NFTs[0].ID {
			t.Errorf("unexpected nfts %+v", loaded.NFTs)
		}
	})
}
