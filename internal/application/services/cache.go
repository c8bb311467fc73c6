package services

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache is the response cache shared by the services. Implemented by the
// Redis cache and the in-process go-cache adapter.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// walletPrefix is the prefix of every cache key holding data of one wallet
func walletPrefix(address string) string {
	return fmt.Sprintf("wallet:%s:", strings.ToLower(address))
}

func balancesKey(address string, chainID int64) string {
	return fmt.Sprintf("%sbalances:%d", walletPrefix(address), chainID)
}

func transactionsKey(address string, chainID int64, pageSize int) string {
	return fmt.Sprintf("%stransactions:%d:%d", walletPrefix(address), chainID, pageSize)
}
