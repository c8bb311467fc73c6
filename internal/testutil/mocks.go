package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bimakw/wallet-dashboard/internal/domain"
	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
	"github.com/bimakw/wallet-dashboard/internal/infrastructure/ethereum"
)

type MockCall struct {
	Method string
	Args   []interface{}
}

// MockDataGateway is a mock implementation of DataGateway
type MockDataGateway struct {
	mu           sync.RWMutex
	balances     map[string][]entities.TokenBalance
	transactions map[string][]entities.Transaction
	nfts         map[string][]entities.NFTEntry

	// Function hooks for custom behavior
	GetBalancesFunc     func(ctx context.Context, address string, chainID int64) ([]entities.TokenBalance, error)
	GetTransactionsFunc func(ctx context.Context, address string, chainID int64, pageSize int) ([]entities.Transaction, error)
	GetNFTsFunc         func(ctx context.Context, address string, chainID int64) ([]entities.NFTEntry, error)

	// Call tracking
	Calls []MockCall
}

func NewMockDataGateway() *MockDataGateway {
	return &MockDataGateway{
		balances:     make(map[string][]entities.TokenBalance),
		transactions: make(map[string][]entities.Transaction),
		nfts:         make(map[string][]entities.NFTEntry),
		Calls:        make([]MockCall, 0),
	}
}

func gatewayKey(address string, chainID int64) string {
	b, _ := json.Marshal([]interface{}{address, chainID})
	return string(b)
}

func (m *MockDataGateway) SetBalances(address string, chainID int64, balances []entities.TokenBalance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[gatewayKey(address, chainID)] = balances
}

func (m *MockDataGateway) SetTransactions(address string, chainID int64, txs []entities.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[gatewayKey(address, chainID)] = txs
}

func (m *MockDataGateway) SetNFTs(address string, chainID int64, nfts []entities.NFTEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nfts[gatewayKey(address, chainID)] = nfts
}

func (m *MockDataGateway) GetBalances(ctx context.Context, address string, chainID int64) ([]entities.TokenBalance, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetBalances", Args: []interface{}{address, chainID}})
	m.mu.Unlock()

	if m.GetBalancesFunc != nil {
		return m.GetBalancesFunc(ctx, address, chainID)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]entities.TokenBalance{}, m.balances[gatewayKey(address, chainID)]...), nil
}

func (m *MockDataGateway) GetTransactions(ctx context.Context, address string, chainID int64, pageSize int) ([]entities.Transaction, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetTransactions", Args: []interface{}{address, chainID, pageSize}})
	m.mu.Unlock()

	if m.GetTransactionsFunc != nil {
		return m.GetTransactionsFunc(ctx, address, chainID, pageSize)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	txs := m.transactions[gatewayKey(address, chainID)]
	if pageSize > 0 && len(txs) > pageSize {
		txs = txs[:pageSize]
	}
	return append([]entities.Transaction{}, txs...), nil
}

func (m *MockDataGateway) GetNFTs(ctx context.Context, address string, chainID int64) ([]entities.NFTEntry, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetNFTs", Args: []interface{}{address, chainID}})
	m.mu.Unlock()

	if m.GetNFTsFunc != nil {
		return m.GetNFTsFunc(ctx, address, chainID)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]entities.NFTEntry{}, m.nfts[gatewayKey(address, chainID)]...), nil
}

// CallCount returns how many times method was called
func (m *MockDataGateway) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// MockStateRepository is a mock implementation of StateRepository
type MockStateRepository struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	saves int

	LoadFunc func(ctx context.Context, namespace string) (*entities.RegistryState, error)
	SaveFunc func(ctx context.Context, namespace string, state *entities.RegistryState) error
}

func NewMockStateRepository() *MockStateRepository {
	return &MockStateRepository{
		blobs: make(map[string][]byte),
	}
}

// Seed stores a state as if it had been saved earlier
func (m *MockStateRepository) Seed(namespace string, state *entities.RegistryState) {
	data, _ := json.Marshal(state)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[namespace] = data
}

func (m *MockStateRepository) Load(ctx context.Context, namespace string) (*entities.RegistryState, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, namespace)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[namespace]
	if !ok {
		return nil, nil
	}
	var state entities.RegistryState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (m *MockStateRepository) Save(ctx context.Context, namespace string, state *entities.RegistryState) error {
	m.mu.Lock()
	m.saves++
	m.mu.Unlock()

	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, namespace, state)
	}

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[namespace] = data
	return nil
}

// SaveCount returns the number of Save calls
func (m *MockStateRepository) SaveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// MockCache is an in-memory cache that round-trips values through JSON like
// the real backends do
type MockCache struct {
	mu    sync.RWMutex
	items map[string][]byte
	TTLs  map[string]time.Duration

	GetFunc func(ctx context.Context, key string, dest interface{}) error
	SetFunc func(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

func NewMockCache() *MockCache {
	return &MockCache{
		items: make(map[string][]byte),
		TTLs:  make(map[string]time.Duration),
	}
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) error {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key, dest)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.items[key]
	if !ok {
		return domain.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *MockCache) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = data
	m.TTLs[key] = ttl
	return nil
}

func (m *MockCache) DeletePrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
			delete(m.TTLs, key)
		}
	}
	return nil
}

// Has reports whether key is cached
func (m *MockCache) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[key]
	return ok
}

// MockMetadataResolver is a mock ERC-20 metadata source
type MockMetadataResolver struct {
	mu       sync.Mutex
	Metadata map[string]*ethereum.TokenMetadata
	Calls    []MockCall

	FetchMetadataFunc func(ctx context.Context, tokenAddress string) (*ethereum.TokenMetadata, error)
}

func NewMockMetadataResolver() *MockMetadataResolver {
	return &MockMetadataResolver{
		Metadata: make(map[string]*ethereum.TokenMetadata),
	}
}

func (m *MockMetadataResolver) FetchMetadata(ctx context.Context, tokenAddress string) (*ethereum.TokenMetadata, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "FetchMetadata", Args: []interface{}{tokenAddress}})
	m.mu.Unlock()

	if m.FetchMetadataFunc != nil {
		return m.FetchMetadataFunc(ctx, tokenAddress)
	}

	metadata, ok := m.Metadata[strings.ToLower(tokenAddress)]
	if !ok {
		return nil, errors.New("no metadata")
	}
	return metadata, nil
}

// MockTransferEnricher is a mock receipt-based transfer source
type MockTransferEnricher struct {
	mu        sync.Mutex
	Chain     int64
	Transfers map[string][]entities.TokenTransfer
	Calls     []MockCall

	TransfersForTxFunc func(ctx context.Context, txHash string) ([]entities.TokenTransfer, error)
}

func NewMockTransferEnricher(chainID int64) *MockTransferEnricher {
	return &MockTransferEnricher{
		Chain:     chainID,
		Transfers: make(map[string][]entities.TokenTransfer),
	}
}

func (m *MockTransferEnricher) ChainID() int64 {
	return m.Chain
}

func (m *MockTransferEnricher) TransfersForTx(ctx context.Context, txHash string) ([]entities.TokenTransfer, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "TransfersForTx", Args: []interface{}{txHash}})
	transfers, ok := m.Transfers[txHash]
	m.mu.Unlock()

	if m.TransfersForTxFunc != nil {
		return m.TransfersForTxFunc(ctx, txHash)
	}
	if !ok {
		return nil, errors.New("receipt not found")
	}
	return transfers, nil
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mu    sync.Mutex
	Error error
	Calls []MockCall
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	m := &MockHealthChecker{}
	if !healthy {
		m.Error = errors.New("health check failed")
	}
	return m
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: "HealthCheck"})
	return m.Error
}
