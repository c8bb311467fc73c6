// Package registry owns the user's persisted preferences: watchlist, custom
// tokens, the NFT cache and the selected chain.
package registry

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
	"github.com/bimakw/wallet-dashboard/internal/domain/repositories"
)

// DefaultNamespace is the storage key the state blob is saved under
const DefaultNamespace = "portfolio-wallet-storage"

// Store is the single owner of the registry collections.
//
// Every collection is keyed by its id field and never holds two entries with
// the same id. Upserts remove the previous entry and append the new one, so
// an updated entry moves to the end. Mutations swap in a fresh collection
// under the lock, readers get copies, and the whole state is saved after each
// change. A failed save is logged and the in-memory state stays current.
type Store struct {
	mu        sync.RWMutex
	state     entities.RegistryState
	repo      repositories.StateRepository
	namespace string
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithNamespace overrides DefaultNamespace
func WithNamespace(namespace string) Option {
	return func(s *Store) {
		if namespace != "" {
			s.namespace = namespace
		}
	}
}

// WithClock replaces time.Now, used for added_at timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a store and loads the persisted state. A load failure
// starts the store empty instead of failing.
func NewStore(ctx context.Context, repo repositories.StateRepository, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		state:     *entities.NewRegistryState(),
		repo:      repo,
		namespace: DefaultNamespace,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if repo == nil {
		return s
	}

	loaded, err := repo.Load(ctx, s.namespace)
	if err != nil {
		s.logger.Warn("Failed to load registry state, starting empty",
			zap.String("namespace", s.namespace),
			zap.Error(err),
		)
		return s
	}
	if loaded != nil {
		s.state = sanitize(*loaded)
		s.logger.Info("Loaded registry state",
			zap.String("namespace", s.namespace),
			zap.Int("watchlist", len(s.state.Watchlist)),
			zap.Int("custom_tokens", len(s.state.CustomTokens)),
			zap.Int("nfts", len(s.state.NFTs)),
			zap.Int64("selected_chain_id", s.state.SelectedChainID),
		)
	}

	return s
}

// Snapshot returns a copy of the full state
func (s *Store) Snapshot() entities.RegistryState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.state)
}

// UpsertWatchlist adds a token to the watchlist, replacing an entry with the same id
func (s *Store) UpsertWatchlist(ctx context.Context, in entities.WatchlistInput) entities.WatchlistEntry {
	entry := entities.WatchlistEntry{
		ID:              entities.WatchlistKey(in.ContractAddress, in.ChainID),
		ContractAddress: strings.TrimSpace(in.ContractAddress),
		Name:            in.Name,
		Symbol:          in.Symbol,
		ChainID:         in.ChainID,
		LogoURL:         in.LogoURL,
		AddedAt:         s.now().UTC(),
	}

	s.mutate(ctx, func(st *entities.RegistryState) {
		st.Watchlist = append(without(st.Watchlist, entry.ID, watchlistID), entry)
	})
	return entry
}

// RemoveFromWatchlist removes an entry; unknown ids are ignored
func (s *Store) RemoveFromWatchlist(ctx context.Context, id string) {
	key := entities.NormalizeKey(id)
	s.mutate(ctx, func(st *entities.RegistryState) {
		st.Watchlist = without(st.Watchlist, key, watchlistID)
	})
}

// IsInWatchlist reports whether the token is on the watchlist
func (s *Store) IsInWatchlist(contractAddress string, chainID int64) bool {
	key := entities.WatchlistKey(contractAddress, chainID)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.state.Watchlist {
		if e.ID == key {
			return true
		}
	}
	return false
}

// Watchlist returns all watchlist entries in display order
func (s *Store) Watchlist() []entities.WatchlistEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.WatchlistEntry{}, s.state.Watchlist...)
}

// WatchlistForChain returns the watchlist entries of one chain
func (s *Store) WatchlistForChain(chainID int64) []entities.WatchlistEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterChain(s.state.Watchlist, chainID, func(e entities.WatchlistEntry) int64 { return e.ChainID })
}

// UpsertCustomToken adds a custom token definition, replacing one with the same id
func (s *Store) UpsertCustomToken(ctx context.Context, in entities.CustomTokenInput) entities.CustomToken {
	var decimals uint8 = 18
	if in.Decimals != nil {
		decimals = *in.Decimals
	}

	token := entities.CustomToken{
		ID:              entities.CustomTokenKey(in.ContractAddress, in.ChainID),
		ContractAddress: strings.TrimSpace(in.ContractAddress),
		Name:            in.Name,
		Symbol:          in.Symbol,
		Decimals:        decimals,
		ChainID:         in.ChainID,
		LogoURL:         in.LogoURL,
		AddedAt:         s.now().UTC(),
	}

	s.mutate(ctx, func(st *entities.RegistryState) {
		st.CustomTokens = append(without(st.CustomTokens, token.ID, customTokenID), token)
	})
	return token
}

// RemoveCustomToken removes a custom token; unknown ids are ignored
func (s *Store) RemoveCustomToken(ctx context.Context, id string) {
	key := entities.NormalizeKey(id)
	s.mutate(ctx, func(st *entities.RegistryState) {
		st.CustomTokens = without(st.CustomTokens, key, customTokenID)
	})
}

// CustomTokens returns every custom token
func (s *Store) CustomTokens() []entities.CustomToken {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.CustomToken{}, s.state.CustomTokens...)
}

// ListCustomTokensForChain returns the custom tokens of one chain, in insertion order
func (s *Store) ListCustomTokensForChain(chainID int64) []entities.CustomToken {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterChain(s.state.CustomTokens, chainID, func(t entities.CustomToken) int64 { return t.ChainID })
}

// ReplaceNFTs swaps the whole NFT cache for nfts. Ids are recomputed and
// duplicates collapse to the last occurrence.
func (s *Store) ReplaceNFTs(ctx context.Context, nfts []entities.NFTEntry) {
	next := make([]entities.NFTEntry, 0, len(nfts))
	for _, n := range nfts {
		n = withNFTID(n)
		next = append(without(next, n.ID, nftID), n)
	}

	s.mutate(ctx, func(st *entities.RegistryState) {
		st.NFTs = next
	})
}

// ReplaceNFTsForChain replaces the cached NFTs of one chain and keeps the
// entries of every other chain
func (s *Store) ReplaceNFTsForChain(ctx context.Context, chainID int64, nfts []entities.NFTEntry) {
	s.mutate(ctx, func(st *entities.RegistryState) {
		next := make([]entities.NFTEntry, 0, len(st.NFTs)+len(nfts))
		for _, n := range st.NFTs {
			if n.ChainID != chainID {
				next = append(next, n)
			}
		}
		for _, n := range nfts {
			n.ChainID = chainID
			n = withNFTID(n)
			next = append(without(next, n.ID, nftID), n)
		}
		st.NFTs = next
	})
}

// UpsertNFT adds or replaces one cached NFT
func (s *Store) UpsertNFT(ctx context.Context, nft entities.NFTEntry) entities.NFTEntry {
	nft = withNFTID(nft)
	s.mutate(ctx, func(st *entities.RegistryState) {
		st.NFTs = append(without(st.NFTs, nft.ID, nftID), nft)
	})
	return nft
}

// RemoveNFT removes a cached NFT; unknown ids are ignored
func (s *Store) RemoveNFT(ctx context.Context, id string) {
	key := entities.NormalizeKey(id)
	s.mutate(ctx, func(st *entities.RegistryState) {
		st.NFTs = without(st.NFTs, key, nftID)
	})
}

// NFTs returns the whole NFT cache
func (s *Store) NFTs() []entities.NFTEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.NFTEntry{}, s.state.NFTs...)
}

// NFTsForChain returns the cached NFTs of one chain
func (s *Store) NFTsForChain(chainID int64) []entities.NFTEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterChain(s.state.NFTs, chainID, func(n entities.NFTEntry) int64 { return n.ChainID })
}

// SetSelectedChainID overwrites the selected chain. The id is not validated.
func (s *Store) SetSelectedChainID(ctx context.Context, chainID int64) {
	s.mutate(ctx, func(st *entities.RegistryState) {
		st.SelectedChainID = chainID
	})
}

// Selection returns the singleton UI state
func (s *Store) Selection() entities.AppSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entities.AppSelection{SelectedChainID: s.state.SelectedChainID}
}

// mutate applies fn to a copy of the state, publishes it and persists it.
// The save happens under the write lock so saves land in mutation order.
func (s *Store) mutate(ctx context.Context, fn func(*entities.RegistryState)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := copyState(s.state)
	fn(&next)
	s.state = next

	if s.repo == nil {
		return
	}
	if err := s.repo.Save(ctx, s.namespace, &next); err != nil {
		s.logger.Warn("Failed to persist registry state",
			zap.String("namespace", s.namespace),
			zap.Error(err),
		)
	}
}

func watchlistID(e entities.WatchlistEntry) entities.RegistryKey { return e.ID }
func customTokenID(t entities.CustomToken) entities.RegistryKey  { return t.ID }
func nftID(n entities.NFTEntry) entities.RegistryKey             { return n.ID }

func withNFTID(n entities.NFTEntry) entities.NFTEntry {
	n.ID = entities.NFTKey(n.ContractAddress, n.TokenID, n.ChainID)
	n.ContractAddress = strings.TrimSpace(n.ContractAddress)
	if n.Attributes == nil {
		n.Attributes = []entities.NFTAttribute{}
	}
	return n
}

// without returns a new slice holding every item whose id is not key
func without[T any](items []T, key entities.RegistryKey, id func(T) entities.RegistryKey) []T {
	result := make([]T, 0, len(items)+1)
	for _, item := range items {
		if id(item) != key {
			result = append(result, item)
		}
	}
	return result
}

func filterChain[T any](items []T, chainID int64, chain func(T) int64) []T {
	result := make([]T, 0, len(items))
	for _, item := range items {
		if chain(item) == chainID {
			result = append(result, item)
		}
	}
	return result
}

func copyState(st entities.RegistryState) entities.RegistryState {
	return entities.RegistryState{
		Watchlist:       append([]entities.WatchlistEntry{}, st.Watchlist...),
		CustomTokens:    append([]entities.CustomToken{}, st.CustomTokens...),
		NFTs:            append([]entities.NFTEntry{}, st.NFTs...),
		SelectedChainID: st.SelectedChainID,
	}
}

// sanitize re-keys a loaded state and drops duplicate ids, keeping the last
// occurrence. Blobs written by older versions may carry un-normalised ids.
func sanitize(st entities.RegistryState) entities.RegistryState {
	out := *entities.NewRegistryState()
	if st.SelectedChainID != 0 {
		out.SelectedChainID = st.SelectedChainID
	}
	for _, e := range st.Watchlist {
		e.ID = entities.WatchlistKey(e.ContractAddress, e.ChainID)
		out.Watchlist = append(without(out.Watchlist, e.ID, watchlistID), e)
	}
	for _, t := range st.CustomTokens {
		t.ID = entities.CustomTokenKey(t.ContractAddress, t.ChainID)
		out.CustomTokens = append(without(out.CustomTokens, t.ID, customTokenID), t)
	}
	for _, n := range st.NFTs {
		n = withNFTID(n)
		out.NFTs = append(without(out.NFTs, n.ID, nftID), n)
	}
	return out
}
