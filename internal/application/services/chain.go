package services

import "github.com/bimakw/wallet-dashboard/internal/application/registry"

// resolveChainID falls back to the registry's selected chain when the
// caller did not name one
func resolveChainID(store *registry.Store, chainID int64) int64 {
	if chainID > 0 || store == nil {
		return chainID
	}
	return store.Selection().SelectedChainID
}
