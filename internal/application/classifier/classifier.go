// Package classifier labels a wallet transaction as a send, receive, swap or
// contract interaction from the viewer's point of view.
package classifier

import (
	"strings"

	"github.com/bimakw/wallet-dashboard/internal/domain/chains"
	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
	"github.com/bimakw/wallet-dashboard/internal/pkg/numeric"
)

// nativeDecimals is the precision of every supported chain's gas asset
const nativeDecimals = 18

// Classify applies the rules in priority order, first match wins:
//  1. more than one transfer touching the viewer is a swap
//  2. a single transfer is a send or receive of that token
//  3. no transfers but a native value is a send or receive of the gas asset
//  4. anything else is a contract interaction
//
// Bridge is never produced.
func Classify(tx entities.Transaction, viewer string, chainID int64) entities.Classification {
	own := viewerTransfers(tx.Transfers, viewer)

	switch {
	case len(own) > 1:
		var swap entities.Swap
		for i := range own {
			if swap.Sent == nil && sameAddress(own[i].FromAddress, viewer) {
				m := movementOf(own[i])
				swap.Sent = &m
			}
			if swap.Received == nil && sameAddress(own[i].ToAddress, viewer) {
				m := movementOf(own[i])
				swap.Received = &m
			}
		}
		return swap

	case len(own) == 1:
		m := movementOf(own[0])
		if sameAddress(own[0].FromAddress, viewer) {
			return entities.Send{Token: m}
		}
		return entities.Receive{Token: m}

	case numeric.IsPositive(tx.Value):
		m := entities.TokenMovement{
			Symbol:   chains.NativeSymbol(chainID),
			Amount:   tx.Value,
			ValueUSD: numeric.Finite(tx.ValueQuote),
			Decimals: nativeDecimals,
		}
		if sameAddress(tx.FromAddress, viewer) {
			return entities.Send{Token: m}
		}
		return entities.Receive{Token: m}
	}

	return entities.ContractInteraction{}
}

// Flatten converts a classification into its JSON view
func Flatten(c entities.Classification) entities.ClassifiedTransaction {
	if c == nil {
		return entities.ClassifiedTransaction{Kind: entities.KindContractInteraction}
	}
	return entities.ClassifiedTransaction{
		Kind:           c.Kind(),
		PrimaryToken:   c.Primary(),
		SecondaryToken: c.Secondary(),
	}
}

// viewerTransfers keeps the transfers where viewer is sender or receiver
func viewerTransfers(transfers []entities.TokenTransfer, viewer string) []entities.TokenTransfer {
	result := make([]entities.TokenTransfer, 0, len(transfers))
	for _, t := range transfers {
		if sameAddress(t.FromAddress, viewer) || sameAddress(t.ToAddress, viewer) {
			result = append(result, t)
		}
	}
	return result
}

func movementOf(t entities.TokenTransfer) entities.TokenMovement {
	return entities.TokenMovement{
		Symbol:   t.Symbol,
		Amount:   t.Balance,
		ValueUSD: numeric.Finite(t.BalanceQuote),
		Decimals: t.Decimals,
		LogoURL:  t.LogoURL,
	}
}

func sameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
