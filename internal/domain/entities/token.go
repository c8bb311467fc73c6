package entities

// TokenBalance is one holding of a wallet as reported by the data gateway
type TokenBalance struct {
	ContractAddress string  `json:"contract_address"`
	Name            string  `json:"name"`
	Symbol          string  `json:"symbol"`
	Decimals        uint8   `json:"decimals"`
	Balance         string  `json:"balance"` // Raw integer amount, not scaled by decimals
	Quote           float64 `json:"quote"`   // USD value of the whole balance
	QuoteRate       float64 `json:"quote_rate"`
	LogoURL         string  `json:"logo_url,omitempty"`
}
