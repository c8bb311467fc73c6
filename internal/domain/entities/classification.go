package entities

// TxKind is the category a transaction is classified into
type TxKind string

const (
	KindSend                TxKind = "send"
	KindReceive             TxKind = "receive"
	KindSwap                TxKind = "swap"
	KindBridge              TxKind = "bridge"
	KindContractInteraction TxKind = "contract_interaction"
)

// TokenMovement describes the asset moved by a classified transaction
type TokenMovement struct {
	Symbol   string  `json:"symbol"`
	Amount   string  `json:"amount"`
	ValueUSD float64 `json:"value_usd"`
	Decimals uint8   `json:"decimals"`
	LogoURL  string  `json:"logo_url,omitempty"`
}

// Classification is implemented by Send, Receive, Swap, Bridge and
// ContractInteraction only.
type Classification interface {
	Kind() TxKind
	Primary() *TokenMovement
	Secondary() *TokenMovement
	isClassification()
}

// Send is an outgoing transfer of a single asset
type Send struct {
	Token TokenMovement
}

// Receive is an incoming transfer of a single asset
type Receive struct {
	Token TokenMovement
}

// Swap exchanges one asset for another. Either leg may be missing when the
// viewer is not a direct counterparty of it.
type Swap struct {
	Sent     *TokenMovement
	Received *TokenMovement
}

// Bridge moves an asset across chains. Nothing classifies into it yet.
type Bridge struct{}

// ContractInteraction is any call without a value movement for the viewer
type ContractInteraction struct{}

func (s Send) Kind() TxKind { return KindSend }

func (s Send) Primary() *TokenMovement {
	t := s.Token
	return &t
}

func (Send) Secondary() *TokenMovement { return nil }
func (Send) isClassification()         {}

func (r Receive) Kind() TxKind { return KindReceive }

func (r Receive) Primary() *TokenMovement {
	t := r.Token
	return &t
}

func (Receive) Secondary() *TokenMovement { return nil }
func (Receive) isClassification()         {}

func (Swap) Kind() TxKind                { return KindSwap }
func (s Swap) Primary() *TokenMovement   { return s.Sent }
func (s Swap) Secondary() *TokenMovement { return s.Received }
func (Swap) isClassification()           {}

func (Bridge) Kind() TxKind              { return KindBridge }
func (Bridge) Primary() *TokenMovement   { return nil }
func (Bridge) Secondary() *TokenMovement { return nil }
func (Bridge) isClassification()         {}

func (ContractInteraction) Kind() TxKind              { return KindContractInteraction }
func (ContractInteraction) Primary() *TokenMovement   { return nil }
func (ContractInteraction) Secondary() *TokenMovement { return nil }
func (ContractInteraction) isClassification()         {}

// ClassifiedTransaction is the flat JSON view of a Classification
type ClassifiedTransaction struct {
	Kind           TxKind         `json:"kind"`
	PrimaryToken   *TokenMovement `json:"primary_token,omitempty"`
	SecondaryToken *TokenMovement `json:"secondary_token,omitempty"`
}
