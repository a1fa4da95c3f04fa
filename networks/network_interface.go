package networks

import (
	"time"
)

type Network interface {
	GetName() string
	GetChainID() uint64
	GetAlternativeNames() []string
	GetNativeTokenSymbol() string
	GetNativeTokenDecimal() uint64
	GetBlockTime() time.Duration // in second

	GetNodeVariableName() string
	GetDefaultNodes() map[string]string

	GetBlockExplorerURL() string
	// TxURL returns a link to the tx on the block explorer, empty when the
	// network has none.
	TxURL(hash string) string

	MarshalJSON() ([]byte, error)
}
