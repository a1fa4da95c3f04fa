package common

import (
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	TxStatusError    = "error"
	TxStatusNotFound = "notfound"
	TxStatusPending  = "pending"
	TxStatusLost     = "lost"
	TxStatusReverted = "reverted"
	TxStatusDone     = "done"
)

type TxInfo struct {
	Status      string
	Tx          *types.Transaction
	Receipt     *types.Receipt
	BlockHeader *types.Header
}

// Mined reports whether the tx made it into a block, successful or not.
func (ti TxInfo) Mined() bool {
	return ti.Status == TxStatusDone || ti.Status == TxStatusReverted
}
