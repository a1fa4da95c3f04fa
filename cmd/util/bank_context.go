package util

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/tranvictor/bankdapp/config"
	"github.com/tranvictor/bankdapp/networks"
	"github.com/tranvictor/bankdapp/util/txmanager"
	"github.com/tranvictor/bankdapp/wallet"
)

// BankContext holds what the pre-run hook resolved for the bank commands.
// Commands retrieve it via BankContextFrom instead of reading config
// globals.
type BankContext struct {
	Network  networks.Network
	Contract common.Address
	// Provider is nil when no wallet is available, connecting then reports
	// it to the user.
	Provider wallet.Provider
	GasOpts  txmanager.GasOptions
}

type bankContextKey struct{}

func WithBankContext(ctx context.Context, bc BankContext) context.Context {
	return context.WithValue(ctx, bankContextKey{}, bc)
}

// BankContextFrom retrieves the BankContext attached to cmd by a pre-run
// hook. The bool is false when none has been attached.
func BankContextFrom(cmd *cobra.Command) (BankContext, bool) {
	ctx := cmd.Context()
	if ctx == nil {
		return BankContext{}, false
	}
	bc, ok := ctx.Value(bankContextKey{}).(BankContext)
	return bc, ok
}

// GasOptions converts the gas flags.
func GasOptions() txmanager.GasOptions {
	return txmanager.GasOptions{
		GasPrice:      config.GasPrice,
		TipGwei:       config.TipGas,
		GasLimit:      config.GasLimit,
		ExtraGasPrice: config.ExtraGasPrice,
		ExtraGasLimit: config.ExtraGasLimit,
	}
}
