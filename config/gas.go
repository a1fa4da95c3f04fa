package config

import (
	"errors"
	"fmt"
	"math"
)

// MaxGasGwei bounds every gas price flag so it converts to wei without
// overflowing.
const MaxGasGwei = 1e9

func checkGwei(flag string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > MaxGasGwei {
		return fmt.Errorf("--%s must be between 0 and %.0f gwei, got %v", flag, MaxGasGwei, v)
	}
	return nil
}

// ValidateGas checks the gas price flags after flags, env and config file
// are merged.
func ValidateGas() error {
	return errors.Join(
		checkGwei("gasprice", GasPrice),
		checkGwei("tipgas", TipGas),
		checkGwei("extraprice", ExtraGasPrice),
		checkGwei("gas-fee-cap", GasFeeCap),
		checkGwei("gas-tip-cap", GasTipCap),
	)
}
