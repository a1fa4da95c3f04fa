package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setGasPrices(t *testing.T, gasPrice, feeCap float64) {
	t.Helper()
	oldPrice, oldCap := GasPrice, GasFeeCap
	GasPrice, GasFeeCap = gasPrice, feeCap
	t.Cleanup(func() { GasPrice, GasFeeCap = oldPrice, oldCap })
}

func TestValidateGas(t *testing.T) {
	setGasPrices(t, 0, 25.5)
	assert.NoError(t, ValidateGas())

	setGasPrices(t, 3, MaxGasGwei)
	assert.NoError(t, ValidateGas())
}

func TestValidateGasRejectsOutOfRange(t *testing.T) {
	for _, v := range []float64{1e20, -1, math.NaN(), math.Inf(1)} {
		setGasPrices(t, 1, v)
		err := ValidateGas()
		require.Error(t, err, "%v", v)
		assert.Contains(t, err.Error(), "--gas-fee-cap")
	}

	setGasPrices(t, 1e20, 1e20)
	err := ValidateGas()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--gasprice")
	assert.Contains(t, err.Error(), "--gas-fee-cap")
}
