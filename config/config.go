package config

import (
	"time"
)

var (
	NetworkString string
	Contract      string
	From          string
	Verbose       bool
)

var (
	GasPrice      float64
	TipGas        float64
	ExtraGasPrice float64
	GasLimit      uint64
	ExtraGasLimit uint64
)

// deploy
var (
	ArtifactPath string
	GasFeeCap    float64
	GasTipCap    float64
	DeployGas    uint64
	Timeout      time.Duration
)
