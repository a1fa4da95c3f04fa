package common

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const EtherDecimals = 18

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrTooManyDigits  = errors.New("fractional component exceeds decimals")
)

// plain decimal notation only, no exponent, sign or thousands separator
var decimalRegexp = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)$`)

// ParseUnits converts a decimal string such as "1.5" to its integer
// representation with the given number of decimals. The conversion is exact:
// inputs with more fractional digits than decimals are rejected.
func ParseUnits(value string, decimals int32) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}
	if !decimalRegexp.MatchString(value) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrNegativeAmount, value)
	}
	shifted := d.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("%w: %s has more than %d decimals", ErrTooManyDigits, value, decimals)
	}
	return shifted.BigInt(), nil
}

// FormatUnits is the inverse of ParseUnits. It always keeps at least one
// fractional digit, "1000000000000000000" with 18 decimals is "1.0".
func FormatUnits(value *big.Int, decimals int32) string {
	if value == nil {
		return ""
	}
	s := decimal.NewFromBigInt(value, -decimals).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ParseEther converts an ether amount string to wei.
func ParseEther(value string) (*big.Int, error) {
	return ParseUnits(value, EtherDecimals)
}

// FormatEther converts wei to a decimal ether string.
func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, EtherDecimals)
}
