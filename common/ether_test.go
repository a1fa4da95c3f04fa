package common_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bankcommon "github.com/tranvictor/bankdapp/common"
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, "bad fixture %s", s)
	return v
}

func TestParseEther(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1", "1000000000000000000"},
		{"1.5", "1500000000000000000"},
		{"0.000000000000000001", "1"},
		{"0", "0"},
		{" 2.25 ", "2250000000000000000"},
		{"123456789.123456789123456789", "123456789123456789123456789"},
	}
	for _, c := range cases {
		got, err := bankcommon.ParseEther(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, mustBig(t, c.want), got, c.in)
	}
}

func TestParseEtherRejectsBadInput(t *testing.T) {
	_, err := bankcommon.ParseEther("")
	assert.ErrorIs(t, err, bankcommon.ErrInvalidAmount)

	_, err = bankcommon.ParseEther("abc")
	assert.ErrorIs(t, err, bankcommon.ErrInvalidAmount)

	for _, in := range []string{"1e3", "1E-18", "0x10", "1,5", "+1", "1.2.3", "."} {
		_, err = bankcommon.ParseEther(in)
		assert.ErrorIs(t, err, bankcommon.ErrInvalidAmount, in)
	}

	_, err = bankcommon.ParseEther("-1")
	assert.ErrorIs(t, err, bankcommon.ErrNegativeAmount)

	_, err = bankcommon.ParseEther("0.0000000000000000001")
	assert.ErrorIs(t, err, bankcommon.ErrTooManyDigits)
}

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "1.0", bankcommon.FormatEther(mustBig(t, "1000000000000000000")))
	assert.Equal(t, "0.5", bankcommon.FormatEther(mustBig(t, "500000000000000000")))
	assert.Equal(t, "0.0", bankcommon.FormatEther(big.NewInt(0)))
	assert.Equal(t, "0.000000000000000001", bankcommon.FormatEther(big.NewInt(1)))
	assert.Equal(t, "", bankcommon.FormatEther(nil))
}

func TestEtherRoundTrip(t *testing.T) {
	for _, s := range []string{"1.0", "0.25", "42.000000000000000001"} {
		wei, err := bankcommon.ParseEther(s)
		require.NoError(t, err)
		assert.Equal(t, s, bankcommon.FormatEther(wei))
	}
}
