package common

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const UnknownDesc = "unknown"

var addressRegexp = regexp.MustCompile("^0x[0-9a-fA-F]{40}$")

// Address is a hex address with an optional human readable label.
type Address struct {
	Address string
	Desc    string
}

func IsAddress(addr string) bool {
	return addressRegexp.MatchString(addr)
}

func HexToAddress(hex string) common.Address {
	return common.HexToAddress(hex)
}

// SameAddress compares two hex addresses ignoring their checksum casing.
// An empty string never matches anything.
func SameAddress(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

// PlainAddress formats an Address without color codes.
func PlainAddress(addr Address) string {
	if addr.Address == "" {
		return ""
	}
	if addr.Desc == "" || addr.Desc == UnknownDesc {
		return addr.Address
	}
	return fmt.Sprintf("%s (%s)", addr.Address, addr.Desc)
}

// VerboseAddress formats an Address for the terminal, the label is colored.
func VerboseAddress(addr Address) string {
	if addr.Address == "" {
		return ""
	}
	return fmt.Sprintf("%s (%s)", addr.Address, NameWithColor(addr.Desc))
}
