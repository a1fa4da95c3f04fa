package common

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrBytes32TooLong       = errors.New("bytes32 string must be less than 32 bytes")
	ErrBytes32NoTerminator  = errors.New("invalid bytes32 string - no null terminator")
	ErrBytes32InvalidString = errors.New("invalid bytes32 string - not utf-8")
)

// FormatBytes32String packs text into a null terminated bytes32 value. The
// utf-8 encoding of text must fit in 31 bytes.
func FormatBytes32String(text string) ([32]byte, error) {
	var result [32]byte
	if !utf8.ValidString(text) {
		return result, ErrBytes32InvalidString
	}
	raw := []byte(text)
	if len(raw) > 31 {
		return result, fmt.Errorf("%w: %q is %d bytes", ErrBytes32TooLong, text, len(raw))
	}
	copy(result[:], raw)
	return result, nil
}

// ParseBytes32String reads text out of a null terminated bytes32 value.
func ParseBytes32String(data [32]byte) (string, error) {
	if data[31] != 0 {
		return "", ErrBytes32NoTerminator
	}
	length := bytes.IndexByte(data[:], 0)
	text := data[:length]
	if !utf8.Valid(text) {
		return "", ErrBytes32InvalidString
	}
	return string(text), nil
}

// IsZeroBytes32 reports whether no byte was ever written to data.
func IsZeroBytes32(data [32]byte) bool {
	return data == [32]byte{}
}
