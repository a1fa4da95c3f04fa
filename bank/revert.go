package bank

import (
	"errors"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// hardhat reports the reason in the message when it does not send revert data
var hardhatReasonRegexp = regexp.MustCompile(`reverted with reason string '(.*?)'`)

// RevertReason digs the Error(string) reason out of an error returned by a
// node. ok is false when err does not come from a revert at all, an empty
// reason with ok true is a revert without message.
func RevertReason(err error) (reason string, ok bool) {
	if err == nil {
		return "", false
	}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		var raw []byte
		switch d := dataErr.ErrorData().(type) {
		case string:
			raw, _ = hexutil.Decode(d)
		case []byte:
			raw = d
		}
		if reason, unpackErr := abi.UnpackRevert(raw); unpackErr == nil {
			return reason, true
		}
	}
	if m := hardhatReasonRegexp.FindStringSubmatch(err.Error()); m != nil {
		return m[1], true
	}
	if strings.Contains(strings.ToLower(err.Error()), "execution reverted") {
		return "", true
	}
	return "", false
}
