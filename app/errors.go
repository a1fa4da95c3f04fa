package app

import (
	"context"
	"errors"
	"fmt"

	gethkeystore "github.com/ethereum/go-ethereum/accounts/keystore"

	"github.com/tranvictor/bankdapp/accounts"
	"github.com/tranvictor/bankdapp/bank"
	bankcommon "github.com/tranvictor/bankdapp/common"
	"github.com/tranvictor/bankdapp/networks"
	"github.com/tranvictor/bankdapp/util/txmanager"
	"github.com/tranvictor/bankdapp/wallet"
)

var ErrNotConnected = errors.New("connect your wallet first")

type Kind uint8

const (
	NetworkError Kind = iota
	ProviderUnavailable
	UserRejected
	ContractReverted
	InvalidInput
)

func (k Kind) String() string {
	switch k {
	case ProviderUnavailable:
		return "provider unavailable"
	case UserRejected:
		return "user rejected"
	case ContractReverted:
		return "contract reverted"
	case InvalidInput:
		return "invalid input"
	default:
		return "network error"
	}
}

// Error is what the page shows for a failed action. Reason is the decoded
// revert reason of ContractReverted errors, it may be empty.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ProviderUnavailable:
		return wallet.ErrNoProvider.Error()
	case UserRejected:
		return "request rejected: " + e.Err.Error()
	case ContractReverted:
		if e.Reason == "" {
			return "transaction reverted by the bank contract"
		}
		return "transaction reverted: " + e.Reason
	case InvalidInput:
		return "invalid input: " + e.Err.Error()
	default:
		return "network error: " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

var invalidInputs = []error{
	ErrNotConnected,
	bank.ErrEmptyName,
	bank.ErrNegativeAmount,
	bankcommon.ErrInvalidAmount,
	bankcommon.ErrNegativeAmount,
	bankcommon.ErrTooManyDigits,
	bankcommon.ErrBytes32TooLong,
	bankcommon.ErrBytes32InvalidString,
	networks.ErrNetworkNotFound,
	accounts.ErrAccountNotFound,
	gethkeystore.ErrDecrypt,
}

var rejections = []error{
	wallet.ErrUserRejected,
	wallet.ErrNotAuthorized,
	txmanager.ErrAccountNotLoaded,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// Classify maps err to an Error kind. A nil err gives nil.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, wallet.ErrNoProvider):
		return &Error{Kind: ProviderUnavailable, Err: err}
	case isAny(err, rejections):
		return &Error{Kind: UserRejected, Err: err}
	case isAny(err, invalidInputs):
		return &Error{Kind: InvalidInput, Err: err}
	}
	if reason, ok := bank.RevertReason(err); ok {
		return &Error{Kind: ContractReverted, Reason: reason, Err: err}
	}
	if errors.Is(err, txmanager.ErrTxReverted) {
		return &Error{Kind: ContractReverted, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: NetworkError, Err: fmt.Errorf("cancelled, the tx may still be mined: %w", err)}
	}
	return &Error{Kind: NetworkError, Err: err}
}
