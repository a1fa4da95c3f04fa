package bank

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type dataError struct {
	msg  string
	data interface{}
}

func (e *dataError) Error() string          { return e.msg }
func (e *dataError) ErrorData() interface{} { return e.data }

func TestRevertReason(t *testing.T) {
	// Error("Not enough")
	payload := "0x08c379a0" +
		"0000000000000000000000000000000000000000000000000000000000000020" +
		"000000000000000000000000000000000000000000000000000000000000000a" +
		"4e6f7420656e6f75676800000000000000000000000000000000000000000000"

	wrapped := fmt.Errorf("node a: %w", &dataError{msg: "execution reverted: Not enough", data: payload})
	reason, ok := RevertReason(errors.Join(errors.New("node b: timeout"), wrapped))
	assert.True(t, ok)
	assert.Equal(t, "Not enough", reason)

	reason, ok = RevertReason(errors.New(
		"VM Exception while processing transaction: reverted with reason string 'nope'"))
	assert.True(t, ok)
	assert.Equal(t, "nope", reason)

	reason, ok = RevertReason(&dataError{msg: "execution reverted"})
	assert.True(t, ok)
	assert.Equal(t, "", reason)

	_, ok = RevertReason(errors.New("dial tcp 127.0.0.1:8545: connection refused"))
	assert.False(t, ok)

	_, ok = RevertReason(nil)
	assert.False(t, ok)
}
