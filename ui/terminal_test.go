package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainUIOutput(t *testing.T) {
	out := &bytes.Buffer{}
	u := NewPlainUI(out, strings.NewReader(""))

	u.Info("Bank: %s", "Gopher Savings")
	u.Indent().Warn("not connected")
	u.KeyValue([][2]string{{"Owner", "0xabc"}, {"Balance", "1.0"}})

	assert.Equal(t,
		"Bank: Gopher Savings\n"+
			"  not connected\n"+
			"Owner    0xabc\n"+
			"Balance  1.0\n",
		out.String(),
	)
}

func TestPlainUITable(t *testing.T) {
	out := &bytes.Buffer{}
	u := NewPlainUI(out, strings.NewReader(""))
	u.Table([]string{"Address", "Desc"}, [][]string{{"0x1", "owner"}})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, lines[1], "Address")
	assert.Contains(t, lines[3], "owner")
	// all lines have the same visible width
	for _, l := range lines[1:] {
		assert.Equal(t, cellWidth(lines[0]), cellWidth(l))
	}
}

func TestPlainUIInput(t *testing.T) {
	out := &bytes.Buffer{}
	u := NewPlainUI(out, strings.NewReader("abc\n1.5\n\nsecret\n2\n"))

	got := u.Ask(func(s string) error {
		if s == "abc" {
			return errors.New("not a number")
		}
		return nil
	})
	assert.Equal(t, "1.5", got)
	assert.Contains(t, out.String(), "not a number")

	assert.True(t, u.Confirm("Go on?", true))
	assert.Equal(t, "secret", u.Secret("Passphrase"))
	assert.Equal(t, 1, u.Choose("Pick", []string{"a", "b"}))
}

func TestRecordingUI(t *testing.T) {
	r := NewRecordingUI("y", "hunter2", "b")
	r.Info("hello %d", 1)
	r.Indent().Error("boom")
	assert.True(t, r.Confirm("sure?", false))
	assert.Equal(t, "hunter2", r.Secret("Passphrase"))
	assert.Equal(t, 1, r.Choose("Pick", []string{"a", "b"}))

	assert.Equal(t, []string{"hello 1"}, r.InfoMessages())
	assert.Equal(t, []string{"boom"}, r.ErrorMessages())
	assert.False(t, r.HasMessage("hunter2"))
	assert.Panics(t, func() { r.Ask(nil) })

	r.Reset()
	assert.Empty(t, r.Entries())
}
