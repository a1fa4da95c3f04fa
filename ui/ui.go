package ui

import (
	"encoding/json"
	"io"
)

// Severity classifies the visual weight of a piece of inline text. The
// terminal maps each value to a style, tests and JSON see plain text.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarn
	SeverityError
	SeverityCritical
)

// StyledText pairs a plain string with a Severity annotation.
//
//	u.Info("Owner: %s", u.Style(ui.StyledText{Text: owner, Severity: ui.SeveritySuccess}))
type StyledText struct {
	Text     string
	Severity Severity
}

// MarshalJSON serializes StyledText as its plain text.
func (s StyledText) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Text)
}

// UI is every terminal interaction of the bankdapp commands and the bank
// page. TerminalUI writes to stdout and reads stdin, RecordingUI captures
// output and serves scripted inputs in tests.
//
// Implementations are safe for concurrent use so background refreshes can
// report while the page is waiting for input.
type UI interface {
	// Style returns t colored according to its Severity, or the plain text
	// when colors are off.
	Style(t StyledText) string

	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	// Error writes a failure in red. It does not exit.
	Error(format string, args ...any)
	// Critical is for data the user must review before signing, or the
	// proof of a tx they just broadcasted.
	Critical(format string, args ...any)

	// Section writes a separator centred around title.
	Section(title string)

	// KeyValue renders an aligned label/value block.
	KeyValue(rows [][2]string)

	// Table renders a bordered table. A nil header renders no header row.
	Table(headers []string, rows [][]string)

	// Spinner starts an animated spinner and returns the function stopping
	// it. Outside a terminal it prints msg once.
	Spinner(msg string) func()

	// Interpret shows what the program understood from the last input.
	Interpret(value string)

	// Ask prints a "> " prompt and reads a line, looping until validate
	// returns nil. A nil validate accepts anything.
	Ask(validate func(string) error) string

	// Secret reads a line without echoing it, for passphrases.
	Secret(prompt string) string

	// Confirm asks a yes/no question.
	Confirm(prompt string, defaultYes bool) bool

	// Choose prints numbered options and returns the 0-based index picked.
	Choose(prompt string, options []string) int

	// Indent returns a child UI one level deeper sharing the same streams.
	Indent() UI

	// Writer returns a writer prefixing every line with the current indent.
	Writer() io.Writer
}
