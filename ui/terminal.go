package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/logrusorgru/aurora"
	runewidth "github.com/mattn/go-runewidth"
	indent "github.com/openconfig/goyang/pkg/indent"
	"golang.org/x/term"
)

const (
	indentUnit      = "  "
	sectionWidth    = 50
	promptPrefix    = "> "
	interpretPrefix = "→ "
)

type terminal struct {
	mu  sync.Mutex
	out io.Writer
	in  *bufio.Reader
	// fd of the input when it is a terminal, -1 otherwise
	inFd     int
	isOutTTY bool
}

// TerminalUI is the production UI. Every level of indentation adds two
// spaces. Children created by Indent share the streams and the lock.
type TerminalUI struct {
	indentLevel int
	t           *terminal
	au          aurora.Aurora
}

// NewTerminalUI writes to os.Stdout and reads os.Stdin. Colors and the
// spinner are enabled only when stdout is a terminal.
func NewTerminalUI() *TerminalUI {
	return NewTerminalUIOn(os.Stdout)
}

// NewTerminalUIOn is NewTerminalUI writing to out, commands whose stdout
// is machine read use os.Stderr.
func NewTerminalUIOn(out *os.File) *TerminalUI {
	inFd := -1
	if term.IsTerminal(int(os.Stdin.Fd())) {
		inFd = int(os.Stdin.Fd())
	}
	isTTY := term.IsTerminal(int(out.Fd()))
	return &TerminalUI{
		t: &terminal{
			out:      out,
			in:       bufio.NewReader(os.Stdin),
			inFd:     inFd,
			isOutTTY: isTTY,
		},
		au: aurora.NewAurora(isTTY),
	}
}

// NewPlainUI is a colorless TerminalUI over arbitrary streams.
func NewPlainUI(out io.Writer, in io.Reader) *TerminalUI {
	return &TerminalUI{
		t: &terminal{
			out:  out,
			in:   bufio.NewReader(in),
			inFd: -1,
		},
		au: aurora.NewAurora(false),
	}
}

func (u *TerminalUI) prefix() string {
	return strings.Repeat(indentUnit, u.indentLevel)
}

func (u *TerminalUI) writeLine(line string) {
	u.t.mu.Lock()
	defer u.t.mu.Unlock()
	fmt.Fprintf(u.t.out, "%s%s\n", u.prefix(), line)
}

func (u *TerminalUI) Style(t StyledText) string {
	switch t.Severity {
	case SeveritySuccess:
		return u.au.Green(t.Text).String()
	case SeverityWarn:
		return u.au.Yellow(t.Text).String()
	case SeverityError:
		return u.au.Red(t.Text).String()
	case SeverityCritical:
		return u.au.Bold(t.Text).String()
	default:
		return t.Text
	}
}

func (u *TerminalUI) Info(format string, args ...any) {
	u.writeLine(fmt.Sprintf(format, args...))
}

func (u *TerminalUI) Success(format string, args ...any) {
	u.writeLine(u.au.Green(fmt.Sprintf(format, args...)).String())
}

func (u *TerminalUI) Warn(format string, args ...any) {
	u.writeLine(u.au.Yellow(fmt.Sprintf(format, args...)).String())
}

func (u *TerminalUI) Error(format string, args ...any) {
	u.writeLine(u.au.Red(fmt.Sprintf(format, args...)).String())
}

func (u *TerminalUI) Critical(format string, args ...any) {
	u.writeLine(u.au.Bold(fmt.Sprintf(format, args...)).String())
}

// Section prints
//
//	================ Bank ================
//
// surrounded by blank lines.
func (u *TerminalUI) Section(title string) {
	titled := " " + title + " "
	bars := sectionWidth - runewidth.StringWidth(titled)
	if bars < 6 {
		bars = 6
	}
	left := bars / 2
	line := strings.Repeat("=", left) + titled + strings.Repeat("=", bars-left)
	u.t.mu.Lock()
	defer u.t.mu.Unlock()
	fmt.Fprintf(u.t.out, "\n%s%s\n\n", u.prefix(), line)
}

func (u *TerminalUI) Interpret(value string) {
	u.writeLine(indentUnit + interpretPrefix + u.au.Cyan(value).String())
}

func (u *TerminalUI) readLine() string {
	text, _ := u.t.in.ReadString('\n')
	return strings.TrimRight(text, "\r\n")
}

func (u *TerminalUI) Ask(validate func(string) error) string {
	for {
		u.t.mu.Lock()
		fmt.Fprintf(u.t.out, "%s%s", u.prefix(), promptPrefix)
		u.t.mu.Unlock()
		input := u.readLine()
		if validate == nil {
			return input
		}
		err := validate(input)
		if err == nil {
			return input
		}
		u.Error("%s", err)
	}
}

// Secret disables echo when stdin is a terminal. Piped input is read as a
// plain line.
func (u *TerminalUI) Secret(prompt string) string {
	u.t.mu.Lock()
	fmt.Fprintf(u.t.out, "%s%s: ", u.prefix(), prompt)
	u.t.mu.Unlock()
	if u.t.inFd < 0 {
		return u.readLine()
	}
	secret, _ := term.ReadPassword(u.t.inFd)
	u.writeLine("")
	return string(secret)
}

func (u *TerminalUI) Confirm(prompt string, defaultYes bool) bool {
	options := "[Y/n]"
	if !defaultYes {
		options = "[y/N]"
	}
	u.Info("%s %s", prompt, options)
	input := strings.ToLower(strings.TrimSpace(u.Ask(func(s string) error {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "", "y", "yes", "n", "no":
			return nil
		}
		return fmt.Errorf("please enter y or n")
	})))
	if input == "" {
		return defaultYes
	}
	return input == "y" || input == "yes"
}

func (u *TerminalUI) Choose(prompt string, options []string) int {
	for i, opt := range options {
		u.Info("%d. %s", i+1, opt)
	}
	u.Info("%s [1-%d]", prompt, len(options))
	input := u.Ask(func(s string) error {
		idx, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || idx < 1 || idx > len(options) {
			return fmt.Errorf("please enter a number between 1 and %d", len(options))
		}
		return nil
	})
	idx, _ := strconv.Atoi(strings.TrimSpace(input))
	return idx - 1
}

func cellWidth(s string) int {
	return runewidth.StringWidth(ansi.Strip(s))
}

// KeyValue pads labels to the widest one so values line up.
func (u *TerminalUI) KeyValue(rows [][2]string) {
	if len(rows) == 0 {
		return
	}
	maxLabel := 0
	for _, r := range rows {
		if w := cellWidth(r[0]); w > maxLabel {
			maxLabel = w
		}
	}
	u.t.mu.Lock()
	defer u.t.mu.Unlock()
	p := u.prefix()
	for _, r := range rows {
		fmt.Fprintf(u.t.out, "%s%s%s  %s\n", p, r[0], strings.Repeat(" ", maxLabel-cellWidth(r[0])), r[1])
	}
}

// Table keeps ANSI codes inside cells, widths are measured on the visible
// text.
func (u *TerminalUI) Table(headers []string, rows [][]string) {
	ncols := len(headers)
	for _, r := range rows {
		if len(r) > ncols {
			ncols = len(r)
		}
	}
	if ncols == 0 {
		return
	}
	widths := make([]int, ncols)
	for i, h := range headers {
		widths[i] = cellWidth(h)
	}
	for _, row := range rows {
		for i, c := range row {
			if w := cellWidth(c); w > widths[i] {
				widths[i] = w
			}
		}
	}

	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	border := func(s string) string { return borderStyle.Render(s) }
	dashes := make([]string, ncols)
	for i, w := range widths {
		dashes[i] = strings.Repeat("─", w+2)
	}
	renderRow := func(cells []string) string {
		parts := make([]string, ncols)
		for i := range parts {
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			parts[i] = " " + val + strings.Repeat(" ", widths[i]-cellWidth(val)) + " "
		}
		return border("│") + strings.Join(parts, border("│")) + border("│")
	}

	u.t.mu.Lock()
	defer u.t.mu.Unlock()
	p := u.prefix()
	fmt.Fprintf(u.t.out, "%s%s\n", p, border("┌"+strings.Join(dashes, "┬")+"┐"))
	if len(headers) > 0 {
		fmt.Fprintf(u.t.out, "%s%s\n", p, renderRow(headers))
		fmt.Fprintf(u.t.out, "%s%s\n", p, border("├"+strings.Join(dashes, "┼")+"┤"))
	}
	for _, row := range rows {
		fmt.Fprintf(u.t.out, "%s%s\n", p, renderRow(row))
	}
	fmt.Fprintf(u.t.out, "%s%s\n", p, border("└"+strings.Join(dashes, "┴")+"┘"))
}

func (u *TerminalUI) Spinner(msg string) func() {
	if !u.t.isOutTTY {
		u.Info("%s", msg)
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(u.t.out))
	s.Suffix = " " + msg
	s.Start()
	return func() {
		s.Stop()
		// the spinner leaves the cursor on its cleared line
		fmt.Fprintln(u.t.out)
	}
}

func (u *TerminalUI) Indent() UI {
	return &TerminalUI{
		indentLevel: u.indentLevel + 1,
		t:           u.t,
		au:          u.au,
	}
}

func (u *TerminalUI) Writer() io.Writer {
	if u.indentLevel == 0 {
		return u.t.out
	}
	return indent.NewWriter(u.t.out, u.prefix())
}
