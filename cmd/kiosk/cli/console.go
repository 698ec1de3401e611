package cli

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/juju/errors"
	"github.com/temoto/kiosk/internal/state"
	"github.com/temoto/kiosk/internal/types"
	"github.com/temoto/kiosk/internal/ui"
)

const (
	consoleTag  = "console"
	stopTimeout = 5 * time.Second
)

type command struct {
	name  string
	usage string
	desc  string
}

var commands = []command{
	{"show", "show DISPLAY", "navigate to display, runs entry side effects"},
	{"click", "click X Y", "pointer event at pixel"},
	{"tap", "tap N", "pointer event at center of widget N from dump"},
	{"key", "key K...", "key press: digits, enter, esc, bs"},
	{"token", "token T", "activate input token without widget"},
	{"dump", "dump", "list widgets of active display"},
	{"png", "png FILE", "write canvas to file"},
	{"state", "state", "display, buffer and session"},
	{"sleep", "sleep MS", "pause script"},
	{"help", "help", "this text"},
}

var (
	styleHeader      = lipgloss.NewStyle().Bold(true).Underline(true)
	styleInteractive = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleColumn      = lipgloss.NewStyle().PaddingRight(2)
)

type Console struct {
	g   *state.Global
	ui  *ui.UI
	out io.Writer
}

func NewConsole(g *state.Global, u *ui.UI, out io.Writer) *Console {
	return &Console{g: g, ui: u, out: out}
}

// Exec runs one console line. Empty and # comment lines are ignored.
func (self *Console) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "help":
		self.help()
		return nil

	case "show":
		if len(args) != 1 {
			return usageError(cmd)
		}
		return self.ui.Show(ctx, args[0])

	case "click":
		if len(args) != 2 {
			return usageError(cmd)
		}
		x, errx := strconv.Atoi(args[0])
		y, erry := strconv.Atoi(args[1])
		if errx != nil || erry != nil {
			return usageError(cmd)
		}
		self.click(image.Pt(x, y))
		return nil

	case "tap":
		if len(args) != 1 {
			return usageError(cmd)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return usageError(cmd)
		}
		ws := self.ui.Snapshot().Widgets
		if n < 0 || n >= len(ws) {
			return errors.Errorf("tap widget=%d out of range, display has %d", n, len(ws))
		}
		if !ws[n].Interactive() {
			return errors.Errorf("tap widget=%d kind=%s is not interactive", n, ws[n].Spec.Kind)
		}
		b := ws[n].Bounds
		self.click(b.Min.Add(b.Size().Div(2)))
		return nil

	case "key":
		if len(args) == 0 {
			return usageError(cmd)
		}
		keys := make([]types.InputKey, 0, len(args))
		for _, a := range args {
			ks, err := ParseKeys(a)
			if err != nil {
				return err
			}
			keys = append(keys, ks...)
		}
		for _, k := range keys {
			self.g.Hardware.Input.Emit(types.InputEvent{Source: consoleTag, Key: k, Up: true})
		}
		return nil

	case "token":
		if len(args) == 0 {
			return usageError(cmd)
		}
		self.ui.Post(types.Event{Kind: types.EventActivate, Token: strings.Join(args, " ")})
		return nil

	case "dump":
		s := self.ui.Snapshot()
		fmt.Fprintln(self.out, FormatWidgets(s.Display, s.Widgets))
		return nil

	case "png":
		if len(args) != 1 {
			return usageError(cmd)
		}
		return self.png(args[0])

	case "state":
		fmt.Fprintln(self.out, FormatState(self.ui.Snapshot()))
		return nil

	case "sleep":
		if len(args) != 1 {
			return usageError(cmd)
		}
		ms, err := strconv.Atoi(args[0])
		if err != nil {
			return usageError(cmd)
		}
		select {
		case <-time.After(time.Duration(ms) * time.Millisecond):
		case <-ctx.Done():
		}
		return nil
	}
	return errors.Errorf("unknown command=%s, try help", cmd)
}

func (self *Console) click(p image.Point) {
	self.g.Hardware.Input.Emit(types.InputEvent{Source: consoleTag, Pointer: true, X: p.X, Y: p.Y})
}

func (self *Console) png(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Annotate(err, "png")
	}
	if err = self.ui.WritePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return errors.Annotate(f.Close(), "png")
}

func (self *Console) help() {
	for _, c := range commands {
		fmt.Fprintf(self.out, "%-12s %s\n", c.usage, c.desc)
	}
}

// ParseKeys accepts key name (enter, esc, bs) or literal characters.
func ParseKeys(s string) ([]types.InputKey, error) {
	switch strings.ToLower(s) {
	case "enter", "ok":
		return []types.InputKey{types.KeyAccept}, nil
	case "esc", "cancel":
		return []types.InputKey{types.KeyReject}, nil
	case "bs", "backspace", "clear":
		return []types.InputKey{types.KeyClear}, nil
	}
	keys := make([]types.InputKey, 0, len(s))
	for _, r := range s {
		if r < 0x20 || r > 0xffff {
			return nil, errors.Errorf("key=%q not supported", r)
		}
		keys = append(keys, types.InputKey(r))
	}
	return keys, nil
}

// FormatWidgets renders table: index, kind, bounds, font size, text, target.
func FormatWidgets(display string, ws []ui.Widget) string {
	cols := [][]string{{"#"}, {"kind"}, {"bounds"}, {"size"}, {"text"}, {"action"}}
	for i, w := range ws {
		action := ""
		switch w.Spec.Kind {
		case ui.ElemInput:
			action = "input=" + w.Spec.Token
		case ui.ElemLink:
			action = "location=" + w.Spec.Target
		}
		kind := w.Spec.Kind.String()
		if w.Interactive() {
			kind = styleInteractive.Render(kind)
		}
		row := []string{strconv.Itoa(i), kind, w.Bounds.String(), strconv.Itoa(w.FontSize), strconv.Quote(w.Text), action}
		for c := range cols {
			cols[c] = append(cols[c], row[c])
		}
	}
	rendered := make([]string, len(cols))
	for c, cells := range cols {
		cells[0] = styleHeader.Render(cells[0])
		rendered[c] = styleColumn.Render(lipgloss.JoinVertical(lipgloss.Left, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		"display="+display,
		lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
}

func FormatState(s ui.Snapshot) string {
	idle := ""
	if !s.LastActivity.IsZero() {
		idle = time.Since(s.LastActivity).Truncate(time.Second).String()
	}
	lines := []string{
		fmt.Sprintf("display=%s mode=%s keyboard=%t checking=%t idle=%s", s.Display, s.Mode, s.Keyboard, s.Checking, idle),
		fmt.Sprintf("buffer=%q", s.Buffer),
		fmt.Sprintf("card=%s biometric=%s pin=%s", s.Session.CardId, s.Session.BiometricResult, strings.Repeat("*", len(s.Session.EnteredPin))),
		fmt.Sprintf("balance=%d amount=%d message=%q", s.Session.Balance, s.Session.UserAmount, s.Session.Message),
	}
	if s.Session.Receipt != "" {
		lines = append(lines, "receipt="+s.Session.Receipt)
	}
	return strings.Join(lines, "\n")
}

func usageError(cmd string) error {
	for _, c := range commands {
		if c.name == cmd {
			return errors.Errorf("usage: %s", c.usage)
		}
	}
	return errors.Errorf("usage: %s", cmd)
}
