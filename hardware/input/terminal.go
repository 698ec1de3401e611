package input

import (
	"io"
	"os"

	"github.com/juju/errors"
	"github.com/temoto/kiosk/internal/types"
	"golang.org/x/term"
)

const TerminalTag = "terminal"

// TerminalSource reads single key presses from raw mode terminal.
type TerminalSource struct {
	r     io.Reader
	fd    int
	state *term.State
}

var _ Source = new(TerminalSource)

func (self *TerminalSource) String() string { return TerminalTag }

// NewTerminalSource switches f into raw mode when it is a terminal.
// Call Restore before exit.
func NewTerminalSource(f *os.File) (*TerminalSource, error) {
	self := &TerminalSource{r: f, fd: int(f.Fd())}
	if term.IsTerminal(self.fd) {
		state, err := term.MakeRaw(self.fd)
		if err != nil {
			return nil, errors.Annotate(err, "terminal raw mode")
		}
		self.state = state
	}
	return self, nil
}

func NewTerminalReader(r io.Reader) *TerminalSource {
	return &TerminalSource{r: r, fd: -1}
}

func (self *TerminalSource) Restore() error {
	if self.state == nil {
		return nil
	}
	err := term.Restore(self.fd, self.state)
	self.state = nil
	return err
}

func (self *TerminalSource) Read() (types.InputEvent, error) {
	var buf [1]byte
	for {
		n, err := self.r.Read(buf[:])
		if err != nil {
			return types.InputEvent{}, err
		}
		if n == 0 {
			continue
		}
		// ctrl+c in raw mode
		if buf[0] == 0x03 {
			return types.InputEvent{}, io.EOF
		}
		if key := TerminalKey(buf[0]); key != 0 {
			return types.InputEvent{Source: TerminalTag, Key: key, Up: true}, nil
		}
	}
}
