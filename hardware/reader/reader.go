// Package reader implements card and biometric reader collaborators.
// Hardware access is delegated to external programs, the kiosk only
// enforces timeouts and maps failures to types.HardwareError.
package reader

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/kiosk/internal/types"
)

const DefaultTimeout = 5 * time.Second

type Config struct {
	Driver    string   `hcl:"driver"` // static, command
	Value     string   `hcl:"value"`
	Command   string   `hcl:"command"`
	Args      []string `hcl:"args"`
	TimeoutMs int      `hcl:"timeout_ms"`
}

func New(device string, c Config, timeout time.Duration) (types.Reader, error) {
	switch c.Driver {
	case "", "static":
		return &Static{Device: device, Value: c.Value}, nil
	case "command":
		if c.Command == "" {
			return nil, types.ConfigErrorf("%s driver=command requires command", device)
		}
		return &Command{Device: device, Path: c.Command, Args: c.Args, Timeout: timeout}, nil
	default:
		return nil, types.ConfigErrorf("%s unknown driver=%s valid: static, command", device, c.Driver)
	}
}

// Static always returns configured value, simulated hardware.
type Static struct {
	Device string
	Value  string
}

func (self *Static) String() string { return self.Device + "/static" }
func (self *Static) Read(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", timeoutError(self.Device, ctx.Err())
	default:
		return self.Value, nil
	}
}

// Command runs external program, first line of stdout is the result.
type Command struct {
	Device  string
	Path    string
	Args    []string
	Timeout time.Duration
}

func (self *Command) String() string { return fmt.Sprintf("%s/command(%s)", self.Device, self.Path) }
func (self *Command) Read(ctx context.Context) (string, error) {
	timeout := self.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, self.Path, self.Args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = 100 * time.Millisecond
	out, err := cmd.Output()
	if ctx.Err() != nil {
		return "", timeoutError(self.Device, ctx.Err())
	}
	if err != nil {
		err = errors.Annotatef(err, "%s stderr=%s", self.Path, strings.TrimSpace(stderr.String()))
		return "", errors.Trace(types.HardwareError{Device: self.Device, Err: err})
	}
	line, _ := bufio.NewReader(bytes.NewReader(out)).ReadString('\n')
	return strings.TrimSpace(line), nil
}

// Mock calls F, for tests.
type Mock struct {
	Device string
	F      func(context.Context) (string, error)
	Calls  int
}

func (self *Mock) String() string { return self.Device + "/mock" }
func (self *Mock) Read(ctx context.Context) (string, error) {
	self.Calls++
	s, err := self.F(ctx)
	if err != nil && !types.IsHardwareError(err) {
		err = errors.Trace(types.HardwareError{Device: self.Device, Err: err, Timeout: ctx.Err() != nil})
	}
	return s, err
}

func timeoutError(device string, err error) error {
	return errors.Trace(types.HardwareError{Device: device, Timeout: true, Err: err})
}
