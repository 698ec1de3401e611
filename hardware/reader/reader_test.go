package reader

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/kiosk/internal/types"
)

func TestNew(t *testing.T) {
	t.Parallel()

	type Case struct {
		name      string
		config    Config
		expect    string
		expectErr string
	}
	cases := []Case{
		{"default-static", Config{Value: "04A1"}, "card/static", ""},
		{"command", Config{Driver: "command", Command: "/bin/true"}, "card/command(/bin/true)", ""},
		{"command-empty", Config{Driver: "command"}, "", "config: card driver=command requires command"},
		{"unknown", Config{Driver: "rfid"}, "", "config: card unknown driver=rfid valid: static, command"},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			r, err := New("card", c.config, 0)
			if c.expectErr != "" {
				require.Error(t, err)
				assert.True(t, types.IsConfigError(err))
				assert.Equal(t, c.expectErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.expect, r.String())
		})
	}
}

func TestStatic(t *testing.T) {
	t.Parallel()

	r := &Static{Device: "biometric", Value: types.BiometricMatch}
	v, err := r.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "MATCH", v)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Read(ctx)
	require.Error(t, err)
	herr, ok := errors.Cause(err).(types.HardwareError)
	require.True(t, ok)
	assert.True(t, herr.Timeout)
}

func TestCommand(t *testing.T) {
	t.Parallel()

	r := &Command{Device: "card", Path: "/bin/sh", Args: []string{"-c", "echo 04A1B2; echo ignored"}}
	v, err := r.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "04A1B2", v)

	r = &Command{Device: "card", Path: "/bin/sh", Args: []string{"-c", "echo no card >&2; exit 3"}}
	_, err = r.Read(context.Background())
	require.Error(t, err)
	assert.True(t, types.IsHardwareError(err))
	assert.Contains(t, err.Error(), "no card")

	r = &Command{Device: "card", Path: "/bin/sh", Args: []string{"-c", "sleep 5"}, Timeout: 50 * time.Millisecond}
	_, err = r.Read(context.Background())
	require.Error(t, err)
	herr := errors.Cause(err).(types.HardwareError)
	assert.True(t, herr.Timeout)
}

func TestMock(t *testing.T) {
	t.Parallel()

	r := &Mock{Device: "card", F: func(context.Context) (string, error) { return "", fmt.Errorf("jammed") }}
	_, err := r.Read(context.Background())
	assert.True(t, types.IsHardwareError(err))
	assert.Equal(t, 1, r.Calls)
}
