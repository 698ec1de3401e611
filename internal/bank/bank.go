// Package bank is stub decision table in place of real banking backend.
package bank

import (
	"context"

	"github.com/temoto/kiosk/internal/types"
)

type Config struct {
	Driver    string `hcl:"driver"`
	Pin       string `hcl:"pin"`
	Biometric string `hcl:"biometric"`
	TimeoutMs int    `hcl:"timeout_ms"`
}

const (
	DefaultPin       = "1234"
	DefaultBiometric = types.BiometricMatch
)

// Table approves exactly one PIN and biometric result.
type Table struct {
	Pin       string
	Biometric string
}

var _ types.Verifier = Table{}

func NewTable(c Config) Table {
	t := Table{Pin: c.Pin, Biometric: c.Biometric}
	if t.Pin == "" {
		t.Pin = DefaultPin
	}
	if t.Biometric == "" {
		t.Biometric = DefaultBiometric
	}
	return t
}

func (self Table) Verify(ctx context.Context, pin, biometric string) (types.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return types.VerdictInvalid, types.VerificationError{Err: err}
	}
	if pin == self.Pin && biometric == self.Biometric {
		return types.VerdictApproved, nil
	}
	return types.VerdictDenied, nil
}

// Func adapts function to Verifier, used in tests.
type Func func(ctx context.Context, pin, biometric string) (types.Verdict, error)

func (f Func) Verify(ctx context.Context, pin, biometric string) (types.Verdict, error) {
	return f(ctx, pin, biometric)
}
