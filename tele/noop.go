package tele

import (
	"context"

	"github.com/temoto/kiosk/internal/types"
	"github.com/temoto/kiosk/log2"
	tele_config "github.com/temoto/kiosk/tele/config"
)

type Noop struct{}

var _ Teler = Noop{} // compile-time interface test

func (Noop) Init(context.Context, *log2.Log, tele_config.Config) error { return nil }

func (Noop) Close() {}

func (Noop) Error(error) {}

func (Noop) State(State) {}

func (Noop) StatModify(func(*Stat)) {}

func (Noop) Transaction(Transaction) {}

func (Noop) Verify(context.Context, string, string) (types.Verdict, error) {
	return types.VerdictInvalid, types.VerificationError{Err: ErrDisabled}
}
