package tele

import (
	"context"

	"github.com/temoto/kiosk/internal/types"
	"github.com/temoto/kiosk/log2"
	tele_config "github.com/temoto/kiosk/tele/config"
)

// Teler interface Telemetry client, kiosk side.
// Not for external public usage.
type Teler interface {
	Init(context.Context, *log2.Log, tele_config.Config) error
	Close()
	State(State)
	Error(error)
	StatModify(func(*Stat))
	Transaction(Transaction)
	// Verify asks remote bank, returns types.VerificationError when unreachable.
	Verify(ctx context.Context, pin, biometric string) (types.Verdict, error)
}
