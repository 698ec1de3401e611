// Sorry, workaround to import cycles.
package state_new

import (
	"context"
	"os"
	"testing"

	"github.com/temoto/alive/v2"
	"github.com/temoto/kiosk/internal/state"
	"github.com/temoto/kiosk/internal/tele"
	"github.com/temoto/kiosk/log2"
	tele_api "github.com/temoto/kiosk/tele"
)

func NewContext(log *log2.Log, teler tele_api.Teler) (context.Context, *state.Global) {
	if log == nil {
		panic("code error NewContext() log=nil")
	}
	if teler == nil {
		teler = tele.New()
	}

	g := &state.Global{
		Alive: alive.NewAlive(),
		Log:   log,
		Tele:  teler,
	}
	ctx := context.Background()
	ctx = context.WithValue(ctx, log2.ContextKey, log)
	ctx = context.WithValue(ctx, state.ContextKey, g)

	return ctx, g
}

// NewTestContext uses memory canvas, stub tele and config from confString.
// Readers and verifier come from config unless test sets them before Init
// via NewTestContextWith.
func NewTestContext(t testing.TB, buildVersion string, confString string) (context.Context, *state.Global) {
	return NewTestContextWith(t, buildVersion, confString, nil)
}

func NewTestContextWith(t testing.TB, buildVersion string, confString string, prepare func(*state.Global)) (context.Context, *state.Global) {
	fs := state.NewMockFullReader(map[string]string{
		"test-inline": confString,
	})

	var log *log2.Log
	if os.Getenv("kiosk_test_log_stderr") == "1" {
		log = log2.NewStderr(log2.LDebug) // useful with panics
	} else {
		log = log2.NewTest(t, log2.LDebug)
	}
	log.SetFlags(log2.LTestFlags)
	ctx, g := NewContext(log, tele_api.Noop{})
	g.BuildVersion = buildVersion
	if prepare != nil {
		prepare(g)
	}
	g.MustInit(ctx, state.MustReadConfig(log, fs, "test-inline"))
	t.Cleanup(g.Stop)

	return ctx, g
}
