package ui_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/temoto/kiosk/internal/state"
	state_new "github.com/temoto/kiosk/internal/state/new"
	"github.com/temoto/kiosk/internal/types"
	"github.com/temoto/kiosk/internal/ui"
	tele_api "github.com/temoto/kiosk/tele"
)

const testWaitTimeout = 5 * time.Second

// Legacy screen set, names as in bundled window.json.
const testWindow = `
window {
	title = "ATM" width = 200 height = 100 back = "black"
	display "main" {
		elem "link" { left=0 top=0 width=1 height=1 text="Start" location="card" }
	}
	display "card" {
		elem "label" { width=1 height=1 text="Insert card" }
	}
	display "pin" {
		elem "label" { width=1 height=0.2 text="$inputMask$" font { size=-1 } }
		elem "input" { left=0 top=0.2 width=0.5 height=0.4 text="1" input="1" }
		elem "input" { left=0.5 top=0.2 width=0.5 height=0.4 text="Cancel" input="CANCEL" colour="red" }
		elem "input" { left=0 top=0.6 width=0.5 height=0.4 text="Clear" input="CLEAR" back="yellow" }
	}
	display "biometric" {
		elem "label" { width=1 height=1 text="Place finger" }
	}
	display "checking" {
		elem "label" { width=1 height=1 text="Checking..." }
	}
	display "services" {
		elem "link" { width=1 height=0.5 text="Withdraw" location="selectammount" }
		elem "label" { top=0.5 width=1 height=0.5 text="Balance $balance$" }
	}
	display "errormsg" {
		elem "label" { width=1 height=1 text="$message$" }
		elem "link" { width=1 height=1 text="" location="main" }
	}
	display "selectammount" {
		elem "label" { width=1 height=0.3 text="$input$ $message$" }
		elem "input" { top=0.3 width=0.5 height=0.7 text="2" input="2" }
		elem "input" { left=0.5 top=0.3 width=0.5 height=0.7 text="0" input="0" }
	}
	display "wouldyoulikeareciept" {
		elem "qr" { width=1 height=1 text="$receipt$" colour="black" back="white" }
	}
}
`

type tenv struct {
	ctx       context.Context
	g         *state.Global
	ui        *ui.UI
	snapshots chan ui.Snapshot
}

type teleSpy struct {
	tele_api.Teler
	txs chan tele_api.Transaction
}

func (self *teleSpy) Transaction(tx tele_api.Transaction) { self.txs <- tx }

func uiTestSetup(t testing.TB, config string, prepare func(*state.Global)) *tenv {
	ctx, g := state_new.NewTestContextWith(t, "test", config, prepare)
	env := &tenv{
		ctx:       ctx,
		g:         g,
		snapshots: make(chan ui.Snapshot, 64),
	}
	env.ui = &ui.UI{
		XXX_testHook: func(s ui.Snapshot) {
			t.Logf("testHook display=%s buffer=%q widgets=%d", s.Display, s.Buffer, len(s.Widgets))
			select {
			case env.snapshots <- s:
			default:
				t.Errorf("test snapshots overflow display=%s", s.Display)
			}
		},
	}
	require.NoError(t, env.ui.Init(ctx))
	return env
}

func (env *tenv) run(t testing.TB) {
	go env.ui.Loop(env.ctx)
	t.Cleanup(func() {
		env.g.Alive.Stop()
		env.g.Alive.Wait()
	})
}

// waitDisplay skips snapshots until display=name is rendered.
func (env *tenv) waitDisplay(t testing.TB, name string) ui.Snapshot {
	t.Helper()
	deadline := time.After(testWaitTimeout)
	for {
		select {
		case s := <-env.snapshots:
			if s.Display == name {
				return s
			}
		case <-deadline:
			t.Fatalf("timeout waiting for display=%s", name)
			return ui.Snapshot{}
		}
	}
}

// next returns next rendered snapshot.
func (env *tenv) next(t testing.TB) ui.Snapshot {
	t.Helper()
	select {
	case s := <-env.snapshots:
		return s
	case <-time.After(testWaitTimeout):
		t.Fatalf("timeout waiting for render")
		return ui.Snapshot{}
	}
}

func (env *tenv) token(s string) {
	env.ui.Post(types.Event{Kind: types.EventActivate, Token: s})
}

func (env *tenv) navigate(name string) {
	env.ui.Post(types.Event{Kind: types.EventNavigate, Target: name})
}

func (env *tenv) key(k types.InputKey) {
	env.g.Hardware.Input.Emit(types.InputEvent{Source: "test", Key: k, Up: true})
}

func (env *tenv) click(x, y int) {
	env.g.Hardware.Input.Emit(types.InputEvent{Source: "test", Pointer: true, X: x, Y: y})
}
