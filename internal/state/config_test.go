package state

import (
	"context"
	"image"
	"strings"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/alive/v2"
	"github.com/temoto/kiosk/internal/bank"
	"github.com/temoto/kiosk/internal/types"
	"github.com/temoto/kiosk/log2"
	tele_api "github.com/temoto/kiosk/tele"
)

const testWindowJSON = `{"window": {
	"title": "ATM", "width": 320, "height": 240, "back": "black",
	"displays": [
		{"name": "card", "elems": [
			{"type": "label", "left": 0, "top": 0, "width": 1, "height": 0.2, "text": "Insert card"},
			{"type": "link", "left": 0, "top": 0.8, "width": 1, "height": 0.2, "text": "Go", "location": "pin"}
		]},
		{"name": "pin", "elems": [
			{"type": "button", "left": 0, "top": 0, "width": 0.3, "height": 0.2, "text": "1", "input": "1"}
		]}
	]
}}`

func TestReadConfig(t *testing.T) {
	t.Parallel()

	type Case struct {
		name      string
		input     string
		check     func(testing.TB, context.Context)
		expectErr string
	}
	cases := []Case{
		{"empty", "", nil, ""},

		{"ui-defaults", `ui { start = "card" }`,
			func(t testing.TB, ctx context.Context) {
				g := GetGlobal(ctx)
				assert.Equal(t, "card", g.Config.UI.Start)
				assert.Nil(t, g.Config.UI.InitialBalance)
				d, err := g.Display()
				require.NoError(t, err)
				assert.Equal(t, image.Pt(DefaultWidth, DefaultHeight), d.Size())
			}, ""},

		{"ui-initial-balance", `ui { initial_balance = 0 }`,
			func(t testing.TB, ctx context.Context) {
				g := GetGlobal(ctx)
				require.NotNil(t, g.Config.UI.InitialBalance)
				assert.Equal(t, 0, *g.Config.UI.InitialBalance)
			}, ""},

		{"include-normalize", `
ui { pin_length = 1 }
include "./empty" {}`,
			nil, ""},

		{"include-optional", `
include "pin-length-7" {}
include "non-exist" { optional = true }`,
			func(t testing.TB, ctx context.Context) {
				g := GetGlobal(ctx)
				assert.Equal(t, 7, g.Config.UI.PinLength)
			}, ""},

		{"include-overwrites", `
ui { pin_length = 1 }
include "pin-length-7" {}`,
			func(t testing.TB, ctx context.Context) {
				g := GetGlobal(ctx)
				assert.Equal(t, 7, g.Config.UI.PinLength)
			}, ""},

		{"window-hcl", `
window {
	width = 400 height = 300
	display "card" {
		elem "label" { left=0 top=0 width=1 height=0.5 text="Insert card" }
		elem "link" { left=0 top=0.5 width=1 height=0.5 text="Go" location="pin" }
	}
	display "pin" {
		elem "button" { left=0 top=0 width=0.3 height=0.2 text="1" input="1" font { name="Arial" style="BOLD" size=20 } }
	}
}`,
			func(t testing.TB, ctx context.Context) {
				g := GetGlobal(ctx)
				ds := g.Config.Window.AllDisplays()
				require.Len(t, ds, 2)
				assert.Equal(t, "card", ds[0].Name)
				require.Len(t, ds[0].Elems, 2)
				assert.Equal(t, "label", ds[0].Elems[0].Type)
				assert.Equal(t, "Insert card", ds[0].Elems[0].Text)
				assert.Equal(t, "link", ds[0].Elems[1].Type)
				assert.Equal(t, "pin", ds[0].Elems[1].Location)
				assert.Equal(t, 0.5, ds[0].Elems[1].Top)
				assert.Equal(t, "button", ds[1].Elems[0].Type)
				assert.Equal(t, "BOLD", ds[1].Elems[0].Font.Style)
				assert.Equal(t, 20, ds[1].Elems[0].Font.Size)
				d, err := g.Display()
				require.NoError(t, err)
				assert.Equal(t, image.Pt(400, 300), d.Size())
			}, ""},

		{"window-json", `window { source = "window.json" }`,
			func(t testing.TB, ctx context.Context) {
				g := GetGlobal(ctx)
				w := &g.Config.Window
				assert.Equal(t, "ATM", w.Title)
				assert.Equal(t, 320, w.Width)
				assert.Equal(t, "", w.Source)
				ds := w.AllDisplays()
				require.Len(t, ds, 2)
				assert.Equal(t, "pin", ds[1].Name)
				assert.Equal(t, "1", ds[1].Elems[0].Input)
			}, ""},

		{"window-json-and-hcl", `
window {
	title = "Override"
	source = "window.json"
	display "services" { elem "label" { text="Services" width=1 height=1 } }
}`,
			func(t testing.TB, ctx context.Context) {
				g := GetGlobal(ctx)
				w := &g.Config.Window
				assert.Equal(t, "Override", w.Title)
				ds := w.AllDisplays()
				require.Len(t, ds, 3)
				assert.Equal(t, "card", ds[0].Name)
				assert.Equal(t, "services", ds[2].Name)
			}, ""},

		{"verify-table", `verify { pin = "0000" }`,
			func(t testing.TB, ctx context.Context) {
				g := GetGlobal(ctx)
				v, err := g.Verifier.Verify(ctx, "0000", types.BiometricMatch)
				require.NoError(t, err)
				assert.Equal(t, types.VerdictApproved, v)
				assert.Equal(t, bank.DefaultBiometric, g.Verifier.(bank.Table).Biometric)
			}, ""},

		{"readers-static", `hardware {
	card_reader { value = "4000-0001" }
}`,
			func(t testing.TB, ctx context.Context) {
				g := GetGlobal(ctx)
				card, err := g.CardReader()
				require.NoError(t, err)
				s, err := card.Read(ctx)
				require.NoError(t, err)
				assert.Equal(t, "4000-0001", s)
				bio, err := g.BiometricReader()
				require.NoError(t, err)
				s, err = bio.Read(ctx)
				require.NoError(t, err)
				assert.Equal(t, types.BiometricMatch, s)
			}, ""},

		{"error-syntax", `hello`, nil, "key 'hello' expected start of object"},
		{"error-include-loop", `include "include-loop" {}`, nil, "config include loop: from=include-loop include=include-loop"},
		{"error-include-required", `include "non-exist" {}`, nil, "config required name=non-exist"},
		{"error-window-source", `window { source = "non-exist.json" }`, nil, "config window source=non-exist.json"},
		{"error-window-json", `window { source = "broken.json" }`, nil, "window object not found"},
		{"error-verify-driver", `verify { driver = "magic" }`, nil, "unknown verify.driver=magic"},
		{"error-verify-tele-disabled", `verify { driver = "tele" }`, nil, "verify driver=tele requires tele.enable=true"},
		{"error-reader-driver", `hardware { card_reader { driver = "usb" } }`, nil, "card_reader unknown driver=usb"},
	}
	mkCheck := func(c Case) func(*testing.T) {
		return func(t *testing.T) {
			log := log2.NewTest(t, log2.LDebug)

			// code duplicate from state_new.NewContext, import cycle
			g := &Global{
				Alive: alive.NewAlive(),
				Log:   log,
				Tele:  tele_api.Noop{},
			}
			defer g.Stop()
			ctx := context.Background()
			ctx = context.WithValue(ctx, log2.ContextKey, log)
			ctx = context.WithValue(ctx, ContextKey, g)

			fs := NewMockFullReader(map[string]string{
				"test-inline":  c.input,
				"empty":        "",
				"pin-length-7": "ui{pin_length=7}",
				"include-loop": `include "include-loop" {}`,
				"window.json":  testWindowJSON,
				"broken.json":  `{"displays": []}`,
			})
			cfg, err := ReadConfig(log, fs, "test-inline")
			if err == nil {
				err = g.Init(ctx, cfg)
			}
			if c.expectErr == "" {
				if err != nil {
					t.Fatalf("error expected=nil actual='%v'", errors.ErrorStack(err))
				}
				if c.check != nil {
					c.check(t, ctx)
				}
			} else {
				require.Error(t, err)
				if !strings.Contains(err.Error(), c.expectErr) {
					t.Fatalf("error expected='%s' actual='%v'", c.expectErr, err)
				}
			}
		}
	}
	for _, c := range cases {
		t.Run(c.name, mkCheck(c))
	}
}

func TestFunctionalBundled(t *testing.T) {
	// not Parallel
	t.Logf("this test needs OS open|read|stat access to file `../../kiosk.hcl`")

	log := log2.NewTest(t, log2.LDebug)
	c := MustReadConfig(log, NewOsFullReader(), "../../kiosk.hcl")
	assert.Len(t, c.Window.AllDisplays(), 11)
	assert.Equal(t, "ATM", c.Window.Title)
	assert.Equal(t, "", c.Window.Source)
	assert.Equal(t, "MATCH", c.Hardware.BiometricReader.Value)
}
