// Interactive console for developing displays without touch screen.
package cli

import (
	"context"
	"os"

	prompt "github.com/c-bata/go-prompt"
	"github.com/juju/errors"
	"github.com/temoto/kiosk/cmd/kiosk/subcmd"
	"github.com/temoto/kiosk/helpers/cli"
	"github.com/temoto/kiosk/internal/state"
	"github.com/temoto/kiosk/internal/ui"
)

var Mod = subcmd.Mod{Name: "cli", Desc: "run UI controlled by console commands", Main: Main}

func Main(ctx context.Context, config *state.Config) error {
	g := state.GetGlobal(ctx)
	if config.Hardware.Input.Terminal.Enable {
		g.Log.Infof("cli owns stdin, hardware.input.terminal disabled")
		config.Hardware.Input.Terminal.Enable = false
	}
	g.MustInit(ctx, config)
	g.Log.Debugf("config=%+v", g.Config)

	u := &ui.UI{}
	if err := u.Init(ctx); err != nil {
		return errors.Annotate(err, "ui Init()")
	}
	go u.Loop(ctx)

	c := NewConsole(g, u, os.Stdout)
	err := cli.MainLoop("kiosk", func(line string) {
		if err := c.Exec(ctx, line); err != nil {
			g.Log.Error(err)
		}
	}, cli.Complete(suggests(u)))

	g.StopWait(stopTimeout)
	g.Tele.Close()
	return errors.Annotate(err, "cli")
}

func suggests(u *ui.UI) []prompt.Suggest {
	ss := make([]prompt.Suggest, 0, len(commands)+8)
	for _, c := range commands {
		ss = append(ss, prompt.Suggest{Text: c.name, Description: c.desc})
	}
	for _, name := range u.Registry().Names() {
		ss = append(ss, prompt.Suggest{Text: name, Description: "display"})
	}
	return ss
}
