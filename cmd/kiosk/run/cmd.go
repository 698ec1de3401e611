// Main, user facing mode of operation.
package run

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
	"github.com/temoto/kiosk/cmd/kiosk/subcmd"
	"github.com/temoto/kiosk/internal/state"
	"github.com/temoto/kiosk/internal/ui"
)

const stopTimeout = 5 * time.Second

var Mod = subcmd.Mod{Name: "run", Desc: "show displays on framebuffer, read touch and keyboard", Main: Main}

func Main(ctx context.Context, config *state.Config) error {
	g := state.GetGlobal(ctx)
	g.MustInit(ctx, config)
	g.Log.Debugf("config=%+v", g.Config)

	ui := ui.UI{}
	if err := ui.Init(ctx); err != nil {
		return errors.Annotate(err, "ui Init()")
	}

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		select {
		case s := <-sigch:
			g.Log.Infof("signal=%s stopping", s)
			g.Stop()
		case <-g.Alive.StopChan():
		}
	}()

	subcmd.SdNotify(g.Log, daemon.SdNotifyReady)
	g.Log.Debugf("kiosk init complete")

	ui.Loop(ctx)

	subcmd.SdNotify(g.Log, daemon.SdNotifyStopping)
	if !g.StopWait(stopTimeout) {
		g.Log.Errorf("stop timeout=%s", stopTimeout)
	}
	g.Tele.Close()
	return nil
}
