package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/juju/errors"
	"github.com/temoto/kiosk/cmd/kiosk/cli"
	"github.com/temoto/kiosk/cmd/kiosk/run"
	"github.com/temoto/kiosk/cmd/kiosk/subcmd"
	"github.com/temoto/kiosk/internal/state"
	state_new "github.com/temoto/kiosk/internal/state/new"
	"github.com/temoto/kiosk/log2"
)

var log = log2.NewStderr(log2.LDebug)
var BuildVersion string = "unknown" // set by ldflags -X main.BuildVersion

var modules = []subcmd.Mod{
	run.Mod,
	cli.Mod,
}

func main() {
	flagset := flag.NewFlagSet("kiosk", flag.ContinueOnError)
	flagConfig := flagset.String("config", "kiosk.hcl", "")
	flagVersion := flagset.Bool("version", false, "print build version and exit")
	flagset.Usage = func() {
		fmt.Fprintf(flagset.Output(), "Usage: %s [option...] [command]\n\nOptions:\n", os.Args[0])
		flagset.PrintDefaults()
		fmt.Fprintf(flagset.Output(), "\nCommands (default run):\n")
		for _, m := range modules {
			fmt.Fprintf(flagset.Output(), "  %-6s %s\n", m.Name, m.Desc)
		}
	}
	if err := flagset.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return
		}
		log.Fatal(err)
	}
	if *flagVersion {
		fmt.Printf("kiosk %s\n", BuildVersion)
		return
	}

	cmdName := "run"
	if flagset.NArg() > 0 {
		cmdName = flagset.Arg(0)
	}
	mod, err := subcmd.Parse(cmdName, modules)
	if err != nil {
		flagset.Usage()
		log.Fatal(err)
	}

	if subcmd.SdNotify(log, "start") {
		// we're under systemd, assume systemd journal logging, remove timestamp
		log.SetFlags(log2.LServiceFlags)
	} else {
		log.SetFlags(log2.LInteractiveFlags)
	}

	config := state.MustReadConfig(log, state.NewOsFullReader(), *flagConfig)
	ctx, g := state_new.NewContext(log, nil)
	g.BuildVersion = BuildVersion
	log.Debugf("kiosk version=%s command=%s", BuildVersion, mod.Name)
	if err := mod.Main(ctx, config); err != nil {
		g.Fatal(errors.Annotatef(err, "command=%s", mod.Name))
	}
}
