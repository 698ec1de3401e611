package state

import (
	"image"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/kiosk/hardware/display"
	"github.com/temoto/kiosk/hardware/input"
	"github.com/temoto/kiosk/hardware/reader"
	"github.com/temoto/kiosk/internal/types"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

type hardware struct {
	Display struct {
		once
		D *display.Display
	}
	Input *input.Dispatch

	CardReader struct {
		once
		Reader types.Reader
	}
	BiometricReader struct {
		once
		Reader types.Reader
	}

	terminal *input.TerminalSource
}

// CanvasSize is hardware.display size, falls back to window size.
func (g *Global) CanvasSize() image.Point {
	cfg := &g.Config.Hardware.Display
	size := image.Pt(cfg.Width, cfg.Height)
	if size.X <= 0 || size.Y <= 0 {
		size = image.Pt(g.Config.Window.Width, g.Config.Window.Height)
	}
	if size.X <= 0 || size.Y <= 0 {
		size = image.Pt(DefaultWidth, DefaultHeight)
	}
	return size
}

func (g *Global) Display() (*display.Display, error) {
	x := &g.Hardware.Display // short alias
	_ = x.do(func() error {
		if x.D != nil { // state-new testing mode
			return nil
		}
		cfg := &g.Config.Hardware.Display
		switch {
		case cfg.Framebuffer != "":
			x.D, x.err = display.NewFbSize(cfg.Framebuffer, image.Pt(cfg.Width, cfg.Height))
			return errors.Annotatef(x.err, "config: hardware.display.framebuffer=%s", cfg.Framebuffer)

		default:
			size := g.CanvasSize()
			g.Log.Infof("display framebuffer is not configured, using memory canvas %dx%d", size.X, size.Y)
			x.D = display.NewMock(size)
			return nil
		}
	})
	return x.D, x.err
}

func (g *Global) CardReader() (types.Reader, error) {
	x := &g.Hardware.CardReader
	_ = x.do(func() error {
		if x.Reader != nil { // state-new testing mode
			return nil
		}
		cfg := g.Config.Hardware.CardReader
		x.Reader, x.err = reader.New("card_reader", cfg, time.Duration(cfg.TimeoutMs)*time.Millisecond)
		return x.err
	})
	return x.Reader, x.err
}

func (g *Global) BiometricReader() (types.Reader, error) {
	x := &g.Hardware.BiometricReader
	_ = x.do(func() error {
		if x.Reader != nil { // state-new testing mode
			return nil
		}
		cfg := g.Config.Hardware.BiometricReader
		if cfg.Driver == "" && cfg.Value == "" {
			cfg.Value = types.BiometricMatch
		}
		x.Reader, x.err = reader.New("biometric_reader", cfg, time.Duration(cfg.TimeoutMs)*time.Millisecond)
		return x.err
	})
	return x.Reader, x.err
}

func (g *Global) initDisplay() error {
	d, err := g.Display()
	if d != nil {
		err = d.Clear()
	}
	return err
}

func (g *Global) initInput() error {
	g.Hardware.Input = input.NewDispatch(g.Log, g.Alive.StopChan())

	// support more input sources here
	sources := make([]input.Source, 0, 2)

	devConfig := &g.Config.Hardware.Input.DevInputEvent
	if !devConfig.Enable {
		g.Log.Infof("input=%s disabled", input.DevInputEventTag)
	} else {
		size := g.CanvasSize()
		scale := input.TouchScale{MaxX: devConfig.TouchMaxX, MaxY: devConfig.TouchMaxY, Width: size.X, Height: size.Y}
		src, err := input.NewDevInputEventSource(devConfig.Device, scale)
		if err != nil {
			return errors.Annotatef(err, "input=%s device=%s", input.DevInputEventTag, devConfig.Device)
		}
		sources = append(sources, src)
	}

	if !g.Config.Hardware.Input.Terminal.Enable {
		g.Log.Infof("input=%s disabled", input.TerminalTag)
	} else {
		src, err := input.NewTerminalSource(os.Stdin)
		if err != nil {
			return errors.Annotatef(err, "input=%s", input.TerminalTag)
		}
		g.Hardware.terminal = src
		sources = append(sources, src)
	}

	go g.Hardware.Input.Run(sources)
	return nil
}

func (g *Global) closeHardware() {
	if t := g.Hardware.terminal; t != nil {
		if err := t.Restore(); err != nil {
			g.Log.Error(errors.Annotate(err, "terminal restore"))
		}
	}
	if d := g.Hardware.Display.D; d != nil {
		if err := d.Close(); err != nil {
			g.Log.Error(errors.Annotate(err, "display close"))
		}
	}
}

type once struct {
	sync.Mutex
	called uint32 // atomic bool
	err    error
}

func (o *once) done() bool {
	return atomic.LoadUint32(&o.called) == 1
}

func (o *once) do(f func() error) error {
	if o.done() { // fast path
		return o.err
	}
	o.Lock()
	defer o.Unlock()
	if o.done() {
		return o.err
	}
	o.err = f()
	atomic.StoreUint32(&o.called, 1)
	return o.err
}
