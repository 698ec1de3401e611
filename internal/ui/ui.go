package ui

import (
	"context"
	"image/color"
	"io"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/kiosk/hardware/input"
	"github.com/temoto/kiosk/helpers"
	"github.com/temoto/kiosk/helpers/atomic_clock"
	"github.com/temoto/kiosk/internal/state"
	"github.com/temoto/kiosk/internal/types"
	ui_config "github.com/temoto/kiosk/internal/ui/config"
	"github.com/temoto/kiosk/log2"
	tele_api "github.com/temoto/kiosk/tele"
)

const (
	DefaultPinLength     = 4
	DefaultCheckingDelay = 3 * time.Second
	DefaultVerifyTimeout = 10 * time.Second

	idlePoll        = time.Minute
	keyboardSubName = "ui-keyboard"
)

var black = color.RGBA{0, 0, 0, 0xff}

type UI struct { //nolint:maligned
	g        *state.Global
	config   *ui_config.Config
	log      *log2.Log
	registry *Registry
	renderer *Renderer
	modes    modeTable

	start           string
	pinNext         string
	keyboardDisplay string
	pinLength       int
	checkingDelay   time.Duration
	resetTimeout    time.Duration
	verifyTimeout   time.Duration

	// mu guards engine state and session, held while one event is handled
	mu         sync.Mutex
	active     *DisplaySpec
	buffer     string
	session    Session
	checkingAt time.Time // zero when checking delay is not pending
	// CANCEL received during checking delay, applied after decision
	cancelPending bool
	running       bool
	keych      chan types.InputEvent
	keystop    chan struct{}

	eventch      chan types.Event
	pointerch    chan types.InputEvent
	lastActivity atomic_clock.Clock

	XXX_testHook func(Snapshot)
}

// Snapshot is copy of engine state after render.
type Snapshot struct {
	Display      string
	Mode         Mode
	Buffer       string
	Session      Session
	Widgets      []Widget
	Keyboard     bool
	Checking     bool
	LastActivity time.Time
}

func (self *UI) Init(ctx context.Context) error {
	self.g = state.GetGlobal(ctx)
	self.config = &self.g.Config.UI
	self.log = self.g.Log.Clone(log2.LInfo)
	if self.config.LogDebug {
		self.log.SetLevel(log2.LDebug)
	}

	registry, err := LoadRegistry(self.g.Config.Window.AllDisplays())
	if err != nil {
		return errors.Annotate(err, "ui display registry")
	}
	self.registry = registry
	self.modes = newModeTable(self.config.Modes)
	self.start = stringDefault(self.config.Start, self.modes.name(ModeMain))
	self.pinNext = stringDefault(self.config.PinNext, self.modes.name(ModeBiometric))
	self.keyboardDisplay = stringDefault(self.config.KeyboardDisplay, self.modes.name(ModePin))
	self.pinLength = self.config.PinLength
	if self.pinLength <= 0 {
		self.pinLength = DefaultPinLength
	}
	if err := self.validate(); err != nil {
		return errors.Annotate(err, "ui modes")
	}

	self.config.MsgAmountInvalid = stringDefault(self.config.MsgAmountInvalid, "Invalid amount")
	self.config.MsgHardwareError = stringDefault(self.config.MsgHardwareError, "Hardware error")
	self.config.MsgDenied = stringDefault(self.config.MsgDenied, "Access denied")
	self.config.MsgOffline = stringDefault(self.config.MsgOffline, "Service unavailable")

	d, err := self.g.Display()
	if err != nil {
		return errors.Annotate(err, "ui display")
	}
	if d == nil {
		return errors.Errorf("code error ui display=nil")
	}
	back, err := ParseColor(self.g.Config.Window.Back, black)
	if err != nil {
		return errors.Annotate(err, "window.back")
	}
	self.renderer = NewRenderer(d, NewFonts(self.config.FontDir), back)

	self.session.Balance = DefaultInitialBalance
	if self.config.InitialBalance != nil {
		self.session.Balance = *self.config.InitialBalance
	}
	self.checkingDelay = helpers.IntMillisecondDefault(self.config.CheckingDelayMs, DefaultCheckingDelay)
	self.resetTimeout = helpers.IntSecondDefault(self.config.ResetTimeoutSec, 0)
	self.verifyTimeout = helpers.IntMillisecondDefault(self.g.Config.Verify.TimeoutMs, DefaultVerifyTimeout)

	self.eventch = make(chan types.Event)
	self.pointerch = self.g.Hardware.Input.SubscribeChan("ui", self.g.Alive.StopChan())
	self.lastActivity.Touch()
	self.log.Debugf("ui displays=%v start=%s", self.registry.Names(), self.start)
	return nil
}

func (self *UI) Loop(ctx context.Context) {
	self.g.Alive.Add(1)
	defer self.g.Alive.Done()

	self.mu.Lock()
	err := self.transition(ctx, self.start)
	self.running = err == nil
	self.mu.Unlock()
	if err != nil {
		self.g.Error(errors.Annotate(err, "ui start"))
		return
	}
	for self.g.Alive.IsRunning() {
		self.mu.Lock()
		timeout := self.nextTimeout()
		keych := self.keych
		self.mu.Unlock()

		e := self.wait(timeout, keych)
		if e.Kind == types.EventStop {
			break
		}
		self.mu.Lock()
		self.handle(ctx, e)
		self.mu.Unlock()
	}

	self.mu.Lock()
	self.running = false
	self.detachKeyboard()
	self.mu.Unlock()
	self.log.Debugf("ui loop end")
}

// Show navigates to display, overriding pending checking delay.
// While Loop runs, navigation is executed by the loop goroutine.
// Unknown name returns ConfigError and keeps current display.
func (self *UI) Show(ctx context.Context, name string) error {
	self.mu.Lock()
	if !self.running {
		defer self.mu.Unlock()
		return self.transition(ctx, name)
	}
	self.mu.Unlock()

	replych := make(chan error, 1)
	self.Post(types.Event{Kind: types.EventNavigate, Target: name, Reply: replych})
	select {
	case err := <-replych:
		return err
	case <-self.g.Alive.StopChan():
		return errors.Errorf("ui show display=%s stopped", name)
	case <-ctx.Done():
		return errors.Annotatef(ctx.Err(), "ui show display=%s", name)
	}
}

// Post queues event into UI loop.
func (self *UI) Post(e types.Event) {
	select {
	case self.eventch <- e:
	case <-self.g.Alive.StopChan():
	}
}

func (self *UI) Snapshot() Snapshot {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.snapshot()
}

func (self *UI) Registry() *Registry { return self.registry }

func (self *UI) LastActivity() time.Time { return self.lastActivity.Time() }

func (self *UI) WritePNG(w io.Writer) error {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.renderer.d.WritePNG(w)
}

func (self *UI) wait(timeout time.Duration, keych <-chan types.InputEvent) types.Event {
	tmr := time.NewTimer(timeout)
	defer tmr.Stop()
	for {
		select {
		case e := <-self.eventch:
			if e.Kind != types.EventInvalid && e.Kind != types.EventTime {
				self.lastActivity.Touch()
			}
			return e

		case e := <-self.pointerch:
			if !e.Pointer {
				continue
			}
			self.lastActivity.Touch()
			return types.Event{Kind: types.EventPointer, Input: e}

		case e := <-keych: // nil unless keyboard display is active
			if e.Pointer {
				continue
			}
			self.lastActivity.Touch()
			return types.Event{Kind: types.EventInput, Input: e}

		case <-tmr.C:
			return types.Event{Kind: types.EventTime}

		case <-self.g.Alive.StopChan():
			return types.Event{Kind: types.EventStop}
		}
	}
}

// Caller must hold self.mu.
func (self *UI) handle(ctx context.Context, e types.Event) {
	if e.Reply != nil {
		e.Reply <- self.transition(ctx, e.Target)
		return
	}
	if !self.checkingAt.IsZero() {
		switch {
		case e.Kind == types.EventTime && !time.Now().Before(self.checkingAt):
			deferred := self.cancelPending
			self.checkingAt, self.cancelPending = time.Time{}, false
			self.handleToken(ctx, "")
			if deferred {
				self.handleToken(ctx, input.TokenReject)
			}
		case e.Kind == types.EventTime:
		case self.tokenOf(e) == input.TokenReject:
			self.cancelPending = true
			self.log.Debugf("ui checking, deferred %s", e.String())
		default:
			self.log.Debugf("ui checking, dropped %s", e.String())
		}
		return
	}

	switch e.Kind {
	case types.EventPointer:
		w, ok := self.renderer.Hit(e.Input.X, e.Input.Y)
		if !ok {
			self.log.Debugf("ui click x=%d y=%d no widget", e.Input.X, e.Input.Y)
			return
		}
		self.activate(ctx, w.Spec)

	case types.EventInput:
		if self.keych == nil {
			self.log.Debugf("ui keyboard detached display=%s, dropped %s", self.activeName(), e.String())
			return
		}
		if token := input.Token(e.Input); token != "" {
			self.handleToken(ctx, token)
		}

	case types.EventActivate:
		self.handleToken(ctx, e.Token)

	case types.EventNavigate:
		self.navigate(ctx, e.Target)

	case types.EventTime:
		if self.resetTimeout > 0 && self.activeName() != self.start &&
			self.lastActivity.Idle(time.Now()) >= self.resetTimeout {
			self.log.Infof("ui idle reset display=%s", self.activeName())
			self.buffer = ""
			self.session.Message = ""
			self.navigate(ctx, self.start)
		}

	default:
		self.g.Log.Errorf("code error ui unhandled event=%s", e.String())
	}
}

// tokenOf returns token event would feed into handleToken on active display.
func (self *UI) tokenOf(e types.Event) string {
	switch e.Kind {
	case types.EventActivate:
		return e.Token
	case types.EventInput:
		if self.keych != nil {
			return input.Token(e.Input)
		}
	case types.EventPointer:
		if w, ok := self.renderer.Hit(e.Input.X, e.Input.Y); ok && w.Spec.Kind == ElemInput {
			return w.Spec.Token
		}
	}
	return ""
}

func (self *UI) activate(ctx context.Context, e *ElementSpec) {
	switch e.Kind {
	case ElemInput:
		self.handleToken(ctx, e.Token)
	case ElemLink:
		self.navigate(ctx, e.Target)
	}
}

// Caller must hold self.mu.
func (self *UI) render() {
	err := self.renderer.Show(self.active, &self.session, self.buffer)
	if err != nil {
		if types.IsInputError(err) {
			self.log.Infof("ui render %v", err)
			self.g.Tele.StatModify(func(s *tele_api.Stat) { s.InputErrors++ })
		} else {
			self.g.Error(errors.Annotatef(err, "ui render display=%s", self.activeName()))
		}
	}
	if self.XXX_testHook != nil {
		self.XXX_testHook(self.snapshot())
	}
}

// Only keyboard display receives raw key events.
// Caller must hold self.mu.
func (self *UI) updateKeyboard() {
	want := self.activeName() == self.keyboardDisplay
	switch {
	case want && self.keych == nil:
		self.keystop = make(chan struct{})
		self.keych = self.g.Hardware.Input.SubscribeChan(keyboardSubName, self.keystop)
		self.log.Debugf("ui keyboard attached display=%s", self.activeName())
	case !want:
		self.detachKeyboard()
	}
}

func (self *UI) detachKeyboard() {
	if self.keych == nil {
		return
	}
	close(self.keystop)
	self.keych, self.keystop = nil, nil
	self.log.Debugf("ui keyboard detached")
}

// Caller must hold self.mu.
func (self *UI) nextTimeout() time.Duration {
	if !self.checkingAt.IsZero() {
		return maxDuration(time.Until(self.checkingAt), 0)
	}
	if self.resetTimeout > 0 && self.activeName() != self.start {
		return maxDuration(self.resetTimeout-self.lastActivity.Idle(time.Now()), 0)
	}
	return idlePoll
}

func (self *UI) activeName() string {
	if self.active == nil {
		return ""
	}
	return self.active.Name
}

func (self *UI) snapshot() Snapshot {
	return Snapshot{
		Display:      self.activeName(),
		Mode:         self.modes.mode(self.activeName()),
		Buffer:       self.buffer,
		Session:      self.session,
		Widgets:      self.renderer.Widgets(),
		Keyboard:     self.keych != nil,
		Checking:     !self.checkingAt.IsZero(),
		LastActivity: self.lastActivity.Time(),
	}
}

func stringDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
