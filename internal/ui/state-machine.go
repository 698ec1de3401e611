package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/kiosk/hardware/input"
	"github.com/temoto/kiosk/hardware/reader"
	"github.com/temoto/kiosk/helpers"
	"github.com/temoto/kiosk/internal/types"
	ui_config "github.com/temoto/kiosk/internal/ui/config"
	tele_api "github.com/temoto/kiosk/tele"
)

// Mode is role of display in the state machine.
// Displays without role are ModeNone, they only render and follow links.
type Mode uint8

const (
	ModeNone Mode = iota
	ModeMain
	ModeCard
	ModePin
	ModeBiometric
	ModeChecking
	ModeServices
	ModeError
	ModeSelectAmount
	ModeReceipt
	ModeOffline
	ModeHardwareError
	modeCount
)

var modeNames = [modeCount]string{"None", "Main", "Card", "Pin", "Biometric", "Checking", "Services", "Error", "SelectAmount", "Receipt", "Offline", "HardwareError"}

func (m Mode) String() string {
	if m < modeCount {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// display entry side effects may chain, card -> pin
const maxTransitionHops = 8

type modeTable struct {
	names  [modeCount]string
	byName map[string]Mode
}

func newModeTable(c ui_config.Modes) modeTable {
	def := ui_config.DefaultModes
	pick := func(s, d string) string {
		if s != "" {
			return s
		}
		return d
	}
	t := modeTable{byName: make(map[string]Mode, modeCount)}
	t.names[ModeMain] = pick(c.Main, def.Main)
	t.names[ModeCard] = pick(c.Card, def.Card)
	t.names[ModePin] = pick(c.Pin, def.Pin)
	t.names[ModeBiometric] = pick(c.Biometric, def.Biometric)
	t.names[ModeChecking] = pick(c.Checking, def.Checking)
	t.names[ModeServices] = pick(c.Services, def.Services)
	t.names[ModeError] = pick(c.Error, def.Error)
	t.names[ModeSelectAmount] = pick(c.SelectAmount, def.SelectAmount)
	t.names[ModeReceipt] = pick(c.Receipt, def.Receipt)
	t.names[ModeOffline] = pick(c.Offline, def.Offline)
	t.names[ModeHardwareError] = pick(c.HardwareError, def.HardwareError)
	for m := ModeMain; m < modeCount; m++ {
		t.byName[t.names[m]] = m
	}
	return t
}

func (t *modeTable) mode(display string) Mode { return t.byName[display] }
func (t *modeTable) name(m Mode) string       { return t.names[m] }

// fallback returns first mode display present in registry.
func (self *UI) fallback(modes ...Mode) string {
	for _, m := range modes {
		if name := self.modes.name(m); self.registry.Has(name) {
			return name
		}
	}
	return ""
}

// validate checks that every display reachable by mode logic exists.
func (self *UI) validate() error {
	errs := make([]error, 0)
	r := self.registry
	if !r.Has(self.start) {
		errs = append(errs, types.ConfigErrorf("ui.start display=%s not found", self.start))
	}
	if self.config.KeyboardDisplay != "" && !r.Has(self.config.KeyboardDisplay) {
		errs = append(errs, types.ConfigErrorf("ui.keyboard_display=%s not found", self.config.KeyboardDisplay))
	}
	require := func(from Mode, targets ...string) {
		if !r.Has(self.modes.name(from)) {
			return
		}
		for _, t := range targets {
			if !r.Has(t) {
				errs = append(errs, types.ConfigErrorf("display=%s (mode %s) transition target=%s not found", self.modes.name(from), from, t))
			}
		}
	}
	m := &self.modes
	hwerror := self.fallback(ModeHardwareError, ModeError)
	if hwerror == "" {
		hwerror = m.name(ModeError)
	}
	require(ModeCard, m.name(ModePin), hwerror)
	require(ModePin, self.pinNext)
	require(ModeBiometric, m.name(ModeChecking), hwerror)
	require(ModeChecking, m.name(ModeServices), m.name(ModeError))
	require(ModeSelectAmount, m.name(ModeReceipt))

	cardName := m.name(ModeCard)
	if !r.Has(cardName) {
		for _, name := range r.Names() {
			d, _ := r.Get(name)
			for _, token := range d.Tokens() {
				if token == input.TokenReject {
					errs = append(errs, types.ConfigErrorf("display=%s input=%s requires display=%s", name, token, cardName))
				}
			}
		}
	}
	return helpers.FoldErrors(errs)
}

// transition runs entry side effects along the chain, then makes
// the final display active and renders it.
// On error active display and checking delay stay unchanged.
func (self *UI) transition(ctx context.Context, name string) error {
	prevCheckingAt := self.checkingAt
	var spec *DisplaySpec
	for hop := 0; ; hop++ {
		if hop >= maxTransitionHops {
			self.checkingAt = prevCheckingAt
			return types.ConfigErrorf("display transition loop at=%s", name)
		}
		var err error
		if spec, err = self.registry.Get(name); err != nil {
			self.checkingAt = prevCheckingAt
			return err
		}
		self.log.Debugf("ui enter %s mode=%s", spec.Name, self.modes.mode(spec.Name))
		self.checkingAt = time.Time{}
		next := self.enter(ctx, spec.Name)
		if next == "" {
			break
		}
		name = next
	}
	self.active = spec
	self.cancelPending = false
	self.updateKeyboard()
	self.render()
	return nil
}

// navigate logs transition error, current display stays.
func (self *UI) navigate(ctx context.Context, name string) {
	if err := self.transition(ctx, name); err != nil {
		self.g.Error(errors.Annotatef(err, "ui navigate from=%s to=%s", self.activeName(), name))
	}
}

// enter runs display entry side effect, returns next display or empty.
func (self *UI) enter(ctx context.Context, name string) string {
	if name == self.start {
		self.g.Tele.State(tele_api.State_Nominal)
	}
	switch self.modes.mode(name) {
	case ModeCard:
		self.g.Tele.State(tele_api.State_Client)
		r, err := self.g.CardReader()
		if err == nil {
			var id string
			id, err = self.read(ctx, r, self.g.Config.Hardware.CardReader)
			self.session.CardId = id
		}
		if err != nil {
			return self.hardwareError(errors.Annotate(err, "card reader"))
		}
		self.log.Debugf("ui card=%s", self.session.CardId)
		return self.modes.name(ModePin)

	case ModeBiometric:
		r, err := self.g.BiometricReader()
		if err == nil {
			var result string
			result, err = self.read(ctx, r, self.g.Config.Hardware.BiometricReader)
			self.session.BiometricResult = result
		}
		if err != nil {
			return self.hardwareError(errors.Annotate(err, "biometric reader"))
		}
		self.log.Debugf("ui biometric=%s", self.session.BiometricResult)
		return self.modes.name(ModeChecking)

	case ModeChecking:
		self.checkingAt = time.Now().Add(self.checkingDelay)
	}
	return ""
}

func (self *UI) read(ctx context.Context, r types.Reader, c reader.Config) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, helpers.IntMillisecondDefault(c.TimeoutMs, reader.DefaultTimeout))
	defer cancel()
	return r.Read(ctx)
}

func (self *UI) hardwareError(err error) string {
	self.g.Error(err)
	self.g.Tele.StatModify(func(s *tele_api.Stat) { s.HardwareErrors++ })
	self.g.Tele.State(tele_api.State_Problem)
	self.session.Message = self.config.MsgHardwareError
	return self.fallback(ModeHardwareError, ModeError)
}

// handleToken is shared by input element activation and captured keys.
// CANCEL clears buffer and goes to card display, mode logic does not run.
// CLEAR only clears buffer. ENTER completes entry without being appended.
func (self *UI) handleToken(ctx context.Context, token string) {
	self.log.Debugf("ui token=%q display=%s buffer=%q", token, self.activeName(), self.buffer)
	switch token {
	case input.TokenReject:
		self.buffer = ""
		self.session.Message = ""
		self.navigate(ctx, self.modes.name(ModeCard))
		return
	case input.TokenClear:
		self.buffer = ""
		self.render()
		return
	}

	complete := token == input.TokenAccept
	if !complete {
		self.buffer += strings.TrimSpace(token)
	}

	switch self.modes.mode(self.activeName()) {
	case ModePin:
		if len(self.buffer) >= self.pinLength {
			self.session.EnteredPin = self.buffer[:self.pinLength]
			self.buffer = ""
			self.navigate(ctx, self.pinNext)
			return
		}

	case ModeChecking:
		self.decide(ctx)
		return

	case ModeSelectAmount:
		if complete || self.config.AmountInstant {
			self.completeAmount(ctx)
			return
		}
	}
	self.render()
}

// decide asks verifier. Denied and unreachable go to different displays.
func (self *UI) decide(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, self.verifyTimeout)
	defer cancel()
	verdict, err := self.g.Verifier.Verify(ctx, self.session.EnteredPin, self.session.BiometricResult)
	var next string
	switch {
	case err != nil:
		self.g.Error(errors.Annotate(err, "verify"))
		self.session.Message = self.config.MsgOffline
		next = self.fallback(ModeOffline, ModeError)
	case verdict == types.VerdictApproved:
		self.session.Message = ""
		next = self.modes.name(ModeServices)
	default:
		self.log.Infof("ui verify verdict=%s", verdict)
		self.session.Message = self.config.MsgDenied
		next = self.modes.name(ModeError)
	}
	self.navigate(ctx, next)
}

// completeAmount subtracts buffer from balance without sufficiency check.
func (self *UI) completeAmount(ctx context.Context) {
	s := self.buffer
	self.buffer = ""
	amount, err := strconv.Atoi(s)
	if err != nil {
		err = types.InputErrorf("amount=%q is not a number", s)
		self.log.Infof("ui %v", err)
		self.g.Tele.StatModify(func(s *tele_api.Stat) { s.InputErrors++ })
		self.session.Message = self.config.MsgAmountInvalid
		self.render()
		return
	}

	now := time.Now()
	self.session.Balance -= amount
	self.session.UserAmount = amount
	self.session.Message = ""
	self.session.Receipt = fmt.Sprintf("WITHDRAW %d BALANCE %d CARD %s TIME %s",
		amount, self.session.Balance, self.session.CardId, now.Format(time.RFC3339))
	self.g.Tele.Transaction(tele_api.Transaction{
		Amount:  amount,
		Balance: self.session.Balance,
		CardId:  self.session.CardId,
		Time:    now.Unix(),
	})
	self.navigate(ctx, self.modes.name(ModeReceipt))
}
