package ui

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/juju/errors"
	"github.com/temoto/kiosk/helpers"
	"github.com/temoto/kiosk/internal/types"
	ui_config "github.com/temoto/kiosk/internal/ui/config"
)

type ElemKind uint8

const (
	ElemLabel ElemKind = iota
	ElemInput
	ElemLink
	ElemQR
)

var elemKindNames = [...]string{"label", "input", "link", "qr"}

func (k ElemKind) String() string {
	if int(k) < len(elemKindNames) {
		return elemKindNames[k]
	}
	return fmt.Sprintf("ElemKind(%d)", k)
}

func (k ElemKind) Interactive() bool { return k == ElemInput || k == ElemLink }

func parseElemKind(s string) (ElemKind, bool) {
	for i, name := range elemKindNames {
		if s == name {
			return ElemKind(i), true
		}
	}
	return 0, false
}

var (
	defaultForeground = color.RGBA{0xff, 0xff, 0xff, 0xff}
	transparent       = color.RGBA{}
)

type ElementSpec struct {
	Kind ElemKind
	Geometry
	Fg, Bg     color.RGBA // Bg.A=0 means no fill
	FontFamily string
	FontStyle  FontStyle
	FontSize   int // <0 auto-fit
	Text       string
	Token      string // input
	Target     string // link
}

type DisplaySpec struct {
	Name  string
	Elems []ElementSpec
}

// Registry is immutable after LoadRegistry.
type Registry struct {
	m     map[string]*DisplaySpec
	names []string
}

func LoadRegistry(displays []ui_config.Display) (*Registry, error) {
	r := &Registry{
		m:     make(map[string]*DisplaySpec, len(displays)),
		names: make([]string, 0, len(displays)),
	}
	errs := make([]error, 0)
	for i, dc := range displays {
		if dc.Name == "" {
			errs = append(errs, types.ConfigErrorf("display[%d] name is required", i))
			continue
		}
		if _, ok := r.m[dc.Name]; ok {
			errs = append(errs, types.ConfigErrorf("duplicate display name=%s", dc.Name))
			continue
		}
		d := &DisplaySpec{Name: dc.Name, Elems: make([]ElementSpec, 0, len(dc.Elems))}
		for j, ec := range dc.Elems {
			e, err := parseElem(ec)
			if err != nil {
				errs = append(errs, errors.Annotatef(err, "display=%s elem[%d]", dc.Name, j))
				continue
			}
			d.Elems = append(d.Elems, e)
		}
		r.m[d.Name] = d
		r.names = append(r.names, d.Name)
	}
	if err := helpers.FoldErrors(errs); err != nil {
		return nil, err
	}

	// link targets
	for _, name := range r.names {
		for j, e := range r.m[name].Elems {
			if e.Kind == ElemLink && !r.Has(e.Target) {
				errs = append(errs, types.ConfigErrorf("display=%s elem[%d] link location=%s not found", name, j, e.Target))
			}
		}
	}
	if err := helpers.FoldErrors(errs); err != nil {
		return nil, err
	}
	return r, nil
}

func parseElem(ec ui_config.Elem) (ElementSpec, error) {
	kind, ok := parseElemKind(strings.ToLower(strings.TrimSpace(ec.Type)))
	if !ok {
		return ElementSpec{}, types.ConfigErrorf("unknown element type=%q valid: %s", ec.Type, strings.Join(elemKindNames[:], ", "))
	}
	e := ElementSpec{
		Kind:       kind,
		Geometry:   Geometry{Left: ec.Left, Top: ec.Top, Width: ec.Width, Height: ec.Height},
		FontFamily: ec.Font.Name,
		FontStyle:  ParseFontStyle(ec.Font.Style),
		FontSize:   ec.Font.Size,
		Text:       ec.Text,
		Token:      ec.Input,
		Target:     ec.Location,
	}
	var err error
	if e.Fg, err = ParseColor(ec.Colour, defaultForeground); err != nil {
		return e, err
	}
	if e.Bg, err = ParseColor(ec.Back, transparent); err != nil {
		return e, err
	}
	switch kind {
	case ElemInput:
		if e.Token == "" {
			return e, types.ConfigErrorf("input element requires input token")
		}
	case ElemLink:
		if e.Target == "" {
			return e, types.ConfigErrorf("link element requires location")
		}
	}
	return e, nil
}

// Get returns ConfigError when name is not found.
func (self *Registry) Get(name string) (*DisplaySpec, error) {
	if d, ok := self.m[name]; ok {
		return d, nil
	}
	return nil, types.ConfigErrorf("display=%s not found", name)
}

func (self *Registry) Has(name string) bool {
	_, ok := self.m[name]
	return ok
}

// Names in declaration order.
func (self *Registry) Names() []string {
	return append([]string(nil), self.names...)
}

// Tokens lists input tokens declared on display.
func (d *DisplaySpec) Tokens() []string {
	ts := make([]string, 0, len(d.Elems))
	for _, e := range d.Elems {
		if e.Kind == ElemInput {
			ts = append(ts, e.Token)
		}
	}
	return ts
}
