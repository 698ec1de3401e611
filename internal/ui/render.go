package ui

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/juju/errors"
	"github.com/skip2/go-qrcode"
	"github.com/temoto/kiosk/hardware/display"
	"github.com/temoto/kiosk/helpers"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Widget is element instantiated for current display.
type Widget struct {
	Spec     *ElementSpec
	Bounds   image.Rectangle
	Text     string
	FontSize int
}

func (w *Widget) Interactive() bool { return w.Spec.Kind.Interactive() }

// Renderer owns active widgets and paints them on display canvas.
type Renderer struct {
	d       *display.Display
	fonts   *Fonts
	back    color.RGBA
	widgets []Widget
}

func NewRenderer(d *display.Display, fonts *Fonts, back color.RGBA) *Renderer {
	return &Renderer{d: d, fonts: fonts, back: back}
}

// Show replaces active widgets wholesale with ones built from spec, then repaints.
// Template and measure problems are returned but do not stop rendering.
func (self *Renderer) Show(spec *DisplaySpec, session *Session, input string) error {
	widgets, errs := self.build(spec, session, input)
	self.widgets = widgets
	if err := self.paint(); err != nil {
		errs = append(errs, err)
	}
	return helpers.FoldErrors(errs)
}

func (self *Renderer) Widgets() []Widget {
	return append([]Widget(nil), self.widgets...)
}

// Hit returns top-most interactive widget at x,y.
func (self *Renderer) Hit(x, y int) (Widget, bool) {
	p := image.Pt(x, y)
	for i := len(self.widgets) - 1; i >= 0; i-- {
		w := self.widgets[i]
		if w.Interactive() && p.In(w.Bounds) {
			return w, true
		}
	}
	return Widget{}, false
}

func (self *Renderer) build(spec *DisplaySpec, session *Session, input string) ([]Widget, []error) {
	size := self.d.Size()
	widgets := make([]Widget, 0, len(spec.Elems))
	var errs []error
	for i := range spec.Elems {
		e := &spec.Elems[i]
		w := Widget{
			Spec:   e,
			Bounds: Resolve(e.Geometry, size.X, size.Y),
		}
		text, err := session.ResolveText(e.Text, input)
		if err != nil {
			errs = append(errs, errors.Annotatef(err, "display=%s elem[%d]", spec.Name, i))
		}
		w.Text = text
		if e.Kind != ElemQR {
			w.FontSize = FontSize(e.FontSize, w.Text, func(size int) int {
				n, err := self.fonts.Measure(e.FontFamily, e.FontStyle, size, w.Text)
				if err != nil {
					errs = append(errs, err)
				}
				return n
			}, w.Bounds.Size())
		}
		widgets = append(widgets, w)
	}
	return widgets, errs
}

func (self *Renderer) paint() error {
	canvas := self.d.Canvas()
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(self.back), image.Point{}, draw.Src)
	var errs []error
	for i := range self.widgets {
		w := &self.widgets[i]
		bg := self.back
		if w.Spec.Bg.A != 0 {
			bg = w.Spec.Bg
			self.d.Fill(w.Bounds, bg)
		}
		if w.Text == "" {
			continue
		}
		var err error
		if w.Spec.Kind == ElemQR {
			err = self.d.QR(w.Bounds, w.Text, false, qrcode.Medium, w.Spec.Fg, bg)
		} else {
			err = self.drawText(canvas, w)
		}
		if err != nil {
			errs = append(errs, errors.Annotatef(err, "paint %s text=%q", w.Spec.Kind, w.Text))
		}
	}
	if err := self.d.Flush(); err != nil {
		errs = append(errs, err)
	}
	return helpers.FoldErrors(errs)
}

// drawText centers single line in widget bounds, overflow is clipped.
func (self *Renderer) drawText(canvas *image.RGBA, w *Widget) error {
	sub, ok := canvas.SubImage(w.Bounds).(*image.RGBA)
	if !ok || sub.Rect.Empty() {
		return nil
	}
	face, err := self.fonts.Face(w.Spec.FontFamily, w.Spec.FontStyle, w.FontSize)
	if err != nil {
		return err
	}
	m := face.Metrics()
	width := font.MeasureString(face, w.Text)
	dot := fixed.Point26_6{
		X: fixed.I(w.Bounds.Min.X) + (fixed.I(w.Bounds.Dx())-width)/2,
		Y: fixed.I(w.Bounds.Min.Y) + (fixed.I(w.Bounds.Dy())+m.Ascent-m.Descent)/2,
	}
	drawer := font.Drawer{Dst: sub, Src: image.NewUniform(w.Spec.Fg), Face: face, Dot: dot}
	drawer.DrawString(w.Text)
	return nil
}
