// Package display keeps RGBA canvas and pushes it to framebuffer.
package display

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"
	"sync/atomic"

	"github.com/juju/errors"
	"github.com/skip2/go-qrcode"
	"github.com/temoto/kiosk/hardware/display/framebuffer"
)

var black = color.RGBA{0, 0, 0, 0xff}

type Display struct {
	fb      *framebuffer.Framebuffer
	canvas  *image.RGBA
	size    image.Point
	flushes uint32
}

func NewFb(dev string) (*Display, error) {
	fb, err := framebuffer.New(dev)
	if err != nil {
		return nil, errors.Annotatef(err, "framebuffer device=%s", dev)
	}
	d := NewMock(fb.Size())
	d.fb = fb
	return d, nil
}

// NewFbSize uses canvas size independent of framebuffer resolution,
// extra pixels are clipped.
func NewFbSize(dev string, size image.Point) (*Display, error) {
	d, err := NewFb(dev)
	if err != nil {
		return nil, err
	}
	if size.X > 0 && size.Y > 0 {
		d.size = size
		d.canvas = image.NewRGBA(image.Rectangle{Max: size})
	}
	return d, nil
}

func NewMock(size image.Point) *Display {
	return &Display{
		canvas: image.NewRGBA(image.Rectangle{Max: size}),
		size:   size,
	}
}

func (d *Display) Close() error {
	if d.fb != nil {
		return d.fb.Close()
	}
	return nil
}

// Canvas is draw target, changes are visible after Flush.
func (d *Display) Canvas() *image.RGBA { return d.canvas }
func (d *Display) Size() image.Point   { return d.size }
func (d *Display) Flushes() uint32     { return atomic.LoadUint32(&d.flushes) }

func (d *Display) Clear() error {
	d.Fill(d.canvas.Rect, black)
	return d.Flush()
}

func (d *Display) Fill(r image.Rectangle, c color.Color) {
	draw.Draw(d.canvas, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func (d *Display) Flush() error {
	atomic.AddUint32(&d.flushes, 1)
	if d.fb != nil {
		if err := d.fb.Update(d.canvas); err != nil {
			return errors.Annotate(err, "framebuffer update")
		}
		return errors.Annotate(d.fb.Flush(), "framebuffer flush")
	}
	return nil
}

// QR draws code centered in r without Flush.
func (d *Display) QR(r image.Rectangle, text string, border bool, level qrcode.RecoveryLevel, fg, bg color.Color) error {
	qr, err := qrcode.New(text, level)
	if err != nil {
		return errors.Annotate(err, "QR")
	}
	qr.DisableBorder = !border
	if fg != nil {
		qr.ForegroundColor = fg
	}
	if bg != nil {
		qr.BackgroundColor = bg
	}
	side := minInt(r.Dx(), r.Dy())
	img := qr.Image(side).(*image.Paletted)
	size := img.Bounds().Size()
	if size.X > r.Dx() || size.Y > r.Dy() {
		return errors.Errorf("QR image size=%s > box size=%s", size.String(), r.Size().String())
	}
	offset := r.Min.Add(image.Pt((r.Dx()-size.X)/2, (r.Dy()-size.Y)/2))
	d.palleted2(img, offset)
	return nil
}

func (d *Display) WritePNG(w io.Writer) error {
	return errors.Annotate(png.Encode(w, d.canvas), "png")
}

// String2 renders canvas as text, black is space, anything else is block.
func (d *Display) String2() string {
	b := strings.Builder{}
	b.Grow((d.size.X*2 + 1) * d.size.Y) // +1 for \n
	for y := 0; y < d.size.Y; y++ {
		for x := 0; x < d.size.X; x++ {
			c := d.canvas.RGBAAt(x, y)
			if c.R == 0 && c.G == 0 && c.B == 0 {
				b.WriteString("  ")
			} else {
				b.WriteString("██")
			}
		}
		b.WriteRune('\n')
	}
	return b.String()
}

func (d *Display) palleted2(img *image.Paletted, offset image.Point) {
	min, max := img.Bounds().Min, img.Bounds().Max
	bg := toRGBA(img.Palette[0])
	fg := toRGBA(img.Palette[1])
	for y := min.Y; y < max.Y; y++ {
		for x := min.X; x < max.X; x++ {
			palidx := img.Pix[img.PixOffset(x, y)]
			c := bg
			if palidx != 0 {
				c = fg
			}
			d.canvas.SetRGBA(offset.X+x-min.X, offset.Y+y-min.Y, c)
		}
	}
}

func minInt(i1, i2 int) int {
	if i1 <= i2 {
		return i1
	}
	return i2
}

func toRGBA(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}
