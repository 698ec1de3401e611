package ui

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/kiosk/hardware/display"
	"github.com/temoto/kiosk/internal/types"
	ui_config "github.com/temoto/kiosk/internal/ui/config"
)

func testRenderer(t testing.TB, displays ...ui_config.Display) (*Renderer, *Registry, *display.Display) {
	r, err := LoadRegistry(displays)
	require.NoError(t, err)
	d := display.NewMock(image.Pt(100, 50))
	return NewRenderer(d, NewFonts(""), color.RGBA{0, 0, 0x40, 0xff}), r, d
}

func TestRendererShow(t *testing.T) {
	t.Parallel()

	green := color.RGBA{0, 0xff, 0, 0xff}
	rr, reg, d := testRenderer(t,
		ui_config.Display{Name: "a", Elems: []ui_config.Elem{
			{Type: "label", Width: 1, Height: 1, Text: "$balance$"},
			{Type: "input", Width: 0.5, Height: 0.5, Text: "1", Input: "1", Back: "green"},
			{Type: "link", Width: 0.5, Height: 0.5, Text: "go", Location: "b", Font: ui_config.Font{Size: -1}},
		}},
		ui_config.Display{Name: "b"},
	)
	a, _ := reg.Get("a")
	s := &Session{Balance: 42}
	require.NoError(t, rr.Show(a, s, ""))
	ws := rr.Widgets()
	require.Len(t, ws, 3)
	assert.Equal(t, "42", ws[0].Text)
	assert.Equal(t, ReferenceSize, ws[0].FontSize)
	assert.Equal(t, image.Rect(0, 0, 50, 25), ws[1].Bounds)
	assert.True(t, ws[2].FontSize > ReferenceSize, "auto-fit size=%d", ws[2].FontSize)
	assert.LessOrEqual(t, ws[2].FontSize, 25)
	assert.Equal(t, uint32(1), d.Flushes())

	// element background, window background outside widgets
	assert.Equal(t, green, d.Canvas().RGBAAt(49, 24))
	assert.Equal(t, color.RGBA{0, 0, 0x40, 0xff}, d.Canvas().RGBAAt(99, 49))

	// top-most interactive wins, label is not interactive
	w, ok := rr.Hit(10, 10)
	require.True(t, ok)
	assert.Equal(t, ElemLink, w.Spec.Kind)
	_, ok = rr.Hit(80, 40)
	assert.False(t, ok)

	b, _ := reg.Get("b")
	require.NoError(t, rr.Show(b, s, ""))
	assert.Len(t, rr.Widgets(), 0)
	_, ok = rr.Hit(10, 10)
	assert.False(t, ok)
}

func TestRendererTemplateError(t *testing.T) {
	t.Parallel()

	rr, reg, _ := testRenderer(t, ui_config.Display{Name: "a", Elems: []ui_config.Elem{
		{Type: "label", Width: 1, Height: 1, Text: "$bogus$"},
	}})
	a, _ := reg.Get("a")
	err := rr.Show(a, &Session{}, "")
	require.Error(t, err)
	assert.True(t, types.IsInputError(err))
	assert.Equal(t, "$bogus$", rr.Widgets()[0].Text)
}

func TestRendererQR(t *testing.T) {
	t.Parallel()

	rr, reg, d := testRenderer(t, ui_config.Display{Name: "a", Elems: []ui_config.Elem{
		{Type: "qr", Left: 0.5, Width: 0.5, Height: 1, Text: "$balance$", Colour: "black", Back: "white"},
	}})
	a, _ := reg.Get("a")
	require.NoError(t, rr.Show(a, &Session{Balance: 5000}, ""))
	assert.Equal(t, 0, rr.Widgets()[0].FontSize)
	// left half is window background
	assert.Equal(t, color.RGBA{0, 0, 0x40, 0xff}, d.Canvas().RGBAAt(10, 10))
}
