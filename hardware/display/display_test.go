package display

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQR(t *testing.T) {
	t.Parallel()

	d := NewMock(image.Point{X: 37, Y: 37})
	require.NoError(t, d.Clear())
	assert.Equal(t, strings.Repeat(strings.Repeat("  ", d.size.X)+"\n", d.size.Y), d.String2())

	qrText := "t=20200211T1825&s=23.00&fn=9998887776665555&i=15&fp=0000000000&n=1"
	require.NoError(t, d.QR(d.canvas.Rect, qrText, false, qrcode.High, nil, nil))
	qr, err := qrcode.New(qrText, qrcode.High)
	require.NoError(t, err)
	qr.DisableBorder = true
	assert.Equal(t, qr.ToString(false), d.String2())

	require.NoError(t, d.Clear())
	assert.Equal(t, strings.Repeat(strings.Repeat("  ", d.size.X)+"\n", d.size.Y), d.String2())
	assert.Equal(t, uint32(2), d.Flushes())
}

func TestQRTooSmall(t *testing.T) {
	t.Parallel()

	d := NewMock(image.Point{X: 100, Y: 100})
	err := d.QR(image.Rect(10, 10, 20, 20), "receipt", true, qrcode.Medium, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QR image size")
}

func TestQROffset(t *testing.T) {
	t.Parallel()

	d := NewMock(image.Point{X: 200, Y: 100})
	red := color.RGBA{0xff, 0, 0, 0xff}
	require.NoError(t, d.QR(image.Rect(100, 0, 200, 100), "4800", true, qrcode.Medium, nil, red))
	// left half untouched
	assert.Equal(t, color.RGBA{}, d.canvas.RGBAAt(50, 50))
	// quiet zone is background
	assert.Equal(t, red, d.canvas.RGBAAt(101, 1))
}

func TestFillPNG(t *testing.T) {
	t.Parallel()

	d := NewMock(image.Point{X: 4, Y: 2})
	c := color.RGBA{0x10, 0x20, 0x30, 0xff}
	d.Fill(image.Rect(2, 0, 4, 2), c)
	assert.Equal(t, "    ████\n    ████\n", d.String2())

	var buf bytes.Buffer
	require.NoError(t, d.WritePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	r, g, b, _ := img.At(3, 1).RGBA()
	assert.Equal(t, []uint32{0x10, 0x20, 0x30}, []uint32{r >> 8, g >> 8, b >> 8})
}
