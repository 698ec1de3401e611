// Package framebuffer writes RGBA canvas to linux /dev/fbN.
package framebuffer

import (
	"encoding/binary"
	"image"
	"image/color"
	"os"
	"unsafe"

	"github.com/juju/errors"
	"golang.org/x/sys/unix"
)

type Framebuffer struct {
	buf   []byte
	dev   *os.File
	finfo fixedScreenInfo
	vinfo variableScreenInfo
}

func New(dev string) (*Framebuffer, error) {
	devFile, err := os.OpenFile(dev, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return nil, errors.Annotate(err, "open")
	}
	fb := &Framebuffer{dev: devFile}
	fd := fb.dev.Fd()

	if err = ioctl(fd, getFixedScreenInfo, uintptr(unsafe.Pointer(&fb.finfo))); err != nil {
		fb.dev.Close()
		return nil, errors.Annotate(err, "getFixedScreenInfo")
	}

	if err = ioctl(fd, getVariableScreenInfo, uintptr(unsafe.Pointer(&fb.vinfo))); err != nil {
		fb.dev.Close()
		return nil, errors.Annotate(err, "getVariableScreenInfo")
	}

	lineLength := fb.finfo.Line_length
	if lineLength == 0 {
		lineLength = fb.vinfo.Xres * (fb.vinfo.Bits_per_pixel / 8)
	}
	fb.buf = make([]byte, lineLength*fb.vinfo.Yres)

	return fb, nil
}

func (fb *Framebuffer) Close() error {
	return fb.dev.Close()
}

func (fb *Framebuffer) Flush() error {
	_, err := fb.dev.WriteAt(fb.buf, 0)
	return err
}

func (fb *Framebuffer) Size() image.Point {
	return image.Point{X: int(fb.vinfo.Xres), Y: int(fb.vinfo.Yres)}
}

// Update encodes img into internal buffer, call Flush() to write to hardware.
// Pixels outside framebuffer resolution are clipped.
func (fb *Framebuffer) Update(img *image.RGBA) error {
	wordSize := int(fb.vinfo.Bits_per_pixel / 8)
	stride := int(fb.finfo.Line_length)
	if stride == 0 {
		stride = int(fb.vinfo.Xres) * wordSize
	}
	r := img.Bounds().Intersect(image.Rectangle{Max: fb.Size()})

	var encode func(b []byte, c color.RGBA)
	switch {
	case fb.vinfo.Bits_per_pixel == 16 && fb.vinfo.Red == rgb565.Red && fb.vinfo.Green == rgb565.Green && fb.vinfo.Blue == rgb565.Blue:
		encode = func(b []byte, c color.RGBA) { binary.LittleEndian.PutUint16(b, encode565(c)) }
	case fb.vinfo.Bits_per_pixel == 32:
		vinfo := fb.vinfo
		encode = func(b []byte, c color.RGBA) { binary.LittleEndian.PutUint32(b, encode32(&vinfo, c)) }
	default:
		return errors.NotSupportedf("color model bpp=%d", fb.vinfo.Bits_per_pixel)
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			offset := y*stride + x*wordSize
			encode(fb.buf[offset:], img.RGBAAt(x, y))
		}
	}
	return nil
}

var rgb565 = variableScreenInfo{
	Red:   bitField{Offset: 11, Length: 5, Right: 0},
	Green: bitField{Offset: 5, Length: 6, Right: 0},
	Blue:  bitField{Offset: 0, Length: 5, Right: 0},
}

func encode565(c color.RGBA) uint16 {
	return (uint16(c.R) & 0xf8 << 8) | (uint16(c.G) & 0xfc << 3) | (uint16(c.B) & 0xf8 >> 3)
}

func encode32(vinfo *variableScreenInfo, c color.RGBA) uint32 {
	return uint32(c.R)<<vinfo.Red.Offset |
		uint32(c.G)<<vinfo.Green.Offset |
		uint32(c.B)<<vinfo.Blue.Offset |
		uint32(c.A)<<vinfo.Transp.Offset
}

func ioctl(fd uintptr, cmd uintptr, data uintptr) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, cmd, data); errno != 0 {
		return os.NewSyscallError("ioctl", errno)
	}
	return nil
}
