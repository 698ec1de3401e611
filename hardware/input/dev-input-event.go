package input

import (
	"io"
	"os"

	"github.com/temoto/inputevent-go"
	"github.com/temoto/kiosk/internal/types"
)

const DevInputEventTag = "dev-input-event"

// TouchScale maps absolute touch axis into canvas pixels.
// Zero Max disables scaling on that axis.
type TouchScale struct {
	MaxX, MaxY int
	Width      int
	Height     int
}

func (self TouchScale) apply(x, y int) (int, int) {
	if self.MaxX > 0 && self.Width > 0 {
		x = x * self.Width / self.MaxX
	}
	if self.MaxY > 0 && self.Height > 0 {
		y = y * self.Height / self.MaxY
	}
	return x, y
}

type DevInputEventSource struct {
	f     io.ReadCloser
	scale TouchScale
	x, y  int
}

// compile-time interface compliance test
var _ Source = new(DevInputEventSource)

func (self *DevInputEventSource) String() string { return DevInputEventTag }

func NewDevInputEventSource(device string, scale TouchScale) (*DevInputEventSource, error) {
	f, err := os.Open(device)
	if err != nil {
		return nil, err
	}
	return NewDevInputEventReader(f, scale), nil
}

func NewDevInputEventReader(r io.ReadCloser, scale TouchScale) *DevInputEventSource {
	return &DevInputEventSource{f: r, scale: scale}
}

func (self *DevInputEventSource) Close() error { return self.f.Close() }

// Read returns key release or touch release as pointer event.
func (self *DevInputEventSource) Read() (types.InputEvent, error) {
	for {
		ie, err := inputevent.ReadOne(self.f)
		if err != nil {
			return types.InputEvent{}, err
		}
		switch ie.Type {
		case evAbs:
			switch ie.Code {
			case absX:
				self.x = int(ie.Value)
			case absY:
				self.y = int(ie.Value)
			}

		case evKey:
			up := ie.Value == int32(inputevent.KeyStateUp)
			if ie.Code == btnTouch {
				if !up {
					continue
				}
				x, y := self.scale.apply(self.x, self.y)
				return types.InputEvent{Source: DevInputEventTag, Pointer: true, X: x, Y: y}, nil
			}
			key := LinuxKey(ie.Code)
			if key == 0 || !up {
				continue
			}
			return types.InputEvent{Source: DevInputEventTag, Key: key, Up: true}, nil
		}
	}
}
