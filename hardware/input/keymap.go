package input

import (
	"github.com/temoto/kiosk/internal/types"
)

const (
	TokenAccept = "ENTER"
	TokenReject = "CANCEL"
	TokenClear  = "CLEAR"
)

// Token converts key press into UI input token.
// Returns empty string for keys without meaning.
func Token(e types.InputEvent) string {
	if e.IsZero() || e.Pointer {
		return ""
	}
	if e.IsControl() {
		return controlTokens[e.Key-types.KeyAccept]
	}
	if e.Key < 0x20 || e.Key == 0x7f {
		return ""
	}
	return string(rune(e.Key))
}

// indexed by key - KeyAccept
var controlTokens = [...]string{TokenAccept, TokenReject, TokenClear}

// linux/input-event-codes.h
const (
	evKey = 0x01
	evAbs = 0x03

	absX = 0x00
	absY = 0x01

	btnTouch = 0x14a
)

// Digits row, keypad, ESC, BACKSPACE, ENTER, KPENTER, DELETE.
var linuxKeys = map[uint16]types.InputKey{
	1:   types.KeyReject,
	2:   '1',
	3:   '2',
	4:   '3',
	5:   '4',
	6:   '5',
	7:   '6',
	8:   '7',
	9:   '8',
	10:  '9',
	11:  '0',
	14:  types.KeyClear,
	28:  types.KeyAccept,
	55:  '*',
	71:  '7',
	72:  '8',
	73:  '9',
	75:  '4',
	76:  '5',
	77:  '6',
	79:  '1',
	80:  '2',
	81:  '3',
	82:  '0',
	83:  '.',
	96:  types.KeyAccept,
	111: types.KeyClear,
}

// LinuxKey maps kernel key code to InputKey, 0 if unknown.
func LinuxKey(code uint16) types.InputKey {
	return linuxKeys[code]
}

// TerminalKey maps raw terminal byte to InputKey, 0 if unknown.
func TerminalKey(b byte) types.InputKey {
	switch b {
	case '\r', '\n':
		return types.KeyAccept
	case 0x1b:
		return types.KeyReject
	case 0x08, 0x7f:
		return types.KeyClear
	}
	if b < 0x20 || b > 0x7e {
		return 0
	}
	return types.InputKey(b)
}
