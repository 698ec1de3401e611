package types

import (
	"fmt"
)

type EventKind uint8

const (
	EventInvalid EventKind = iota
	EventInput             // key press from keyboard capture
	EventPointer           // touch/click at X,Y
	EventActivate          // input element activated, Token set
	EventNavigate          // link element activated, Target set
	EventTime              // delay or idle timer
	EventStop
)

var eventKindNames = [...]string{"Invalid", "Input", "Pointer", "Activate", "Navigate", "Time", "Stop"}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", k)
}

type Event struct {
	Input  InputEvent
	Token  string
	Target string
	// Reply receives navigation result, nil for fire-and-forget events.
	Reply  chan<- error
	Kind   EventKind
}

func (e *Event) String() string {
	inner := ""
	switch e.Kind {
	case EventInput:
		inner = fmt.Sprintf(" source=%s key=%v up=%t", e.Input.Source, e.Input.Key, e.Input.Up)
	case EventPointer:
		inner = fmt.Sprintf(" source=%s x=%d y=%d", e.Input.Source, e.Input.X, e.Input.Y)
	case EventActivate:
		inner = fmt.Sprintf(" token=%q", e.Token)
	case EventNavigate:
		inner = fmt.Sprintf(" target=%s", e.Target)
	}
	return fmt.Sprintf("Event(%s%s)", e.Kind.String(), inner)
}

type InputKey uint16

// Keys above unicode BMP private area are control keys.
const (
	KeyAccept InputKey = 0xf000 + iota
	KeyReject
	KeyClear
)

type InputEvent struct {
	Source  string
	Key     InputKey
	Up      bool
	Pointer bool
	X, Y    int
}

func (e *InputEvent) IsZero() bool    { return e.Key == 0 && !e.Pointer }
func (e *InputEvent) IsControl() bool { return e.Key >= KeyAccept && e.Key <= KeyClear }
