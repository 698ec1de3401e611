package ui

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/temoto/kiosk/internal/types"
)

const DefaultInitialBalance = 5000

// Session holds values shared across displays.
// Only state machine code mutates it.
type Session struct {
	EnteredPin      string
	BiometricResult string
	CardId          string
	Balance         int // may go negative
	UserAmount      int // last withdrawal
	Message         string
	Receipt         string
}

// template name -> accessor, input is current buffer
var templates = map[string]func(s *Session, input string) string{
	"userAmount":      func(s *Session, _ string) string { return strconv.Itoa(s.UserAmount) },
	"balance":         func(s *Session, _ string) string { return strconv.Itoa(s.Balance) },
	"cardId":          func(s *Session, _ string) string { return s.CardId },
	"biometricResult": func(s *Session, _ string) string { return s.BiometricResult },
	"message":         func(s *Session, _ string) string { return s.Message },
	"receipt":         func(s *Session, _ string) string { return s.Receipt },
	"input":           func(_ *Session, input string) string { return input },
	"inputMask":       func(_ *Session, input string) string { return strings.Repeat("*", len(input)) },
}

var reTemplate = regexp.MustCompile(`\$([A-Za-z][A-Za-z0-9_]*)\$`)

// ResolveText substitutes $name$ references. Unknown names are left as is
// and reported as InputError.
func (s *Session) ResolveText(text, input string) (string, error) {
	if !strings.Contains(text, "$") {
		return text, nil
	}
	var err error
	out := reTemplate.ReplaceAllStringFunc(text, func(ref string) string {
		name := ref[1 : len(ref)-1]
		if f, ok := templates[name]; ok {
			return f(s, input)
		}
		if err == nil {
			err = types.InputErrorf("unknown template=%s", ref)
		}
		return ref
	})
	return out, err
}
