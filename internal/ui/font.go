package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/juju/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

type FontStyle uint8

const (
	FontPlain FontStyle = iota
	FontBold
	FontItalic
	FontBoldItalic
)

var fontStyleNames = [...]string{"PLAIN", "BOLD", "ITALIC", "BOLD+ITALIC"}

func (s FontStyle) String() string {
	if int(s) < len(fontStyleNames) {
		return fontStyleNames[s]
	}
	return fmt.Sprintf("FontStyle(%d)", s)
}

// ParseFontStyle is case insensitive, unknown or empty is plain.
func ParseFontStyle(s string) FontStyle {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BOLD":
		return FontBold
	case "ITALIC":
		return FontItalic
	case "BOLD+ITALIC", "BOLDITALIC", "BOLD_ITALIC":
		return FontBoldItalic
	}
	return FontPlain
}

var styleSuffix = [...]string{"", "-Bold", "-Italic", "-BoldItalic"}

var builtinSans = [...][]byte{goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF}
var builtinMono = [...][]byte{gomono.TTF, gomonobold.TTF, gomonoitalic.TTF, gomonobolditalic.TTF}

type faceKey struct {
	family string
	style  FontStyle
	size   int
}

// Fonts loads and caches faces. Family is looked up in Dir as
// <family><-Style>.ttf then <family>.ttf, otherwise Go fonts are used.
// Size is in pixels.
type Fonts struct {
	Dir string

	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

func NewFonts(dir string) *Fonts {
	return &Fonts{
		Dir:   dir,
		fonts: make(map[string]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

func (self *Fonts) Face(family string, style FontStyle, size int) (font.Face, error) {
	if size < 1 {
		size = 1
	}
	key := faceKey{family: family, style: style, size: size}
	self.mu.Lock()
	defer self.mu.Unlock()
	if f, ok := self.faces[key]; ok {
		return f, nil
	}
	otf, err := self.load(family, style)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, errors.Annotatef(err, "font family=%s style=%s size=%d", family, style, size)
	}
	self.faces[key] = face
	return face, nil
}

// Measure returns text advance width in pixels.
func (self *Fonts) Measure(family string, style FontStyle, size int, text string) (int, error) {
	face, err := self.Face(family, style, size)
	if err != nil {
		return 0, err
	}
	return font.MeasureString(face, text).Ceil(), nil
}

// Caller must hold self.mu.
func (self *Fonts) load(family string, style FontStyle) (*opentype.Font, error) {
	cacheKey := family + styleSuffix[style]
	if f, ok := self.fonts[cacheKey]; ok {
		return f, nil
	}

	var data []byte
	if self.Dir != "" && family != "" {
		for _, name := range []string{family + styleSuffix[style] + ".ttf", family + ".ttf"} {
			b, err := os.ReadFile(filepath.Join(self.Dir, name))
			if err == nil {
				data = b
				break
			}
			if !os.IsNotExist(err) {
				return nil, errors.Annotatef(err, "font file=%s", name)
			}
		}
	}
	if data == nil {
		if isMonoFamily(family) {
			data = builtinMono[style]
		} else {
			data = builtinSans[style]
		}
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, errors.Annotatef(err, "font parse family=%s style=%s", family, style)
	}
	self.fonts[cacheKey] = f
	return f, nil
}

func isMonoFamily(family string) bool {
	switch strings.ToLower(family) {
	case "mono", "monospace", "monospaced", "courier", "courier new":
		return true
	}
	return false
}
