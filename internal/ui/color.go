package ui

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/temoto/kiosk/internal/types"
)

// java.awt.Color constant names, legacy window documents use them.
var namedColors = map[string]color.RGBA{
	"black":     {0, 0, 0, 0xff},
	"blue":      {0, 0, 0xff, 0xff},
	"cyan":      {0, 0xff, 0xff, 0xff},
	"darkgray":  {0x40, 0x40, 0x40, 0xff},
	"gray":      {0x80, 0x80, 0x80, 0xff},
	"green":     {0, 0xff, 0, 0xff},
	"lightgray": {0xc0, 0xc0, 0xc0, 0xff},
	"magenta":   {0xff, 0, 0xff, 0xff},
	"orange":    {0xff, 0xc8, 0, 0xff},
	"pink":      {0xff, 0xaf, 0xaf, 0xff},
	"red":       {0xff, 0, 0, 0xff},
	"white":     {0xff, 0xff, 0xff, 0xff},
	"yellow":    {0xff, 0xff, 0, 0xff},
}

// ParseColor accepts java colour name, #rgb, #rrggbb, 0xrrggbb or "r,g,b".
// Empty token returns def.
func ParseColor(token string, def color.RGBA) (color.RGBA, error) {
	s := strings.TrimSpace(token)
	if s == "" {
		return def, nil
	}
	key := strings.ToLower(strings.NewReplacer("_", "", " ", "").Replace(s))
	if c, ok := namedColors[key]; ok {
		return c, nil
	}
	if strings.HasPrefix(key, "0x") {
		s = "#" + s[2:]
	}
	if strings.HasPrefix(s, "#") {
		hc, err := colorful.Hex(strings.ToLower(s))
		if err != nil {
			return def, types.ConfigErrorf("colour=%s %v", token, err)
		}
		r, g, b := hc.Clamped().RGB255()
		return color.RGBA{r, g, b, 0xff}, nil
	}
	if parts := strings.Split(s, ","); len(parts) == 3 {
		var rgb [3]uint8
		for i, p := range parts {
			n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return def, types.ConfigErrorf("colour=%s component=%s", token, p)
			}
			rgb[i] = uint8(n)
		}
		return color.RGBA{rgb[0], rgb[1], rgb[2], 0xff}, nil
	}
	return def, types.ConfigErrorf("unknown colour=%s", token)
}
