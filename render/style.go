package render

import (
	"fmt"
	"image/color"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/porticus-lab/go-json-canvas/element"
)

// Defaults shared by both renderers. They follow the browser's user-agent
// defaults the front-end relies on.
const (
	defaultFontSize   = 16.0
	tableFontSize     = 14.0
	lineHeightFactor  = 1.2
	captionHeight     = 24.0
	captionFontSize   = 12.0
	cellPadding       = 8.0
	defaultTextWidth  = 50.0
	defaultTextHeight = 20.0
)

// Palette used for table chrome and placeholders.
var (
	colorCaption     = color.NRGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorCaptionText = color.NRGBA{0x37, 0x41, 0x51, 0xff}
	colorRule        = color.NRGBA{0xe5, 0xe7, 0xeb, 0xff}
	colorMuted       = color.NRGBA{0x6b, 0x72, 0x80, 0xff}
	colorPlaceholder = color.NRGBA{0xd1, 0xd5, 0xdb, 0xff}
)

var namedColors = map[string]color.NRGBA{
	"black":       {0, 0, 0, 0xff},
	"white":       {0xff, 0xff, 0xff, 0xff},
	"red":         {0xff, 0, 0, 0xff},
	"green":       {0, 0x80, 0, 0xff},
	"blue":        {0, 0, 0xff, 0xff},
	"gray":        {0x80, 0x80, 0x80, 0xff},
	"grey":        {0x80, 0x80, 0x80, 0xff},
	"yellow":      {0xff, 0xff, 0, 0xff},
	"orange":      {0xff, 0xa5, 0, 0xff},
	"purple":      {0x80, 0, 0x80, 0xff},
	"transparent": {},
}

var rgbFunc = regexp.MustCompile(`^rgba?\(\s*([\d.]+)\s*,\s*([\d.]+)\s*,\s*([\d.]+)\s*(?:,\s*([\d.]+)\s*)?\)$`)

// parseColor parses a CSS color: #rgb, #rgba, #rrggbb, #rrggbbaa, rgb(),
// rgba() or a basic named color.
func parseColor(s string) (color.NRGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	if m := rgbFunc.FindStringSubmatch(s); m != nil {
		c := color.NRGBA{A: 0xff}
		for i, dst := range []*uint8{&c.R, &c.G, &c.B} {
			v, _ := strconv.ParseFloat(m[i+1], 64)
			*dst = uint8(math.Min(255, v))
		}
		if m[4] != "" {
			a, _ := strconv.ParseFloat(m[4], 64)
			c.A = uint8(math.Round(math.Min(1, a) * 255))
		}
		return c, true
	}
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, false
	}
	hex := s[1:]
	if len(hex) == 3 || len(hex) == 4 {
		var b strings.Builder
		for _, r := range hex {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		hex = b.String()
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}

func colorOr(s string, def color.NRGBA) color.NRGBA {
	if c, ok := parseColor(s); ok {
		return c
	}
	return def
}

// parseLength parses a CSS length in px, pt or em (relative to the default
// font size). A bare number is taken as pixels.
func parseLength(s string, def float64) float64 {
	s = strings.ToLower(strings.TrimSpace(s))
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
	case strings.HasSuffix(s, "pt"):
		s, mult = strings.TrimSuffix(s, "pt"), 96.0/72.0
	case strings.HasSuffix(s, "rem"):
		s, mult = strings.TrimSuffix(s, "rem"), defaultFontSize
	case strings.HasSuffix(s, "em"):
		s, mult = strings.TrimSuffix(s, "em"), defaultFontSize
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return def
	}
	return v * mult
}

// border is a parsed CSS border shorthand.
type border struct {
	Width float64
	Style string // solid, dashed or dotted
	Color color.NRGBA
}

func (b border) visible() bool {
	return b.Width > 0 && b.Color.A > 0
}

// parseBorder parses "1px solid #ccc" in any token order.
func parseBorder(s string) border {
	b := border{Style: "solid", Color: color.NRGBA{A: 0xff}}
	s = strings.TrimSpace(s)
	if s == "" || s == "none" || s == "0" {
		return border{}
	}
	hasWidth := false
	for _, tok := range splitOutsideParens(s) {
		switch tok {
		case "solid", "dashed", "dotted", "double":
			b.Style = tok
			continue
		case "none", "hidden":
			return border{}
		case "thin":
			b.Width, hasWidth = 1, true
			continue
		case "medium":
			b.Width, hasWidth = 3, true
			continue
		case "thick":
			b.Width, hasWidth = 5, true
			continue
		}
		if c, ok := parseColor(tok); ok {
			b.Color = c
			continue
		}
		if w := parseLength(tok, -1); w >= 0 {
			b.Width, hasWidth = w, true
		}
	}
	if !hasWidth {
		b.Width = 3
	}
	if b.Style == "double" {
		b.Style = "solid"
	}
	return b
}

// splitOutsideParens splits on spaces that are not inside rgb(...).
func splitOutsideParens(s string) []string {
	var out []string
	depth, start := 0, -1
	for i, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth--
		case r == ' ' && depth == 0:
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

// fontSpec describes the face an element's text is drawn with.
type fontSpec struct {
	Mono   bool
	Bold   bool
	Italic bool
	Size   float64 // pixels
}

func fontOf(s element.Style, defSize float64) fontSpec {
	family := strings.ToLower(s.Get(element.StyleFontFamily, ""))
	weight := strings.ToLower(s.Get(element.StyleFontWeight, "normal"))
	bold := weight == "bold" || weight == "bolder"
	if n, err := strconv.Atoi(weight); err == nil && n >= 600 {
		bold = true
	}
	st := strings.ToLower(s.Get(element.StyleFontStyle, "normal"))
	return fontSpec{
		Mono:   strings.Contains(family, "mono") || strings.Contains(family, "courier") || strings.Contains(family, "consolas"),
		Bold:   bold,
		Italic: st == "italic" || st == "oblique",
		Size:   parseLength(s.Get(element.StyleFontSize, ""), defSize),
	}
}

// padding returns the top, right, bottom and left insets of a CSS padding
// shorthand.
func padding(s string) [4]float64 {
	var p [4]float64
	parts := strings.Fields(s)
	vals := make([]float64, len(parts))
	for i, v := range parts {
		vals[i] = parseLength(v, 0)
	}
	switch len(vals) {
	case 1:
		p = [4]float64{vals[0], vals[0], vals[0], vals[0]}
	case 2:
		p = [4]float64{vals[0], vals[1], vals[0], vals[1]}
	case 3:
		p = [4]float64{vals[0], vals[1], vals[2], vals[1]}
	case 4:
		p = [4]float64{vals[0], vals[1], vals[2], vals[3]}
	}
	return p
}

var safeCSSValue = regexp.MustCompile(`^[a-zA-Z0-9#.,%\s()'"-]+$`)

// cssDecl returns the CSS declaration for a recognized style property, or
// false when the key is unknown or the value could break out of the
// declaration.
func cssDecl(key, value string) (string, bool) {
	if !element.Recognized(key) {
		return "", false
	}
	value = strings.TrimSpace(value)
	lower := strings.ToLower(value)
	if value == "" || !safeCSSValue.MatchString(value) ||
		strings.Contains(lower, "expression") || strings.Contains(lower, "url") {
		return "", false
	}
	return fmt.Sprintf("%s:%s", kebab(key), value), true
}

// kebab converts a camelCase property name to its CSS form.
func kebab(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
