package element

// Recognized style properties. Keys use the camelCase names the browser
// front-end stores; renderers translate them to CSS.
const (
	StyleColor           = "color"
	StyleBackgroundColor = "backgroundColor"
	StyleFontFamily      = "fontFamily"
	StyleFontSize        = "fontSize"
	StyleFontWeight      = "fontWeight"
	StyleFontStyle       = "fontStyle"
	StyleTextAlign       = "textAlign"
	StylePadding         = "padding"
	StyleBorder          = "border"
	StyleBorderRadius    = "borderRadius"
)

// StyleKeys lists the recognized style properties in a stable order.
var StyleKeys = []string{
	StyleColor,
	StyleBackgroundColor,
	StyleFontFamily,
	StyleFontSize,
	StyleFontWeight,
	StyleFontStyle,
	StyleTextAlign,
	StylePadding,
	StyleBorder,
	StyleBorderRadius,
}

// Recognized reports whether key is a style property renderers understand.
func Recognized(key string) bool {
	for _, k := range StyleKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Style maps style properties to their string values.
type Style map[string]string

// Clone returns an independent copy of s. A nil style stays nil.
func (s Style) Clone() Style {
	if s == nil {
		return nil
	}
	out := make(Style, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge returns a new style holding s overlaid with patch. Keys present in
// patch win; keys absent from patch keep their value from s.
func (s Style) Merge(patch Style) Style {
	out := make(Style, len(s)+len(patch))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Get returns the value for key, or def when it is unset or empty.
func (s Style) Get(key, def string) string {
	if v, ok := s[key]; ok && v != "" {
		return v
	}
	return def
}
