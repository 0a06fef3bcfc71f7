// Package theme holds the brand palette shared by the templates and the generated stylesheet.
package theme

import (
	"fmt"
	"strings"
)

type Color string

const (
	Green  Color = "green"  // Augusta National Green
	White  Color = "white"
	Yellow Color = "yellow" // Masters Yellow
	Red    Color = "red"    // Masters Red
)

var hexValues = map[Color]string{
	Green:  "#006747",
	White:  "#ffffff",
	Yellow: "#ffcd00",
	Red:    "#e31837",
}

// Palette returns the named colours in display order
func Palette() []Color {
	return []Color{Green, White, Yellow, Red}
}

// Hex returns the colour value, or an empty string for an unknown name
func (c Color) Hex() string {
	return hexValues[c]
}

func (c Color) CSSVarName() string {
	return "--masters-" + string(c)
}

// CSSVar returns a var() reference usable inside CSS declarations
func (c Color) CSSVar() string {
	return fmt.Sprintf("var(%s)", c.CSSVarName())
}

// RootCSS renders the :root block declaring every palette variable
func RootCSS() string {
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, c := range Palette() {
		fmt.Fprintf(&b, "  %s: %s;\n", c.CSSVarName(), c.Hex())
	}
	b.WriteString("}\n")
	return b.String()
}
