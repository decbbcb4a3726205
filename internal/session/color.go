package session

type Color string

const (
	// ColorUnset marks a seat that has not bound a display color yet.
	ColorUnset    Color = "#ffffff"
	ColorObserver Color = "#888888"

	ColorRed    Color = "#e6194b"
	ColorGreen  Color = "#3cb44b"
	ColorBlue   Color = "#4363d8"
	ColorYellow Color = "#ffe119"
	ColorPurple Color = "#911eb4"
	ColorOrange Color = "#f58231"
)

// Palette is the closed set of colors a seat may bind.
var Palette = []Color{ColorRed, ColorGreen, ColorBlue, ColorYellow, ColorPurple, ColorOrange}

func (c Color) Valid() bool {
	for _, p := range Palette {
		if c == p {
			return true
		}
	}
	return false
}
