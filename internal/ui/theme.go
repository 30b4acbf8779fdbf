// Package ui renders the booth in a terminal and reads the participant's input.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Desert sunset palette with neon playa accents.
var (
	ColorDeepOrange   = lipgloss.Color("#FF6F00")
	ColorGold         = lipgloss.Color("#FFBF00")
	ColorCoral        = lipgloss.Color("#FF5555")
	ColorHotPink      = lipgloss.Color("#E63282")
	ColorElectricTeal = lipgloss.Color("#00FFCC")
	ColorPlayaPurple  = lipgloss.Color("#B464FF")
	ColorNightBlue    = lipgloss.Color("#50A0FF")
	ColorWarmSand     = lipgloss.Color("#D2B48C")
	ColorMutedSand    = lipgloss.Color("#8C785F")
	ColorWhite        = lipgloss.Color("#FFFFFF")
)

// RGB is one gradient stop.
type RGB struct {
	R, G, B int
}

// Gradients
var (
	GradientSunset = []RGB{{255, 85, 85}, {255, 111, 0}, {255, 191, 0}, {255, 111, 0}, {230, 50, 130}}
	GradientNeon   = []RGB{{0, 255, 204}, {80, 160, 255}, {180, 100, 255}, {255, 85, 85}}
	GradientFire   = []RGB{{255, 80, 20}, {255, 111, 0}, {255, 191, 0}, {255, 111, 0}, {255, 80, 20}}
)

// Theme holds the named styles bound to one renderer, so color output follows the
// capabilities of the writer the terminal draws on.
type Theme struct {
	renderer *lipgloss.Renderer

	Title      lipgloss.Style
	Hint       lipgloss.Style
	Question   lipgloss.Style
	Progress   lipgloss.Style
	Success    lipgloss.Style
	Error      lipgloss.Style
	Dim        lipgloss.Style
	KeyBracket lipgloss.Style
	KeyName    lipgloss.Style
	KeyDesc    lipgloss.Style
	Rule       lipgloss.Style
	Panel      lipgloss.Style
}

// NewTheme builds the booth styles on r.
func NewTheme(r *lipgloss.Renderer) *Theme {
	return &Theme{
		renderer: r,
		Title: r.NewStyle().
			Bold(true).
			Foreground(ColorDeepOrange),
		Hint: r.NewStyle().
			Italic(true).
			Foreground(ColorWarmSand),
		Question: r.NewStyle().
			Bold(true).
			Foreground(ColorWhite),
		Progress: r.NewStyle().
			Bold(true).
			Foreground(ColorElectricTeal),
		Success: r.NewStyle().
			Bold(true).
			Foreground(ColorElectricTeal),
		Error: r.NewStyle().
			Bold(true).
			Foreground(ColorCoral),
		Dim: r.NewStyle().
			Foreground(ColorMutedSand),
		KeyBracket: r.NewStyle().
			Bold(true).
			Foreground(ColorElectricTeal),
		KeyName: r.NewStyle().
			Bold(true).
			Foreground(ColorGold),
		KeyDesc: r.NewStyle().
			Foreground(ColorMutedSand),
		Rule: r.NewStyle().
			Foreground(ColorDeepOrange),
		Panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorHotPink).
			Padding(1, 4),
	}
}

// colorAt interpolates the gradient at position t in [0, 1].
func colorAt(stops []RGB, t float64) RGB {
	if t <= 0 {
		return stops[0]
	}
	if t >= 1 {
		return stops[len(stops)-1]
	}
	scaled := t * float64(len(stops)-1)
	idx := int(scaled)
	if idx >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	frac := scaled - float64(idx)
	a, b := stops[idx], stops[idx+1]
	return RGB{
		R: a.R + int(float64(b.R-a.R)*frac),
		G: a.G + int(float64(b.G-a.G)*frac),
		B: a.B + int(float64(b.B-a.B)*frac),
	}
}

// Gradient colors each visible character of text along stops.
// Spaces and newlines are kept as-is and do not advance the gradient.
func (th *Theme) Gradient(text string, stops []RGB, bold bool) string {
	runes := []rune(text)
	visible := 0
	for _, r := range runes {
		if r != ' ' && r != '\n' {
			visible++
		}
	}
	if visible == 0 || len(stops) == 0 {
		return text
	}

	var b strings.Builder
	denom := float64(visible - 1)
	if denom < 1 {
		denom = 1
	}
	pos := 0
	for _, r := range runes {
		if r == ' ' || r == '\n' {
			b.WriteRune(r)
			continue
		}
		c := colorAt(stops, float64(pos)/denom)
		pos++
		style := th.renderer.NewStyle().
			Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))).
			Bold(bold)
		b.WriteString(style.Render(string(r)))
	}
	return b.String()
}

// RuleLine draws a ~ rule of width with an optional centered title.
func (th *Theme) RuleLine(title string, width int) string {
	if title == "" {
		return th.Rule.Render(strings.Repeat("~", width))
	}
	label := " " + title + " "
	side := (width - lipgloss.Width(label)) / 2
	if side < 3 {
		side = 3
	}
	return th.Rule.Render(strings.Repeat("~", side) + label + strings.Repeat("~", side))
}
