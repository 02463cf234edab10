// Package ui provides the Runaround editor window and its panels.
package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// RunaroundTheme wraps the default Fyne theme with compact sizing overrides
// for the dense side panels of the layout editor.
type RunaroundTheme struct {
	base    fyne.Theme
	variant fyne.ThemeVariant
	fixed   bool // false follows the system variant
}

// NewRunaroundTheme creates a new RunaroundTheme that follows the system variant.
func NewRunaroundTheme() *RunaroundTheme {
	return &RunaroundTheme{base: theme.DefaultTheme()}
}

// NewRunaroundThemeWithVariant creates a RunaroundTheme with a specific light/dark variant.
func NewRunaroundThemeWithVariant(variant fyne.ThemeVariant) *RunaroundTheme {
	return &RunaroundTheme{
		base:    theme.DefaultTheme(),
		variant: variant,
		fixed:   true,
	}
}

// ThemeForName maps the config values "light", "dark" and "system".
func ThemeForName(name string) *RunaroundTheme {
	switch name {
	case "light":
		return NewRunaroundThemeWithVariant(theme.VariantLight)
	case "dark":
		return NewRunaroundThemeWithVariant(theme.VariantDark)
	}
	return NewRunaroundTheme()
}

// SetVariant pins the theme to variant.
func (t *RunaroundTheme) SetVariant(variant fyne.ThemeVariant) {
	t.variant = variant
	t.fixed = true
}

// Color delegates to the base theme, using the pinned variant if there is one.
func (t *RunaroundTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if t.fixed {
		variant = t.variant
	}
	return t.base.Color(name, variant)
}

func (t *RunaroundTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *RunaroundTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

// Size shrinks paddings and text so the property panels fit beside the canvas.
func (t *RunaroundTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 12
	case theme.SizeNameCaptionText:
		return 9
	case theme.SizeNameHeadingText:
		return 20
	case theme.SizeNameSubHeadingText:
		return 15
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameInlineIcon:
		return 16
	default:
		return t.base.Size(name)
	}
}
