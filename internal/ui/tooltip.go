package ui

import (
	"fmt"

	"fyne.io/fyne/v2"

	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
)

// toolButton is an icon-only toolbar button; tip shows on hover, followed by
// the keyboard shortcut in parentheses when keys is not empty.
func toolButton(icon fyne.Resource, tip, keys string, tapped func()) *ttwidget.Button {
	if keys != "" {
		tip = fmt.Sprintf("%s (%s)", tip, keys)
	}
	b := ttwidget.NewButtonWithIcon("", icon, tapped)
	b.SetToolTip(tip)
	return b
}
