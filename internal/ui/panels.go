package ui

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/runaround/internal/model"
)

// ─── Paths Panel ───────────────────────────────────────────

func (a *App) buildPathsPanel() fyne.CanvasObject {
	a.pathList = widget.NewList(
		func() int {
			return len(a.pathRows())
		},
		func() fyne.CanvasObject {
			return container.NewHBox(
				widget.NewLabel("00."),
				widget.NewLabel("Description"),
				layout.NewSpacer(),
				widget.NewLabel("0000 px"),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			rows := a.pathRows()
			if id >= len(rows) {
				return
			}
			row := rows[id]
			box := obj.(*fyne.Container)
			box.Objects[0].(*widget.Label).SetText(fmt.Sprintf("%d.", id+1))
			box.Objects[1].(*widget.Label).SetText(pathTitle(row))
			box.Objects[3].(*widget.Label).SetText(pathDistance(row))
		},
	)
	a.pathList.OnSelected = func(id widget.ListItemID) {
		rows := a.pathRows()
		if id < len(rows) {
			a.selectedPath = rows[id].ID
			a.showPathDetail(rows[id])
		}
	}

	a.pathDetail = container.NewVBox(widget.NewLabel("Select a path to edit its table fields."))

	addBtn := widget.NewButtonWithIcon("Table Row", theme.ContentAddIcon(), a.addPlaceholder)
	connectBtn := widget.NewButtonWithIcon("Connect", theme.MailForwardIcon(), a.toggleConnect)

	split := container.NewVSplit(a.pathList, container.NewVScroll(a.pathDetail))
	split.SetOffset(0.55)
	return container.NewBorder(
		container.NewHBox(
			widget.NewLabelWithStyle("Paths (draw order)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			layout.NewSpacer(),
			connectBtn,
			addBtn,
		),
		nil, nil, nil,
		split,
	)
}

// pathRows returns the paths in draw order.
func (a *App) pathRows() []model.PathRow {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.project.OrderedPaths()
}

func pathTitle(row model.PathRow) string {
	title := row.Fields.Description
	if title == "" {
		title = "(no description)"
	}
	switch {
	case row.IsPlaceholder:
		title += " [not connected]"
	case row.IsManuallyEdited:
		title += " [manual]"
	}
	return title
}

func pathDistance(row model.PathRow) string {
	if !row.HasRoute() {
		return "-"
	}
	return fmt.Sprintf("%.0f px", row.Length())
}

func (a *App) showPathDetail(row model.PathRow) {
	c := a.pathDetail
	c.RemoveAll()

	desc := widget.NewEntry()
	desc.SetText(row.Fields.Description)
	crux := widget.NewMultiLineEntry()
	crux.SetText(row.Fields.Crux)
	crux.SetMinRowsVisible(2)
	reason := widget.NewMultiLineEntry()
	reason.SetText(row.Fields.Reason)
	reason.SetMinRowsVisible(2)
	comment := widget.NewMultiLineEntry()
	comment.SetText(row.Fields.Comment)
	comment.SetMinRowsVisible(2)

	id := row.ID
	form := widget.NewForm(
		widget.NewFormItem("Beschreibung", desc),
		widget.NewFormItem("Knackpunkt", crux),
		widget.NewFormItem("Begründung", reason),
		widget.NewFormItem("Kommentar", comment),
	)
	form.SubmitText = "Apply"
	form.OnSubmit = func() {
		fields := model.PathFields{
			Description: desc.Text,
			Crux:        crux.Text,
			Reason:      reason.Text,
			Comment:     comment.Text,
		}
		a.edit("Edit Path Fields", func(p *model.Project) {
			p.UpdatePathFields(id, fields)
		})
	}

	upBtn := widget.NewButtonWithIcon("", theme.MoveUpIcon(), func() { a.movePath(id, -1) })
	downBtn := widget.NewButtonWithIcon("", theme.MoveDownIcon(), func() { a.movePath(id, 1) })
	rerouteBtn := widget.NewButtonWithIcon("Reroute", theme.ViewRefreshIcon(), func() {
		a.edit("Reroute Path", func(p *model.Project) {
			p.ResetManualEdit(id)
		})
	})
	if !row.IsManuallyEdited {
		rerouteBtn.Disable()
	}
	deleteBtn := widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), func() {
		dialog.ShowConfirm("Delete Path", "Delete this path and its table row?", func(ok bool) {
			if !ok {
				return
			}
			a.selectedPath = ""
			a.edit("Delete Path", func(p *model.Project) {
				p.DeletePath(id)
			})
			a.pathList.UnselectAll()
			c.RemoveAll()
			c.Add(widget.NewLabel("Select a path to edit its table fields."))
		}, a.window)
	})

	info := "Not connected to any rectangle."
	if !row.IsPlaceholder {
		info = fmt.Sprintf("%s → %s, %s", a.endpointLabel(row.From), a.endpointLabel(row.To), pathDistance(row))
	}

	c.Add(widget.NewLabel(info))
	c.Add(container.NewHBox(upBtn, downBtn, rerouteBtn, layout.NewSpacer(), deleteBtn))
	c.Add(widget.NewSeparator())
	c.Add(form)
	c.Refresh()
}

func (a *App) endpointLabel(dp model.DockPoint) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if r := a.project.FindRect(dp.RectID); r != nil {
		return fmt.Sprintf("%s (%s)", r.Name, dp.Side)
	}
	return dp.RectID
}

func (a *App) movePath(id string, delta int) {
	moved := false
	a.edit("Reorder Paths", func(p *model.Project) {
		moved = p.MovePath(id, delta)
	})
	if !moved {
		return
	}
	for i, row := range a.pathRows() {
		if row.ID == id {
			a.pathList.Select(i)
			break
		}
	}
}

func (a *App) addPlaceholder() {
	a.edit("Add Table Row", func(p *model.Project) {
		p.AddPlaceholderPath()
	})
}

// addPath creates a path between two docks. The polyline is filled in by
// the next recompute.
func (a *App) addPath(from, to model.DockPoint) {
	a.edit("Add Path", func(p *model.Project) {
		p.AddPath(from, to, []float64{})
	})
	a.setStatus("Path added. Tap two more docks to add another.")
}

// ─── Rectangles Panel ──────────────────────────────────────

func (a *App) buildRectsPanel() fyne.CanvasObject {
	a.rectList = widget.NewList(
		func() int {
			a.mu.Lock()
			defer a.mu.Unlock()
			return len(a.project.Rects)
		},
		func() fyne.CanvasObject {
			return container.NewHBox(
				widget.NewLabel("Rect Name"),
				layout.NewSpacer(),
				widget.NewLabel("0000 x 0000"),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			a.mu.Lock()
			if id >= len(a.project.Rects) {
				a.mu.Unlock()
				return
			}
			r := a.project.Rects[id]
			a.mu.Unlock()
			box := obj.(*fyne.Container)
			box.Objects[0].(*widget.Label).SetText(r.Name)
			box.Objects[2].(*widget.Label).SetText(fmt.Sprintf("%.0f x %.0f", r.Width, r.Height))
		},
	)
	a.rectList.OnSelected = func(id widget.ListItemID) {
		a.mu.Lock()
		if id >= len(a.project.Rects) {
			a.mu.Unlock()
			return
		}
		rid := a.project.Rects[id].ID
		a.mu.Unlock()
		if rid != a.selectedRect {
			a.selectRect(rid)
		}
	}

	a.rectDetail = container.NewVBox(widget.NewLabel("Select a rectangle on the canvas or in the list."))

	split := container.NewVSplit(a.rectList, container.NewVScroll(a.rectDetail))
	split.SetOffset(0.5)
	return container.NewBorder(
		container.NewHBox(
			widget.NewLabelWithStyle("Rectangles", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			layout.NewSpacer(),
			widget.NewButtonWithIcon("Add", theme.ContentAddIcon(), a.addRect),
		),
		nil, nil, nil,
		split,
	)
}

func (a *App) addRect() {
	var added model.Rect
	a.edit("Add Rect", func(p *model.Project) {
		added = p.AddRect("", 120, 80)
	})
	a.selectRect(added.ID)
}

// selectRect syncs the selection between canvas, list and detail form.
func (a *App) selectRect(id string) {
	a.selectedRect = id
	if a.canvas != nil && a.canvas.Selected() != id {
		a.canvas.SetSelected(id)
	}

	a.mu.Lock()
	idx := -1
	var rect model.Rect
	for i, r := range a.project.Rects {
		if r.ID == id {
			idx, rect = i, r
			break
		}
	}
	a.mu.Unlock()

	if a.rectList != nil {
		if idx >= 0 {
			a.rectList.Select(idx)
		} else {
			a.rectList.UnselectAll()
		}
	}
	if a.rectDetail == nil {
		return
	}
	if idx < 0 {
		a.rectDetail.RemoveAll()
		a.rectDetail.Add(widget.NewLabel("Select a rectangle on the canvas or in the list."))
		a.rectDetail.Refresh()
		return
	}
	a.showRectDetail(rect)
}

func (a *App) showRectDetail(r model.Rect) {
	c := a.rectDetail
	c.RemoveAll()

	name := widget.NewEntry()
	name.SetText(r.Name)
	x := floatEntry(r.X)
	y := floatEntry(r.Y)
	w := floatEntry(r.Width)
	h := floatEntry(r.Height)
	col := widget.NewEntry()
	col.SetText(r.Color)
	col.SetPlaceHolder(model.DefaultRectColor)

	id := r.ID
	form := widget.NewForm(
		widget.NewFormItem("Name", name),
		widget.NewFormItem("X", x),
		widget.NewFormItem("Y", y),
		widget.NewFormItem("Width", w),
		widget.NewFormItem("Height", h),
		widget.NewFormItem("Color", col),
	)
	form.SubmitText = "Apply"
	form.OnSubmit = func() {
		patch, err := rectPatchFromForm(name.Text, x.Text, y.Text, w.Text, h.Text, col.Text)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.edit("Edit Rect", func(p *model.Project) {
			p.UpdateRect(id, patch)
			if rect := p.FindRect(id); rect != nil {
				rect.X = clampFloat(rect.X, 0, p.Room.Width-rect.Width)
				rect.Y = clampFloat(rect.Y, 0, p.Room.Height-rect.Height)
			}
		})
	}

	deleteBtn := widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), func() {
		dialog.ShowConfirm("Delete Rectangle",
			fmt.Sprintf("Delete %q and every path attached to it?", r.Name),
			func(ok bool) {
				if !ok {
					return
				}
				a.edit("Delete Rect", func(p *model.Project) {
					p.DeleteRect(id)
				})
				a.selectRect("")
			}, a.window)
	})

	c.Add(form)
	c.Add(container.NewHBox(layout.NewSpacer(), deleteBtn))
	c.Refresh()
}

// rectPatchFromForm parses the rectangle form. Width and height must be
// positive; the model raises them to the minimum size.
func rectPatchFromForm(name, xs, ys, ws, hs, color string) (model.RectPatch, error) {
	parse := func(label, s string) (float64, error) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not a number", label, s)
		}
		return v, nil
	}
	x, err := parse("X", xs)
	if err != nil {
		return model.RectPatch{}, err
	}
	y, err := parse("Y", ys)
	if err != nil {
		return model.RectPatch{}, err
	}
	w, err := parse("Width", ws)
	if err != nil {
		return model.RectPatch{}, err
	}
	h, err := parse("Height", hs)
	if err != nil {
		return model.RectPatch{}, err
	}
	if w <= 0 || h <= 0 {
		return model.RectPatch{}, fmt.Errorf("width and height must be > 0")
	}
	name = trimmedOr(name, "Rect")
	color = trimmedOr(color, model.DefaultRectColor)
	return model.RectPatch{Name: &name, X: &x, Y: &y, Width: &w, Height: &h, Color: &color}, nil
}

func floatEntry(v float64) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.FormatFloat(v, 'f', -1, 64))
	return e
}

func clampFloat(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return max(lo, min(v, hi))
}

// ─── Layout Panel ──────────────────────────────────────────

func (a *App) buildLayoutPanel() fyne.CanvasObject {
	p := a.snapshot()

	name := widget.NewEntry()
	name.SetText(p.Name)
	width := floatEntry(p.Room.Width)
	height := floatEntry(p.Room.Height)

	roomForm := widget.NewForm(
		widget.NewFormItem("Project Name", name),
		widget.NewFormItem(fmt.Sprintf("Room Width (%.0f-%.0f)", model.MinRoomWidth, model.MaxRoomWidth), width),
		widget.NewFormItem(fmt.Sprintf("Room Height (%.0f-%.0f)", model.MinRoomHeight, model.MaxRoomHeight), height),
	)
	roomForm.SubmitText = "Apply"
	roomForm.OnSubmit = func() {
		w, errW := strconv.ParseFloat(width.Text, 64)
		h, errH := strconv.ParseFloat(height.Text, 64)
		if errW != nil || errH != nil {
			dialog.ShowError(fmt.Errorf("room size must be numeric"), a.window)
			return
		}
		projectName := trimmedOr(name.Text, "Untitled")
		a.edit("Resize Room", func(p *model.Project) {
			p.Name = projectName
			p.SetRoomSize(w, h)
		})
		cur := a.snapshot()
		width.SetText(strconv.FormatFloat(cur.Room.Width, 'f', -1, 64))
		height.SetText(strconv.FormatFloat(cur.Room.Height, 'f', -1, 64))
	}

	spacing := a.sliderRow("Lane Spacing", p.OverlapSpacing, model.MinOverlapSpacing, model.MaxOverlapSpacing,
		func(p *model.Project, v float64) { p.SetOverlapSpacing(v) })
	thickness := a.sliderRow("Path Thickness", p.PathThickness, model.MinPathThickness, model.MaxPathThickness,
		func(p *model.Project, v float64) { p.SetPathThickness(v) })
	fontSize := a.sliderRow("Label Font Size", p.RectFontSize, model.MinRectFontSize, model.MaxRectFontSize,
		func(p *model.Project, v float64) { p.SetRectFontSize(v) })

	profileSelect := widget.NewSelect(model.GetRouteProfileNames(), func(selected string) {
		if selected == a.currentProfile() {
			return
		}
		a.setProfile(selected)
		a.scheduleRecompute()
	})
	profileSelect.SetSelected(a.currentProfile())
	a.profiles = profileSelect

	routingCard := widget.NewCard("Routing", "",
		container.NewVBox(
			container.NewBorder(nil, nil, widget.NewLabel("Profile"),
				widget.NewButtonWithIcon("", theme.SettingsIcon(), a.showProfileManager),
				profileSelect),
			widget.NewButton("Compare Profiles...", a.showProfileComparison),
		))

	return container.NewVScroll(container.NewVBox(
		widget.NewCard("Room", "", roomForm),
		widget.NewCard("Display", "", container.NewVBox(spacing, thickness, fontSize)),
		routingCard,
	))
}

// sliderRow builds a labelled slider that commits its value on release.
func (a *App) sliderRow(label string, value, lo, hi float64, apply func(p *model.Project, v float64)) fyne.CanvasObject {
	valueLabel := widget.NewLabel(strconv.FormatFloat(value, 'f', 0, 64))
	s := widget.NewSlider(lo, hi)
	s.Step = 1
	s.SetValue(value)
	s.OnChanged = func(v float64) {
		valueLabel.SetText(strconv.FormatFloat(v, 'f', 0, 64))
	}
	s.OnChangeEnded = func(v float64) {
		a.edit("Change "+label, func(p *model.Project) { apply(p, v) })
	}
	return container.NewBorder(nil, nil, widget.NewLabel(label), valueLabel, s)
}
