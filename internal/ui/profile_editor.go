package ui

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/runaround/internal/model"
	"github.com/piwi3910/runaround/internal/project"
)

// showProfileManager opens the profile management window where users can
// view, create, edit, duplicate, delete, import, and export route profiles.
func (a *App) showProfileManager() {
	w := fyne.CurrentApp().NewWindow("Route Profile Manager")
	w.Resize(fyne.NewSize(700, 460))

	selectedIdx := -1
	profiles := model.AllRouteProfiles()
	detail := container.NewVBox(widget.NewLabel("Select a profile to view details."))

	var list *widget.List
	reload := func() {
		profiles = model.AllRouteProfiles()
		selectedIdx = -1
		list.UnselectAll()
		list.Refresh()
		detail.RemoveAll()
		detail.Add(widget.NewLabel("Select a profile to view details."))
		detail.Refresh()
	}

	list = widget.NewList(
		func() int {
			return len(profiles)
		},
		func() fyne.CanvasObject {
			return container.NewHBox(
				widget.NewIcon(theme.DocumentIcon()),
				widget.NewLabel("Profile Name"),
				layout.NewSpacer(),
				widget.NewLabel("(built-in)"),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			box := obj.(*fyne.Container)
			p := profiles[id]
			box.Objects[1].(*widget.Label).SetText(p.Name)
			if model.IsBuiltInRouteProfile(p.Name) {
				box.Objects[3].(*widget.Label).SetText("(built-in)")
			} else {
				box.Objects[3].(*widget.Label).SetText("(custom)")
			}
		},
	)
	list.OnSelected = func(id widget.ListItemID) {
		selectedIdx = id
		showProfileDetail(detail, profiles[id])
	}

	selected := func(action string) (model.RouteProfile, bool) {
		if selectedIdx < 0 || selectedIdx >= len(profiles) {
			dialog.ShowInformation("No Selection", "Select a profile to "+action+".", w)
			return model.RouteProfile{}, false
		}
		return profiles[selectedIdx], true
	}

	newBtn := widget.NewButtonWithIcon("New", theme.ContentAddIcon(), func() {
		a.showProfileForm(w, model.RouteProfile{Settings: model.DefaultRouteSettings()}, "", reload)
	})
	duplicateBtn := widget.NewButtonWithIcon("Duplicate", theme.ContentCopyIcon(), func() {
		p, ok := selected("duplicate")
		if !ok {
			return
		}
		p.Name += " Copy"
		a.showProfileForm(w, p, "", reload)
	})
	editBtn := widget.NewButtonWithIcon("Edit", theme.DocumentCreateIcon(), func() {
		p, ok := selected("edit")
		if !ok {
			return
		}
		if model.IsBuiltInRouteProfile(p.Name) {
			dialog.ShowInformation("Read Only", "Built-in profiles cannot be edited. Duplicate it instead.", w)
			return
		}
		a.showProfileForm(w, p, p.Name, reload)
	})
	importBtn := widget.NewButtonWithIcon("Import", theme.FolderOpenIcon(), func() {
		a.importProfileDialog(w, reload)
	})
	exportBtn := widget.NewButtonWithIcon("Export", theme.DocumentSaveIcon(), func() {
		if p, ok := selected("export"); ok {
			a.exportProfileDialog(p, w)
		}
	})
	deleteBtn := widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), func() {
		p, ok := selected("delete")
		if !ok {
			return
		}
		if model.IsBuiltInRouteProfile(p.Name) {
			dialog.ShowInformation("Cannot Delete", "Built-in profiles cannot be deleted.", w)
			return
		}
		dialog.ShowConfirm("Delete Profile", fmt.Sprintf("Delete custom profile %q?", p.Name),
			func(ok bool) {
				if !ok {
					return
				}
				model.CustomRouteProfiles = removeProfile(model.CustomRouteProfiles, p.Name)
				if err := a.persistCustomProfiles(); err != nil {
					dialog.ShowError(err, w)
				}
				if a.currentProfile() == p.Name {
					a.setProfile("")
					a.scheduleRecompute()
				}
				a.refreshProfiles()
				reload()
			}, w)
	})

	toolbar := container.NewHBox(newBtn, duplicateBtn, editBtn, importBtn, exportBtn, deleteBtn)
	listPanel := container.NewBorder(
		widget.NewLabelWithStyle("Profiles", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		toolbar, nil, nil,
		list,
	)
	detailPanel := container.NewBorder(
		widget.NewLabelWithStyle("Profile Details", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		nil, nil, nil,
		container.NewVScroll(detail),
	)

	split := container.NewHSplit(listPanel, detailPanel)
	split.SetOffset(0.4)
	w.SetContent(split)
	w.Show()
}

// showProfileDetail fills c with a read-only summary of p.
func showProfileDetail(c *fyne.Container, p model.RouteProfile) {
	c.RemoveAll()
	s := p.Settings
	rows := container.NewGridWithColumns(2,
		widget.NewLabelWithStyle("Ladder (cell:margin):", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel(formatLadder(s.Ladder)),
		widget.NewLabelWithStyle("Final attempt:", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel(formatLadder([]model.RouteAttempt{s.Final})),
		widget.NewLabelWithStyle("Stub cells:", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel(strconv.Itoa(s.StubCells)),
		widget.NewLabelWithStyle("Edge corridor inset:", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel(strconv.FormatFloat(s.FallbackMargin, 'f', -1, 64)),
	)
	c.Add(widget.NewLabelWithStyle(p.Name, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
	c.Add(widget.NewLabel(p.Description))
	c.Add(widget.NewSeparator())
	c.Add(rows)
	c.Refresh()
}

// showProfileForm edits p. original is the name of the custom profile being
// replaced, or "" when p is new.
func (a *App) showProfileForm(w fyne.Window, p model.RouteProfile, original string, onSaved func()) {
	name := widget.NewEntry()
	name.SetText(p.Name)
	desc := widget.NewEntry()
	desc.SetText(p.Description)
	ladder := widget.NewEntry()
	ladder.SetText(formatLadder(p.Settings.Ladder))
	ladder.SetPlaceHolder("10:6, 5:4, 3:2")
	final := widget.NewEntry()
	final.SetText(formatLadder([]model.RouteAttempt{p.Settings.Final}))
	stub := widget.NewEntry()
	stub.SetText(strconv.Itoa(p.Settings.StubCells))
	inset := widget.NewEntry()
	inset.SetText(strconv.FormatFloat(p.Settings.FallbackMargin, 'f', -1, 64))

	title := "New Route Profile"
	if original != "" {
		title = "Edit Route Profile"
	}
	d := dialog.NewForm(title, "Save", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Name", name),
			widget.NewFormItem("Description", desc),
			widget.NewFormItem("Ladder (cell:margin, ...)", ladder),
			widget.NewFormItem("Final Attempt (cell:margin)", final),
			widget.NewFormItem("Stub Cells", stub),
			widget.NewFormItem("Edge Corridor Inset", inset),
		},
		func(ok bool) {
			if !ok {
				return
			}
			prof, err := profileFromForm(name.Text, desc.Text, ladder.Text, final.Text, stub.Text, inset.Text)
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if err := a.storeProfile(prof, original); err != nil {
				dialog.ShowError(err, w)
				return
			}
			onSaved()
		}, w)
	d.Resize(fyne.NewSize(480, 380))
	d.Show()
}

// storeProfile adds or replaces a custom profile and writes the profile file.
func (a *App) storeProfile(p model.RouteProfile, original string) error {
	if model.IsBuiltInRouteProfile(p.Name) {
		return fmt.Errorf("%q is a built-in profile name", p.Name)
	}
	if p.Name != original {
		for _, existing := range model.CustomRouteProfiles {
			if existing.Name == p.Name {
				return fmt.Errorf("a profile named %q already exists", p.Name)
			}
		}
	}
	profiles := removeProfile(model.CustomRouteProfiles, original)
	model.CustomRouteProfiles = append(profiles, p)
	if err := a.persistCustomProfiles(); err != nil {
		return err
	}
	if current := a.currentProfile(); current == original || current == p.Name {
		a.setProfile(p.Name)
		a.scheduleRecompute()
	}
	a.refreshProfiles()
	return nil
}

func removeProfile(profiles []model.RouteProfile, name string) []model.RouteProfile {
	out := make([]model.RouteProfile, 0, len(profiles))
	for _, p := range profiles {
		if p.Name != name {
			out = append(out, p)
		}
	}
	return out
}

// persistCustomProfiles writes the custom profiles to the default profile file.
func (a *App) persistCustomProfiles() error {
	if err := project.SaveCustomProfiles(project.DefaultProfilesPath(), model.CustomRouteProfiles); err != nil {
		return fmt.Errorf("failed to save route profiles: %w", err)
	}
	return nil
}

func (a *App) importProfileDialog(w fyne.Window, onImported func()) {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		p, err := project.ImportProfile(path)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if err := a.storeProfile(p, ""); err != nil {
			dialog.ShowError(err, w)
			return
		}
		onImported()
		dialog.ShowInformation("Profile Imported", fmt.Sprintf("Imported profile %q.", p.Name), w)
	}, w)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".yaml", ".yml"}))
	d.Show()
}

func (a *App) exportProfileDialog(p model.RouteProfile, w fyne.Window) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := project.ExportProfile(path, p); err != nil {
			dialog.ShowError(err, w)
			return
		}
		dialog.ShowInformation("Profile Exported", fmt.Sprintf("Saved %q to\n%s", p.Name, path), w)
	}, w)
	d.SetFileName(strings.ReplaceAll(strings.ToLower(p.Name), " ", "-") + ".yaml")
	d.Show()
}

// formatLadder renders attempts as "cell:margin" pairs.
func formatLadder(attempts []model.RouteAttempt) string {
	parts := make([]string, len(attempts))
	for i, at := range attempts {
		parts[i] = strconv.FormatFloat(at.CellSize, 'f', -1, 64) + ":" + strconv.FormatFloat(at.Margin, 'f', -1, 64)
	}
	return strings.Join(parts, ", ")
}

// parseLadder reads the format written by formatLadder. Cell sizes must be
// positive and margins non-negative.
func parseLadder(s string) ([]model.RouteAttempt, error) {
	var out []model.RouteAttempt
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cell, margin, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("attempt %q: expected cell:margin", part)
		}
		c, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil || c <= 0 {
			return nil, fmt.Errorf("attempt %q: cell size must be a positive number", part)
		}
		m, err := strconv.ParseFloat(strings.TrimSpace(margin), 64)
		if err != nil || m < 0 {
			return nil, fmt.Errorf("attempt %q: margin must be zero or more", part)
		}
		out = append(out, model.RouteAttempt{CellSize: c, Margin: m})
	}
	return out, nil
}

func profileFromForm(name, desc, ladder, final, stub, inset string) (model.RouteProfile, error) {
	p := model.RouteProfile{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(desc),
	}
	if p.Name == "" {
		return p, fmt.Errorf("profile name is required")
	}
	var err error
	if p.Settings.Ladder, err = parseLadder(ladder); err != nil {
		return p, err
	}
	finals, err := parseLadder(final)
	if err != nil {
		return p, err
	}
	if len(finals) > 1 {
		return p, fmt.Errorf("final attempt takes a single cell:margin pair")
	}
	if len(finals) == 1 {
		p.Settings.Final = finals[0]
	}
	if len(p.Settings.Attempts()) == 0 {
		return p, fmt.Errorf("at least one routing attempt is required")
	}
	if p.Settings.StubCells, err = strconv.Atoi(strings.TrimSpace(stub)); err != nil || p.Settings.StubCells < 1 {
		return p, fmt.Errorf("stub cells must be a whole number of at least 1")
	}
	if p.Settings.FallbackMargin, err = strconv.ParseFloat(strings.TrimSpace(inset), 64); err != nil || p.Settings.FallbackMargin <= 0 {
		return p, fmt.Errorf("edge corridor inset must be a positive number")
	}
	return p, nil
}
