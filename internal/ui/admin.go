package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/runaround/internal/model"
	"github.com/piwi3910/runaround/internal/project"
)

var themeNames = []string{"system", "light", "dark"}

// settingField is one numeric entry of the settings form.
type settingField struct {
	label string
	entry *widget.Entry
	apply func(cfg *model.AppConfig, v float64) error
}

func nonNegative(v float64) error {
	if v < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func positive(v float64) error {
	if v <= 0 {
		return errors.New("must be positive")
	}
	return nil
}

// settingFields lists the numeric settings shown in the dialog, prefilled
// from cfg.
func settingFields(cfg model.AppConfig) []settingField {
	field := func(label string, current float64, check func(float64) error, set func(*model.AppConfig, float64)) settingField {
		e := widget.NewEntry()
		e.SetText(strconv.FormatFloat(current, 'f', -1, 64))
		e.Validator = func(s string) error {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return errors.New("not a number")
			}
			return check(v)
		}
		return settingField{label: label, entry: e, apply: func(c *model.AppConfig, v float64) error {
			if err := check(v); err != nil {
				return fmt.Errorf("%s %w", strings.ToLower(label), err)
			}
			set(c, v)
			return nil
		}}
	}
	return []settingField{
		field("Auto-Save Interval (min, 0=off)", float64(cfg.AutoSaveInterval), nonNegative,
			func(c *model.AppConfig, v float64) { c.AutoSaveInterval = int(v) }),
		field("Recompute Delay (ms)", float64(cfg.RecomputeDebounce), nonNegative,
			func(c *model.AppConfig, v float64) { c.RecomputeDebounce = int(v) }),
		field("Default Room Width", cfg.DefaultRoomWidth, positive,
			func(c *model.AppConfig, v float64) { c.DefaultRoomWidth = v }),
		field("Default Room Height", cfg.DefaultRoomHeight, positive,
			func(c *model.AppConfig, v float64) { c.DefaultRoomHeight = v }),
		field("Default Lane Spacing", cfg.DefaultOverlapSpacing, nonNegative,
			func(c *model.AppConfig, v float64) { c.DefaultOverlapSpacing = v }),
		field("Default Path Thickness", cfg.DefaultPathThickness, positive,
			func(c *model.AppConfig, v float64) { c.DefaultPathThickness = v }),
		field("Default Label Font Size", cfg.DefaultRectFontSize, positive,
			func(c *model.AppConfig, v float64) { c.DefaultRectFontSize = v }),
	}
}

// configFromFields reads the entries back into a copy of base.
func configFromFields(base model.AppConfig, fields []settingField) (model.AppConfig, error) {
	cfg := base
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f.entry.Text), 64)
		if err != nil {
			return base, fmt.Errorf("%s: %q is not a number", f.label, f.entry.Text)
		}
		if err := f.apply(&cfg, v); err != nil {
			return base, err
		}
	}
	return cfg, nil
}

// showSettingsDialog edits the application settings. They take effect and
// are saved when the form is confirmed.
func (a *App) showSettingsDialog() {
	fields := settingFields(a.config)
	theme := widget.NewSelect(themeNames, nil)
	theme.SetSelected(a.config.Theme)
	profile := widget.NewSelect(model.GetRouteProfileNames(), nil)
	profile.SetSelected(model.GetRouteProfile(a.config.DefaultRouteProfile).Name)

	items := []*widget.FormItem{widget.NewFormItem("Theme", theme)}
	for _, f := range fields {
		items = append(items, widget.NewFormItem(f.label, f.entry))
	}
	items = append(items, widget.NewFormItem("Default Route Profile", profile))

	d := dialog.NewForm("Settings", "Save", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		cfg, err := configFromFields(a.config, fields)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		cfg.Theme = theme.Selected
		cfg.DefaultRouteProfile = profile.Selected
		a.applyConfig(cfg)
		if err := a.saveConfig(); err != nil {
			dialog.ShowError(fmt.Errorf("failed to save settings: %w", err), a.window)
		}
	}, a.window)
	d.Resize(fyne.NewSize(500, 500))
	d.Show()
}

// applyConfig installs cfg and restarts the services that depend on it.
func (a *App) applyConfig(cfg model.AppConfig) {
	a.config = cfg
	if a.app != nil {
		a.app.Settings().SetTheme(ThemeForName(cfg.Theme))
	}
	a.autosaver.Interval = a.autosaveInterval()
	if a.autosaveCtx != nil {
		a.autosaver.Start(a.autosaveCtx)
	}
}

func (a *App) saveConfig() error {
	return project.SaveAppConfig(project.DefaultConfigPath(), a.config)
}

// restoreBackup replaces settings and custom profiles with the backup at
// path and saves both.
func (a *App) restoreBackup(path string) (project.BackupData, error) {
	backup, err := project.ImportAllData(path)
	if err != nil {
		return backup, err
	}
	a.applyConfig(backup.Config)
	if err := a.saveConfig(); err != nil {
		return backup, fmt.Errorf("failed to save imported settings: %w", err)
	}
	model.CustomRouteProfiles = backup.RouteProfiles
	a.refreshProfiles()
	return backup, a.persistCustomProfiles()
}

// showImportExportDialog offers backup and restore of settings and custom
// route profiles.
func (a *App) showImportExportDialog() {
	backupBtn := widget.NewButton("Export All Data...", func() {
		save := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
			if err != nil || w == nil {
				return
			}
			path := w.URI().Path()
			w.Close()
			if err := project.ExportAllData(path, a.config, model.CustomRouteProfiles); err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			a.setStatus("Backup written to " + path)
		}, a.window)
		save.SetFileName("runaround-backup.json")
		save.Show()
	})

	restoreBtn := widget.NewButton("Import All Data...", func() {
		open := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err != nil || r == nil {
				return
			}
			path := r.URI().Path()
			r.Close()
			dialog.ShowConfirm("Import Data",
				"This replaces your settings and custom route profiles. Continue?",
				func(ok bool) {
					if !ok {
						return
					}
					backup, err := a.restoreBackup(path)
					if err != nil {
						dialog.ShowError(err, a.window)
						return
					}
					a.setStatus(fmt.Sprintf("Restored backup from %s", backup.CreatedAt))
				}, a.window)
		}, a.window)
		open.Show()
	})

	content := container.NewVBox(
		widget.NewLabel("Settings and custom route profiles can be saved to one backup file\nand restored later or on another machine."),
		widget.NewSeparator(),
		container.NewGridWithColumns(2, backupBtn, restoreBtn),
	)
	d := dialog.NewCustom("Import / Export Data", "Close", content, a.window)
	d.Resize(fyne.NewSize(450, 200))
	d.Show()
}
