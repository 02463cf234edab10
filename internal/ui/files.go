package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/runaround/internal/engine"
	"github.com/piwi3910/runaround/internal/export"
	"github.com/piwi3910/runaround/internal/importer"
	"github.com/piwi3910/runaround/internal/model"
	"github.com/piwi3910/runaround/internal/project"
)

// ─── Project Files ─────────────────────────────────────────

func (a *App) openProjectDialog() {
	a.confirmDiscard(func() {
		d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			path := reader.URI().Path()
			reader.Close()
			a.openProject(path)
		}, a.window)
		d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
		d.Show()
	})
}

func (a *App) openProject(path string) {
	p, err := project.LoadProject(path)
	if err != nil {
		a.logger.Error("open project failed", slog.String("path", path), slog.String("err", err.Error()))
		dialog.ShowError(err, a.window)
		return
	}
	a.replaceProject(p, path)
	a.rememberRecent(path)
	a.setStatus("Opened " + filepath.Base(path))
}

// saveProject writes to the current file, or asks for one.
func (a *App) saveProject() {
	a.mu.Lock()
	path := a.path
	a.mu.Unlock()
	if path == "" {
		a.saveProjectAs()
		return
	}
	a.writeProject(path)
}

func (a *App) saveProjectAs() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if !strings.HasSuffix(strings.ToLower(path), ".json") {
			os.Remove(path)
			path += project.FileExtension
		}
		a.writeProject(path)
	}, a.window)
	d.SetFileName(a.snapshot().Name + project.FileExtension)
	d.Show()
}

func (a *App) writeProject(path string) {
	if err := project.SaveProject(path, a.snapshot()); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.mu.Lock()
	a.path = path
	a.dirty = false
	a.mu.Unlock()
	a.rememberRecent(path)
	a.updateTitle()
	a.setStatus("Saved " + filepath.Base(path))
}

func (a *App) rememberRecent(path string) {
	a.config.AddRecentProject(path, maxRecentProjects)
	if err := a.saveConfig(); err != nil {
		a.logger.Warn("recent projects not saved", slog.String("err", err.Error()))
	}
	if a.window != nil && a.window.MainMenu() != nil {
		a.SetupMenus()
	}
}

// ─── Import ────────────────────────────────────────────────

type importKind int

const (
	importCSV importKind = iota
	importExcel
	importDXF
)

var importExtensions = map[importKind][]string{
	importCSV:   {".csv", ".txt"},
	importExcel: {".xlsx", ".xlsm"},
	importDXF:   {".dxf"},
}

func (a *App) importRects(kind importKind) {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		var result importer.ImportResult
		switch kind {
		case importExcel:
			result = importer.ImportExcel(path)
		case importDXF:
			result = importer.ImportDXF(path)
		default:
			result = importer.ImportCSV(path)
		}
		a.handleImportResult(result)
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter(importExtensions[kind]))
	d.Show()
}

// handleImportResult adds imported rectangles in one undoable step and
// reports errors and warnings.
func (a *App) handleImportResult(result importer.ImportResult) int {
	for _, w := range result.Warnings {
		a.logger.Warn("import warning", slog.String("msg", w))
	}

	added := 0
	if len(result.Rects) > 0 {
		a.edit("Import Rects", func(p *model.Project) {
			added = importer.AddToProject(p, result.Rects)
		})
	}

	if a.window == nil {
		return added
	}
	if len(result.Errors) > 0 {
		msg := "Errors encountered during import:\n\n" + strings.Join(result.Errors, "\n")
		if added > 0 {
			msg += fmt.Sprintf("\n\n%d rectangles were imported anyway.", added)
		}
		dialog.ShowError(errors.New(msg), a.window)
		return added
	}
	if added > 0 {
		msg := fmt.Sprintf("Successfully imported %d rectangles.", added)
		if len(result.Warnings) > 0 {
			msg += "\n\nWarnings:\n" + strings.Join(result.Warnings, "\n")
		}
		dialog.ShowInformation("Import Complete", msg, a.window)
	}
	return added
}

// ─── Export ────────────────────────────────────────────────

const (
	exportPDFCombined = "pdf"
	exportPDFDiagram  = "pdf-diagram"
	exportPDFTable    = "pdf-table"
	exportExcel       = "xlsx"
	exportDXF         = "dxf"
	exportPNG         = "png"
	exportLabels      = "labels"
)

func (a *App) exportFile(formatName string) {
	format, ok := export.FormatByName(formatName)
	if !ok {
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := format.Write(path, a.snapshot()); err != nil {
			if errors.Is(err, export.ErrNoLabels) {
				os.Remove(path)
				dialog.ShowInformation("Nothing to Export", "Connect at least one path before printing labels.", a.window)
				return
			}
			a.logger.Error("export failed", slog.String("format", format.Name), slog.String("err", err.Error()))
			dialog.ShowError(err, a.window)
			return
		}
		dialog.ShowInformation("Export Complete", fmt.Sprintf("%s saved to\n%s", format.Description, path), a.window)
	}, a.window)
	d.SetFileName(exportFileName(a.snapshot().Name, format))
	d.Show()
}

func exportFileName(projectName string, f export.Format) string {
	base := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, trimmedOr(projectName, "runaround"))
	if f.Name == exportLabels {
		base += "-labels"
	}
	return base + f.Extension
}

// ─── Profile Comparison ────────────────────────────────────

func (a *App) showProfileComparison() {
	a.mu.Lock()
	settings := a.engine.Settings()
	a.mu.Unlock()

	results := engine.CompareScenarios(engine.BuildDefaultScenarios(settings), a.snapshot())

	headers := []string{"Scenario", "Routed", "Length (px)", "Bends", "Room Edge", "Overlaps"}
	table := widget.NewTable(
		func() (int, int) { return len(results) + 1, len(headers) },
		func() fyne.CanvasObject { return widget.NewLabel("Current Settings X") },
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			if id.Row == 0 {
				label.TextStyle = fyne.TextStyle{Bold: true}
				label.SetText(headers[id.Col])
				return
			}
			label.TextStyle = fyne.TextStyle{}
			label.SetText(comparisonCell(results[id.Row-1], id.Col))
		},
	)
	table.SetColumnWidth(0, 160)

	content := container.NewBorder(
		widget.NewLabel("Each scenario reroutes every automatic path. Manual edits are kept."),
		nil, nil, nil, table,
	)
	d := dialog.NewCustom("Compare Route Profiles", "Close", content, a.window)
	d.Resize(fyne.NewSize(700, 320))
	d.Show()
}

func comparisonCell(r engine.ComparisonResult, col int) string {
	switch col {
	case 0:
		return r.Scenario.Name
	case 1:
		return fmt.Sprintf("%d", r.Routed)
	case 2:
		return fmt.Sprintf("%.0f", r.TotalLength)
	case 3:
		return fmt.Sprintf("%d", r.TotalBends)
	case 4:
		return fmt.Sprintf("%d", r.FallbackCount)
	case 5:
		return fmt.Sprintf("%d", r.OverlapCount)
	}
	return ""
}
