package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	fynetooltip "github.com/dweymouth/fyne-tooltip"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"github.com/piwi3910/runaround/internal/engine"
	"github.com/piwi3910/runaround/internal/export"
	"github.com/piwi3910/runaround/internal/log"
	"github.com/piwi3910/runaround/internal/model"
	"github.com/piwi3910/runaround/internal/project"
	"github.com/piwi3910/runaround/internal/ui/widgets"
)

const maxRecentProjects = 10

// App holds all application state and UI references.
type App struct {
	app    fyne.App
	window fyne.Window
	config model.AppConfig
	logger *slog.Logger

	// mu guards the fields below it; background recomputes and the autosaver
	// read the project from other goroutines.
	mu       sync.Mutex
	project  model.Project
	path     string
	dirty    bool
	revision uint64
	profile  string

	history *History
	engine  *engine.Engine

	recomputeMu     sync.Mutex
	recomputeTimer  *time.Timer
	recomputeCancel context.CancelFunc

	autosaver   *project.Autosaver
	autosaveCtx context.Context

	// UI references for dynamic updates
	canvas       *widgets.RoomCanvas
	rectList     *widget.List
	pathList     *widget.List
	rectDetail   *fyne.Container
	pathDetail   *fyne.Container
	status       *widget.Label
	undoBtn      *ttwidget.Button
	redoBtn      *ttwidget.Button
	connectBtn   *ttwidget.Button
	profiles     *widget.Select
	tabs         *container.AppTabs
	layoutTab    *container.TabItem
	selectedRect string
	selectedPath string
}

// NewApp creates the editor state. The app config and custom route profiles
// are loaded from the default config directory; failures fall back to the
// defaults and are logged.
func NewApp(application fyne.App, window fyne.Window) *App {
	logger := log.WithComponent("ui")

	cfg, err := project.LoadAppConfig(project.DefaultConfigPath())
	if err != nil {
		logger.Warn("using default config", slog.String("err", err.Error()))
		cfg = model.DefaultAppConfig()
	}
	if _, err := project.LoadCustomProfilesFromDefault(); err != nil {
		logger.Warn("custom route profiles not loaded", slog.String("err", err.Error()))
	}

	a := &App{
		app:     application,
		window:  window,
		config:  cfg,
		logger:  logger,
		history: NewHistory(WithMergeWindow(time.Second)),
	}
	a.project = a.newProject()
	a.setProfile(cfg.DefaultRouteProfile)
	a.autosaver = project.NewAutosaver(project.DefaultAutosavePath(), a.autosaveInterval(), a.snapshot)
	return a
}

func (a *App) newProject() model.Project {
	p := model.NewProject()
	a.config.ApplyToProject(&p)
	return p
}

func (a *App) autosaveInterval() time.Duration {
	return time.Duration(a.config.AutoSaveInterval) * time.Minute
}

func (a *App) debounce() time.Duration {
	if a.config.RecomputeDebounce <= 0 {
		return 0
	}
	return time.Duration(a.config.RecomputeDebounce) * time.Millisecond
}

// setProfile switches the routing profile used for recomputes.
func (a *App) setProfile(name string) {
	prof := model.GetRouteProfile(name)
	a.mu.Lock()
	a.profile = prof.Name
	a.engine = engine.New(prof.Settings)
	a.mu.Unlock()
}

func (a *App) currentProfile() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.profile
}

// refreshProfiles reloads the profile choices after custom profiles change.
func (a *App) refreshProfiles() {
	if a.profiles == nil {
		return
	}
	a.profiles.Options = model.GetRouteProfileNames()
	a.profiles.SetSelected(a.currentProfile())
	a.profiles.Refresh()
}

// snapshot returns a copy of the open project; safe from any goroutine.
func (a *App) snapshot() model.Project {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.project.Clone()
}

// Project returns a copy of the open project.
func (a *App) Project() model.Project { return a.snapshot() }

// Start launches background services tied to the window lifetime.
func (a *App) Start(ctx context.Context) {
	a.autosaveCtx = ctx
	a.autosaver.Start(ctx)
	a.scheduleRecompute()
}

// Shutdown stops background work and writes a final autosave when enabled.
func (a *App) Shutdown() {
	a.recomputeMu.Lock()
	if a.recomputeTimer != nil {
		a.recomputeTimer.Stop()
	}
	if a.recomputeCancel != nil {
		a.recomputeCancel()
	}
	a.recomputeMu.Unlock()

	a.autosaver.Stop()
	if a.autosaver.Interval > 0 && a.isDirty() {
		_ = a.autosaver.SaveNow()
	}
}

// OpenFile loads the project at path into the editor.
func (a *App) OpenFile(path string) { a.openProject(path) }

// InterceptClose asks before discarding unsaved changes when the window is
// closed, then stops background work.
func (a *App) InterceptClose() {
	a.window.SetCloseIntercept(func() {
		a.confirmDiscard(func() {
			a.Shutdown()
			a.window.Close()
		})
	})
}

func (a *App) isDirty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dirty
}

// ─── Editing ───────────────────────────────────────────────

// edit records an undo snapshot, applies fn to the project and schedules a
// recompute. Every user change goes through here.
func (a *App) edit(label string, fn func(p *model.Project)) {
	a.mu.Lock()
	a.history.Push(MakeSnapshot(a.project, label))
	fn(&a.project)
	a.revision++
	a.dirty = true
	a.mu.Unlock()

	a.refreshView()
	a.scheduleRecompute()
}

// restore replaces the project with a snapshot taken by the history.
func (a *App) restore(s Snapshot) {
	a.mu.Lock()
	a.project = s.Project
	a.revision++
	a.dirty = true
	a.mu.Unlock()

	a.refreshView()
	a.refreshLayoutPanel()
	a.scheduleRecompute()
}

// refreshLayoutPanel rebuilds the layout form after the whole project changed.
func (a *App) refreshLayoutPanel() {
	if a.layoutTab == nil {
		return
	}
	a.layoutTab.Content = a.buildLayoutPanel()
	a.tabs.Refresh()
}

func (a *App) undo() {
	a.mu.Lock()
	current := MakeSnapshot(a.project, "")
	a.mu.Unlock()
	if s, ok := a.history.Undo(current); ok {
		a.restore(s)
		a.setStatus("Undo: " + s.Label)
	}
}

func (a *App) redo() {
	a.mu.Lock()
	current := MakeSnapshot(a.project, "")
	a.mu.Unlock()
	if s, ok := a.history.Redo(current); ok {
		a.restore(s)
		a.setStatus("Redo")
	}
}

// replaceProject swaps in a freshly loaded or created project and clears
// the undo history.
func (a *App) replaceProject(p model.Project, path string) {
	a.mu.Lock()
	a.project = p
	a.path = path
	a.dirty = false
	a.revision++
	a.mu.Unlock()

	a.history.Clear()
	a.selectedRect = ""
	a.selectedPath = ""
	a.refreshView()
	a.refreshLayoutPanel()
	a.scheduleRecompute()
}

// ─── Recompute ─────────────────────────────────────────────

// scheduleRecompute restarts the debounce timer. A recompute that is
// already running is cancelled; its result would be stale anyway.
func (a *App) scheduleRecompute() {
	a.recomputeMu.Lock()
	defer a.recomputeMu.Unlock()
	if a.recomputeTimer != nil {
		a.recomputeTimer.Stop()
	}
	if a.recomputeCancel != nil {
		a.recomputeCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.recomputeCancel = cancel
	a.recomputeTimer = time.AfterFunc(a.debounce(), func() {
		rev, routed, stats, err := a.route(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				a.logger.Error("recompute failed", slog.String("err", err.Error()))
			}
			return
		}
		fyne.Do(func() {
			if a.applyRoutes(rev, routed) {
				a.refreshView()
				a.setStatus(recomputeStatus(stats))
			}
		})
	})
}

// RecomputeNow routes synchronously and applies the result.
func (a *App) RecomputeNow(ctx context.Context) (engine.RecomputeStats, error) {
	rev, routed, stats, err := a.route(ctx)
	if err != nil {
		return stats, err
	}
	if a.applyRoutes(rev, routed) {
		a.refreshView()
		a.setStatus(recomputeStatus(stats))
	}
	return stats, nil
}

// route recomputes a copy of the project outside the lock.
func (a *App) route(ctx context.Context) (uint64, model.Project, engine.RecomputeStats, error) {
	a.mu.Lock()
	p := a.project.Clone()
	rev := a.revision
	eng := a.engine
	a.mu.Unlock()

	stats, err := eng.Recompute(ctx, &p)
	return rev, p, stats, err
}

// applyRoutes copies routed points into the open project unless it changed
// since the copy was taken. Manual edits and placeholders are never touched.
func (a *App) applyRoutes(rev uint64, routed model.Project) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if rev != a.revision {
		return false
	}
	for _, r := range routed.Paths {
		row := a.project.FindPath(r.ID)
		if row == nil || row.IsManuallyEdited || row.IsPlaceholder {
			continue
		}
		row.Points = r.Points
	}
	return true
}

func recomputeStatus(s engine.RecomputeStats) string {
	msg := fmt.Sprintf("Routed %d paths in %s", s.Routed, s.Duration.Round(time.Millisecond))
	if s.Fallbacks > 0 {
		msg += fmt.Sprintf(", %d via room edge", s.Fallbacks)
	}
	if s.Orphaned > 0 {
		msg += fmt.Sprintf(", %d without rectangle", s.Orphaned)
	}
	return msg
}

// ─── Menus and layout ──────────────────────────────────────

// SetupMenus creates the native menu bar for the application.
func (a *App) SetupMenus() {
	recentItem := fyne.NewMenuItem("Open Recent", nil)
	recentItem.ChildMenu = a.recentMenu()

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Project", func() {
			a.confirmDiscard(func() { a.replaceProject(a.newProject(), "") })
		}),
		fyne.NewMenuItem("Open Project...", a.openProjectDialog),
		recentItem,
		fyne.NewMenuItem("Save Project", a.saveProject),
		fyne.NewMenuItem("Save Project As...", a.saveProjectAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Rectangles from CSV...", func() { a.importRects(importCSV) }),
		fyne.NewMenuItem("Import Rectangles from Excel...", func() { a.importRects(importExcel) }),
		fyne.NewMenuItem("Import Rectangles from DXF...", func() { a.importRects(importDXF) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export PDF (Diagram + Table)...", func() { a.exportFile(exportPDFCombined) }),
		fyne.NewMenuItem("Export PDF Diagram...", func() { a.exportFile(exportPDFDiagram) }),
		fyne.NewMenuItem("Export PDF Table...", func() { a.exportFile(exportPDFTable) }),
		fyne.NewMenuItem("Export Excel...", func() { a.exportFile(exportExcel) }),
		fyne.NewMenuItem("Export DXF...", func() { a.exportFile(exportDXF) }),
		fyne.NewMenuItem("Export PNG...", func() { a.exportFile(exportPNG) }),
		fyne.NewMenuItem("Export Path Labels...", func() { a.exportFile(exportLabels) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import / Export Settings...", a.showImportExportDialog),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", a.undo),
		fyne.NewMenuItem("Redo", a.redo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Add Rectangle", a.addRect),
		fyne.NewMenuItem("Add Table Row", a.addPlaceholder),
		fyne.NewMenuItem("Connect Docks", a.toggleConnect),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Settings...", a.showSettingsDialog),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Recompute Routes", func() {
			if _, err := a.RecomputeNow(context.Background()); err != nil {
				dialog.ShowError(err, a.window)
			}
		}),
		fyne.NewMenuItem("Compare Route Profiles...", a.showProfileComparison),
		fyne.NewMenuItem("Route Profiles...", a.showProfileManager),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", a.showAboutDialog),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, toolsMenu, helpMenu))

	a.window.Canvas().AddShortcut(shortcut(fyne.KeyZ), func(fyne.Shortcut) { a.undo() })
	a.window.Canvas().AddShortcut(shortcut(fyne.KeyY), func(fyne.Shortcut) { a.redo() })
	a.window.Canvas().AddShortcut(shortcut(fyne.KeyS), func(fyne.Shortcut) { a.saveProject() })
}

// shortcut is Ctrl (Cmd on macOS) plus key.
func shortcut(key fyne.KeyName) *desktop.CustomShortcut {
	return &desktop.CustomShortcut{KeyName: key, Modifier: fyne.KeyModifierShortcutDefault}
}

func (a *App) recentMenu() *fyne.Menu {
	var items []*fyne.MenuItem
	for _, path := range a.config.RecentProjects {
		items = append(items, fyne.NewMenuItem(filepath.Base(path), func() {
			a.confirmDiscard(func() { a.openProject(path) })
		}))
	}
	if len(items) == 0 {
		none := fyne.NewMenuItem("No recent projects", nil)
		none.Disabled = true
		items = append(items, none)
	}
	return fyne.NewMenu("", items...)
}

func (a *App) showAboutDialog() {
	dialog.ShowInformation(
		"About Runaround",
		"Runaround - Room Layout Path Router\n\n"+
			"Draws walking paths between the rooms of a floor layout.\n"+
			"Paths run orthogonally around obstacles and are spread\n"+
			"into lanes where they share a corridor.",
		a.window,
	)
}

// Build constructs the full UI and returns the root container.
func (a *App) Build() fyne.CanvasObject {
	a.canvas = widgets.NewRoomCanvas()
	a.canvas.OnRectSelected = func(id string) {
		a.selectRect(id)
	}
	a.canvas.OnRectMoved = func(id string, x, y float64) {
		a.edit("Move Rect", func(p *model.Project) {
			p.UpdateRect(id, model.RectPatch{X: &x, Y: &y})
		})
	}
	a.canvas.OnDocksPicked = func(from, to model.DockPoint) {
		a.addPath(from, to)
	}

	a.status = widget.NewLabel("")
	a.undoBtn = toolButton(theme.ContentUndoIcon(), "Undo", "Ctrl+Z", a.undo)
	a.redoBtn = toolButton(theme.ContentRedoIcon(), "Redo", "Ctrl+Y", a.redo)
	a.connectBtn = toolButton(theme.MailForwardIcon(), "Connect docks: tap a start and an end dock", "", a.toggleConnect)

	toolbar := container.NewHBox(
		toolButton(theme.FolderOpenIcon(), "Open project", "", a.openProjectDialog),
		toolButton(theme.DocumentSaveIcon(), "Save project", "Ctrl+S", a.saveProject),
		widget.NewSeparator(),
		a.undoBtn,
		a.redoBtn,
		widget.NewSeparator(),
		toolButton(theme.ContentAddIcon(), "Add rectangle", "", a.addRect),
		a.connectBtn,
		toolButton(theme.ViewRefreshIcon(), "Recompute routes", "", func() {
			if _, err := a.RecomputeNow(context.Background()); err != nil {
				dialog.ShowError(err, a.window)
			}
		}),
		toolButton(theme.DocumentPrintIcon(), "Export PDF", "", func() { a.exportFile(exportPDFCombined) }),
	)

	a.layoutTab = container.NewTabItem("Layout", a.buildLayoutPanel())
	a.tabs = container.NewAppTabs(
		container.NewTabItem("Paths", a.buildPathsPanel()),
		container.NewTabItem("Rectangles", a.buildRectsPanel()),
		a.layoutTab,
	)

	split := container.NewHSplit(a.canvas, a.tabs)
	split.SetOffset(0.65)

	a.refreshView()
	root := container.NewBorder(toolbar, a.status, nil, nil, split)
	return fynetooltip.AddWindowToolTipLayer(root, a.window.Canvas())
}

// refreshView pushes the project into every widget.
func (a *App) refreshView() {
	p := a.snapshot()
	if a.canvas != nil {
		a.canvas.SetScene(export.BuildScene(p))
	}
	if a.rectList != nil {
		a.rectList.Refresh()
	}
	if a.pathList != nil {
		a.pathList.Refresh()
	}
	if a.undoBtn != nil {
		setEnabled(a.undoBtn, a.history.CanUndo())
		setEnabled(a.redoBtn, a.history.CanRedo())
	}
	a.updateTitle()
}

func setEnabled(w fyne.Disableable, on bool) {
	if on {
		w.Enable()
	} else {
		w.Disable()
	}
}

func (a *App) updateTitle() {
	if a.window == nil {
		return
	}
	a.mu.Lock()
	name, path, dirty := a.project.Name, a.path, a.dirty
	a.mu.Unlock()
	title := "Runaround - " + name
	if path != "" {
		title += " (" + filepath.Base(path) + ")"
	}
	if dirty {
		title += " *"
	}
	a.window.SetTitle(title)
}

func (a *App) setStatus(msg string) {
	if a.status != nil {
		a.status.SetText(msg)
	}
}

func (a *App) toggleConnect() {
	if a.canvas == nil {
		return
	}
	on := !a.canvas.ConnectMode()
	a.canvas.SetConnectMode(on)
	if on {
		a.connectBtn.Importance = widget.HighImportance
		a.setStatus("Tap the start dock, then the end dock.")
	} else {
		a.connectBtn.Importance = widget.MediumImportance
		a.setStatus("")
	}
	a.connectBtn.Refresh()
}

// confirmDiscard runs next directly, or after confirmation when there are
// unsaved changes.
func (a *App) confirmDiscard(next func()) {
	if !a.isDirty() {
		next()
		return
	}
	dialog.ShowConfirm("Unsaved Changes",
		"The current project has unsaved changes. Discard them?",
		func(ok bool) {
			if ok {
				next()
			}
		}, a.window)
}

// trimmedOr returns s without surrounding space, or def when that is empty.
func trimmedOr(s, def string) string {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return def
}
