// Runaround: orthogonal path router for room layouts
//
// A cross-platform desktop editor that places rectangles in a room and
// routes numbered connections between them around every obstacle. The
// same binary recomputes, imports and exports projects from the shell.
//
// Build:
//   go build -o runaround ./cmd/runaround
//
// Cross-compile:
//   GOOS=windows GOARCH=amd64 go build -o runaround.exe ./cmd/runaround
//   GOOS=darwin  GOARCH=amd64 go build -o runaround-darwin ./cmd/runaround

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/piwi3910/runaround/internal/engine"
	"github.com/piwi3910/runaround/internal/export"
	"github.com/piwi3910/runaround/internal/importer"
	applog "github.com/piwi3910/runaround/internal/log"
	"github.com/piwi3910/runaround/internal/model"
	"github.com/piwi3910/runaround/internal/project"
	"github.com/piwi3910/runaround/internal/ui"
)

func usage() {
	fmt.Println("Runaround — orthogonal path router for room layouts")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  runaround ui [<project>]                                 Launch the desktop editor")
	fmt.Println("  runaround route [-profile name] [-o out] <project>       Recompute automatic paths")
	fmt.Println("  runaround export [-format name] -o <file> <project>      Export a project")
	fmt.Println("  runaround import [-o out] <project> <file>               Add rectangles from CSV, Excel or DXF")
	fmt.Println("  runaround profiles                                       List route profiles")
	fmt.Println()
	fmt.Println("Export formats: " + strings.Join(export.FormatNames(), ", "))
}

func main() {
	applog.Init(applog.FromEnv())
	defer applog.Close()
	l := applog.WithComponent("cli")

	if _, err := project.LoadCustomProfilesFromDefault(); err != nil {
		l.Warn("custom route profiles not loaded", slog.String("err", err.Error()))
	}

	args := os.Args[1:]
	if len(args) == 0 {
		runUI(l, nil)
		return
	}

	var err error
	switch args[0] {
	case "ui":
		runUI(l, args[1:])
		return
	case "route":
		err = runRoute(l, args[1:])
	case "export":
		err = runExport(l, args[1:])
	case "import":
		err = runImport(l, args[1:])
	case "profiles":
		for _, p := range model.AllRouteProfiles() {
			fmt.Printf("%-12s %s\n", p.Name, p.Description)
		}
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Printf("unknown command %q\n\n", args[0])
		usage()
		os.Exit(2)
	}
	if err != nil {
		l.Error("command failed", slog.String("cmd", args[0]), slog.String("err", err.Error()))
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runUI(l *slog.Logger, args []string) {
	cfg, err := project.LoadAppConfig(project.DefaultConfigPath())
	if err != nil {
		cfg = model.DefaultAppConfig()
	}

	application := app.NewWithID("com.piwi3910.runaround")
	application.Settings().SetTheme(ui.ThemeForName(cfg.Theme))
	window := application.NewWindow("Runaround — Room Path Router")

	appUI := ui.NewApp(application, window)
	appUI.SetupMenus()
	window.SetContent(appUI.Build())
	window.Resize(fyne.NewSize(1400, 800))
	window.CenterOnScreen()
	window.SetMaster()
	appUI.InterceptClose()

	if len(args) > 0 {
		l.Info("open project", slog.String("path", args[0]))
		appUI.OpenFile(args[0])
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	appUI.Start(ctx)
	window.ShowAndRun()
}

func runRoute(l *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("route", flag.ExitOnError)
	profile := fs.String("profile", "", "route profile name (default from settings)")
	out := fs.String("o", "", "output project file (default: overwrite input)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("route requires exactly one project file")
	}
	in := fs.Arg(0)

	p, err := project.LoadProject(in)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	name := *profile
	if name == "" {
		if cfg, err := project.LoadAppConfig(project.DefaultConfigPath()); err == nil {
			name = cfg.DefaultRouteProfile
		}
	}
	prof := model.GetRouteProfile(name)
	stats, err := engine.New(prof.Settings).Recompute(ctx, &p)
	if err != nil {
		return fmt.Errorf("recompute: %w", err)
	}
	l.Info("recomputed",
		slog.String("profile", prof.Name),
		slog.Int("routed", stats.Routed),
		slog.Int("fallbacks", stats.Fallbacks),
		slog.Int("skipped", stats.Skipped),
		slog.Int("orphaned", stats.Orphaned),
		slog.Duration("took", stats.Duration))

	dest := *out
	if dest == "" {
		dest = in
	}
	if err := project.SaveProject(dest, p); err != nil {
		return err
	}
	fmt.Printf("Routed %d paths (%d along the room edge), kept %d. Saved %s\n",
		stats.Routed, stats.Fallbacks, stats.Skipped, dest)
	return nil
}

func runExport(l *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	formatName := fs.String("format", "", "export format (default: from the output extension)")
	out := fs.String("o", "", "output file")
	fs.Parse(args)
	if fs.NArg() != 1 || *out == "" {
		return fmt.Errorf("export requires -o <file> and one project file")
	}

	var (
		format export.Format
		ok     bool
	)
	if *formatName != "" {
		format, ok = export.FormatByName(*formatName)
	} else {
		format, ok = export.FormatForPath(*out)
	}
	if !ok {
		return fmt.Errorf("unknown export format for %q (choose one of %s)", *out, strings.Join(export.FormatNames(), ", "))
	}

	p, err := project.LoadProject(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := format.Write(*out, p); err != nil {
		return fmt.Errorf("export %s: %w", format.Name, err)
	}
	l.Info("exported", slog.String("format", format.Name), slog.String("path", *out))
	fmt.Printf("%s saved to %s\n", format.Description, *out)
	return nil
}

func runImport(l *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	out := fs.String("o", "", "output project file (default: overwrite input)")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("import requires a project file and a source file")
	}
	in, src := fs.Arg(0), fs.Arg(1)

	p, err := project.LoadProject(in)
	if errors.Is(err, os.ErrNotExist) {
		p = model.NewProject()
	} else if err != nil {
		return err
	}

	result := importer.ImportFile(src)
	for _, w := range result.Warnings {
		l.Warn("import warning", slog.String("msg", w))
	}
	for _, e := range result.Errors {
		fmt.Fprintln(os.Stderr, e)
	}
	added := importer.AddToProject(&p, result.Rects)
	if added == 0 && len(result.Errors) > 0 {
		return fmt.Errorf("nothing imported from %s", src)
	}

	dest := *out
	if dest == "" {
		dest = in
	}
	if err := project.SaveProject(dest, p); err != nil {
		return err
	}
	fmt.Printf("Imported %d rectangles into %s\n", added, dest)
	return nil
}
