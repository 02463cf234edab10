package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/runaround/internal/log"
	"github.com/piwi3910/runaround/internal/model"
	"github.com/piwi3910/runaround/internal/routing"
)

// DefaultSearchBudget is the search memory parallel routes may hold
// together when Engine.SearchBudget is zero.
const DefaultSearchBudget = 512 << 20

// Engine recomputes the routes of a project.
type Engine struct {
	Workers      int // 0 means GOMAXPROCS
	SearchBudget int // bytes; 0 means DefaultSearchBudget

	settings model.RouteSettings
	router   *routing.Router
	logger   *slog.Logger
}

// New creates an engine routing with settings. The settings are fixed for
// the engine's lifetime; build a new engine to change them.
func New(settings model.RouteSettings) *Engine {
	return &Engine{
		settings: settings,
		router:   routing.NewRouter(settings),
		logger:   log.WithComponent("engine"),
	}
}

// Settings returns the route settings the engine was built with.
func (e *Engine) Settings() model.RouteSettings { return e.settings }

// RecomputeStats summarizes one batch recompute.
type RecomputeStats struct {
	Routed    int // paths whose points were replaced
	Fallbacks int // routes built by the edge corridor
	Skipped   int // manual edits and placeholders
	Orphaned  int // paths referencing a missing rectangle
	Duration  time.Duration
}

// job is one path to route together with its slot in the result slice.
type job struct {
	slot int
	id   string
	from model.DockPoint
	to   model.DockPoint
}

// Recompute routes every automatic path of p whose rectangles exist.
//
// Paths are processed in draw order followed by any path missing from the
// order. Routing runs in parallel; results are written back in that same
// order once every route is done, so a cancelled context leaves p untouched.
func (e *Engine) Recompute(ctx context.Context, p *model.Project) (RecomputeStats, error) {
	start := time.Now()
	logger := log.WithOperation(e.logger, "recompute")
	var stats RecomputeStats

	rectIDs := make(map[string]bool, len(p.Rects))
	for _, r := range p.Rects {
		rectIDs[r.ID] = true
	}

	var jobs []job
	for _, row := range orderedWithStragglers(p) {
		switch {
		case row.IsManuallyEdited || row.IsPlaceholder:
			stats.Skipped++
		case !rectIDs[row.From.RectID] || !rectIDs[row.To.RectID]:
			stats.Orphaned++
		default:
			jobs = append(jobs, job{slot: len(jobs), id: row.ID, from: row.From, to: row.To})
		}
	}

	// Routing reads a snapshot so concurrent edits to p cannot race with workers.
	rects := append([]model.Rect(nil), p.Rects...)
	room := p.Room
	results := make([]routing.Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	workers := e.workers(room)
	g.SetLimit(workers)
	for _, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[j.slot] = e.router.RouteDetailed(j.from, j.to, rects, room)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, fmt.Errorf("recompute %d paths: %w", len(jobs), err)
	}
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("recompute %d paths: %w", len(jobs), err)
	}

	for _, j := range jobs {
		res := results[j.slot]
		if row := p.FindPath(j.id); row != nil {
			row.Points = res.Points
		}
		stats.Routed++
		if res.Fallback {
			stats.Fallbacks++
		}
	}
	stats.Duration = time.Since(start)

	logger.Debug("recompute finished",
		slog.Int("routed", stats.Routed),
		slog.Int("fallbacks", stats.Fallbacks),
		slog.Int("skipped", stats.Skipped),
		slog.Int("orphaned", stats.Orphaned),
		slog.Int("workers", workers),
		slog.Duration("took", stats.Duration))
	return stats, nil
}

// RoutePath routes a single path of p in place and reports whether it changed.
// Manual edits are left alone unless force is set.
func (e *Engine) RoutePath(p *model.Project, id string, force bool) bool {
	row := p.FindPath(id)
	if row == nil || row.IsPlaceholder || (row.IsManuallyEdited && !force) {
		return false
	}
	row.Points = e.router.Route(row.From, row.To, p.Rects, p.Room)
	if force {
		row.IsManuallyEdited = false
	}
	return true
}

// workers is the number of routes run at once. Large rooms at fine cell
// sizes lower it so the searches together stay within the search budget.
func (e *Engine) workers(room model.Room) int {
	n := e.Workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	budget := e.SearchBudget
	if budget <= 0 {
		budget = DefaultSearchBudget
	}
	if per := e.router.SearchBytes(room); per > 0 {
		n = min(n, max(1, budget/per))
	}
	return n
}

// orderedWithStragglers returns the paths in draw order, then any path the
// order does not mention in storage order. Each path appears once.
func orderedWithStragglers(p *model.Project) []model.PathRow {
	var out []model.PathRow
	listed := make(map[string]bool, len(p.Paths))
	for _, row := range p.OrderedPaths() {
		if !listed[row.ID] {
			listed[row.ID] = true
			out = append(out, row)
		}
	}
	for _, row := range p.Paths {
		if !listed[row.ID] {
			out = append(out, row)
		}
	}
	return out
}
