package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/runaround/internal/model"
	"github.com/piwi3910/runaround/internal/routing"
)

// testProject returns a 400x400 room with A and B facing each other and a
// blocker C between them, plus one path per kind.
func testProject() (model.Project, map[string]string) {
	p := model.NewProject()
	p.SetRoomSize(400, 400)
	p.Rects = []model.Rect{
		{ID: "A", Name: "A", X: 0, Y: 150, Width: 100, Height: 60},
		{ID: "B", Name: "B", X: 300, Y: 150, Width: 100, Height: 60},
		{ID: "C", Name: "C", X: 180, Y: 100, Width: 40, Height: 160},
	}
	ids := map[string]string{}
	ids["auto"] = p.AddPath(model.DockPoint{RectID: "A", Side: model.SideRight}, model.DockPoint{RectID: "B", Side: model.SideLeft}, nil).ID
	ids["second"] = p.AddPath(model.DockPoint{RectID: "A", Side: model.SideTop}, model.DockPoint{RectID: "B", Side: model.SideTop}, nil).ID
	manual := p.AddPath(model.DockPoint{RectID: "A", Side: model.SideBottom}, model.DockPoint{RectID: "B", Side: model.SideBottom}, nil)
	p.UpdatePathPoints(manual.ID, []float64{50, 210, 50, 300, 350, 300, 350, 210})
	ids["manual"] = manual.ID
	ids["placeholder"] = p.AddPlaceholderPath().ID
	ids["orphan"] = p.AddPath(model.DockPoint{RectID: "A", Side: model.SideLeft}, model.DockPoint{RectID: "gone", Side: model.SideLeft}, []float64{1, 1, 2, 1}).ID
	return p, ids
}

func TestRecomputeRoutesAutomaticPaths(t *testing.T) {
	p, ids := testProject()
	e := New(model.DefaultRouteSettings())
	e.Workers = 2

	stats, err := e.Recompute(context.Background(), &p)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Routed)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 1, stats.Orphaned)
	assert.Equal(t, 0, stats.Fallbacks)

	want := routing.NewRouter(model.DefaultRouteSettings()).Route(
		model.DockPoint{RectID: "A", Side: model.SideRight},
		model.DockPoint{RectID: "B", Side: model.SideLeft}, p.Rects, p.Room)
	assert.Equal(t, want, p.FindPath(ids["auto"]).Points)
	assert.True(t, p.FindPath(ids["second"]).HasRoute())

	assert.Equal(t, []float64{50, 210, 50, 300, 350, 300, 350, 210}, p.FindPath(ids["manual"]).Points)
	assert.Empty(t, p.FindPath(ids["placeholder"]).Points)
	assert.Equal(t, []float64{1, 1, 2, 1}, p.FindPath(ids["orphan"]).Points)
}

func TestRecomputeMatchesSequentialRouting(t *testing.T) {
	parallel, _ := testProject()
	sequential := parallel.Clone()

	e := New(model.DefaultRouteSettings())
	e.Workers = 8
	_, err := e.Recompute(context.Background(), &parallel)
	require.NoError(t, err)

	one := New(model.DefaultRouteSettings())
	one.Workers = 1
	_, err = one.Recompute(context.Background(), &sequential)
	require.NoError(t, err)

	assert.Equal(t, sequential.Paths, parallel.Paths)
}

func TestRecomputeCancelledLeavesProjectUntouched(t *testing.T) {
	p, ids := testProject()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(model.DefaultRouteSettings()).Recompute(ctx, &p)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, p.FindPath(ids["auto"]).Points)
}

func TestRecomputeIncludesPathsMissingFromOrder(t *testing.T) {
	p, ids := testProject()
	p.ReorderPaths([]string{ids["second"]})

	stats, err := New(model.DefaultRouteSettings()).Recompute(context.Background(), &p)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Routed)
	assert.True(t, p.FindPath(ids["auto"]).HasRoute())
}

func TestRoutePath(t *testing.T) {
	p, ids := testProject()
	e := New(model.DefaultRouteSettings())

	assert.True(t, e.RoutePath(&p, ids["auto"], false))
	assert.True(t, p.FindPath(ids["auto"]).HasRoute())

	assert.False(t, e.RoutePath(&p, ids["manual"], false))
	assert.True(t, e.RoutePath(&p, ids["manual"], true))
	assert.False(t, p.FindPath(ids["manual"]).IsManuallyEdited)

	assert.False(t, e.RoutePath(&p, ids["placeholder"], true))
	assert.False(t, e.RoutePath(&p, "missing", true))
}

func TestWorkersStayWithinSearchBudget(t *testing.T) {
	e := New(model.DefaultRouteSettings())
	e.Workers = 8

	assert.Equal(t, 8, e.workers(model.Room{Width: 1200, Height: 800}))
	// One search over the largest room at 2px cells takes most of the budget.
	assert.Equal(t, 1, e.workers(model.Room{Width: model.MaxRoomWidth, Height: model.MaxRoomHeight}))

	e.SearchBudget = 4 * routing.NewRouter(e.Settings()).SearchBytes(model.Room{Width: 2000, Height: 2000})
	assert.Equal(t, 4, e.workers(model.Room{Width: 2000, Height: 2000}))
}

func TestSettingsAccessor(t *testing.T) {
	s := model.DefaultRouteSettings()
	s.StubCells = 5
	assert.Equal(t, 5, New(s).Settings().StubCells)
}
