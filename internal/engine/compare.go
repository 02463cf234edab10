package engine

import (
	"fmt"

	"github.com/piwi3910/runaround/internal/model"
	"github.com/piwi3910/runaround/internal/routing"
)

// ComparisonScenario defines a named set of route settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.RouteSettings
}

// ComparisonResult holds the routes and computed statistics for a single scenario.
type ComparisonResult struct {
	Scenario      ComparisonScenario
	Points        map[string][]float64
	Routed        int
	TotalLength   float64 // Manhattan length over all routed paths
	TotalBends    int
	FallbackCount int
	OverlapCount  int // shared stretches between different paths
}

// CompareScenarios routes every automatic path of the project once per
// scenario and returns the results in scenario order. The project is not
// modified. This enables side-by-side comparison of routing profiles.
func CompareScenarios(scenarios []ComparisonScenario, p model.Project) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		router := routing.NewRouter(scenario.Settings)
		res := ComparisonResult{
			Scenario: scenario,
			Points:   make(map[string][]float64),
		}

		var order []string
		for _, row := range orderedWithStragglers(&p) {
			if row.IsPlaceholder || p.FindRect(row.From.RectID) == nil || p.FindRect(row.To.RectID) == nil {
				continue
			}
			pts := row.Points
			if !row.IsManuallyEdited {
				routed := router.RouteDetailed(row.From, row.To, p.Rects, p.Room)
				pts = routed.Points
				res.Routed++
				res.TotalBends += routed.Bends()
				if routed.Fallback {
					res.FallbackCount++
				}
			}
			res.Points[row.ID] = pts
			res.TotalLength += model.ManhattanLength(pts)
			order = append(order, row.ID)
		}
		res.OverlapCount = len(routing.OverlapRegions(res.Points, order))

		results = append(results, res)
	}

	return results
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current settings: the settings themselves, every built-in profile that
// differs from them, and a tight-clearance variant.
func BuildDefaultScenarios(baseSettings model.RouteSettings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: baseSettings,
		},
	}

	for _, profile := range model.RouteProfiles {
		if sameSettings(profile.Settings, baseSettings) {
			continue
		}
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Profile %s", profile.Name),
			Settings: profile.Settings,
		})
	}

	// Scenario: halve every clearance margin
	tight := baseSettings
	tight.Ladder = make([]model.RouteAttempt, len(baseSettings.Ladder))
	for i, a := range baseSettings.Ladder {
		tight.Ladder[i] = model.RouteAttempt{CellSize: a.CellSize, Margin: a.Margin / 2}
	}
	tight.Final.Margin = baseSettings.Final.Margin / 2
	scenarios = append(scenarios, ComparisonScenario{
		Name:     "Half Clearance",
		Settings: tight,
	})

	return scenarios
}

func sameSettings(a, b model.RouteSettings) bool {
	if len(a.Ladder) != len(b.Ladder) || a.Final != b.Final ||
		a.StubCells != b.StubCells || a.FallbackMargin != b.FallbackMargin {
		return false
	}
	for i := range a.Ladder {
		if a.Ladder[i] != b.Ladder[i] {
			return false
		}
	}
	return true
}
