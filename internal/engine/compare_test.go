package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/runaround/internal/model"
)

func TestBuildDefaultScenarios(t *testing.T) {
	scenarios := BuildDefaultScenarios(model.DefaultRouteSettings())

	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"Current Settings", "Profile Fine", "Profile Fast", "Half Clearance"}, names)

	half := scenarios[len(scenarios)-1].Settings
	assert.Equal(t, 3.0, half.Ladder[0].Margin)
	assert.Equal(t, 10.0, half.Ladder[0].CellSize)
	assert.Equal(t, 0.5, half.Final.Margin)
	// base untouched
	assert.Equal(t, 6.0, model.DefaultRouteSettings().Ladder[0].Margin)
}

func TestCompareScenarios(t *testing.T) {
	p, ids := testProject()
	before := p.Clone()

	results := CompareScenarios(BuildDefaultScenarios(model.DefaultRouteSettings()), p)
	require.Len(t, results, 4)

	for _, r := range results {
		assert.Equal(t, 2, r.Routed, r.Scenario.Name)
		assert.Greater(t, r.TotalLength, 0.0, r.Scenario.Name)
		assert.Contains(t, r.Points, ids["manual"])
		assert.NotContains(t, r.Points, ids["placeholder"])
		assert.NotContains(t, r.Points, ids["orphan"])
	}
	assert.Equal(t, before.Paths, p.Paths)
}

func TestCompareScenariosCountsFallbacks(t *testing.T) {
	p, _ := testProject()
	scenarios := []ComparisonScenario{{Name: "corridor only", Settings: model.RouteSettings{}}}

	results := CompareScenarios(scenarios, p)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].FallbackCount)
}
