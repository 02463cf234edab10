package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRouteSettingsLadder(t *testing.T) {
	s := DefaultRouteSettings()
	assert.Equal(t, []RouteAttempt{{10, 6}, {5, 4}, {5, 2}, {3, 2}}, s.Ladder)
	assert.Equal(t, RouteAttempt{CellSize: 2, Margin: 1}, s.Final)
	assert.Equal(t, 3, s.StubCells)

	attempts := s.Attempts()
	assert.Len(t, attempts, 5)
	assert.Equal(t, s.Final, attempts[4])
}

func TestAttemptsSkipsEmptyRungs(t *testing.T) {
	s := RouteSettings{Ladder: []RouteAttempt{{CellSize: 0}, {CellSize: 4, Margin: 2}}}
	assert.Equal(t, []RouteAttempt{{CellSize: 4, Margin: 2}}, s.Attempts())
}

func TestAllRouteProfilesIncludesCustom(t *testing.T) {
	CustomRouteProfiles = nil
	assert.Len(t, AllRouteProfiles(), len(RouteProfiles))

	CustomRouteProfiles = []RouteProfile{{Name: "Tight"}}
	defer func() { CustomRouteProfiles = nil }()

	assert.Len(t, AllRouteProfiles(), len(RouteProfiles)+1)
	assert.Contains(t, GetRouteProfileNames(), "Tight")
	assert.Equal(t, "Tight", GetRouteProfile("Tight").Name)
	assert.False(t, IsBuiltInRouteProfile("Tight"))
	assert.True(t, IsBuiltInRouteProfile("Fast"))
}

func TestGetRouteProfileFallsBackToStandard(t *testing.T) {
	assert.Equal(t, "Standard", GetRouteProfile("NoSuchProfile").Name)
}
