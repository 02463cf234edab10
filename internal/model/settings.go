package model

// RouteAttempt is one rung of the routing resolution ladder.
type RouteAttempt struct {
	CellSize float64 `json:"cell_size" yaml:"cell_size"` // grid cell edge in room pixels
	Margin   float64 `json:"margin" yaml:"margin"`       // clearance around every rectangle
}

// RouteSettings controls how the router searches for a path.
type RouteSettings struct {
	Ladder         []RouteAttempt `json:"ladder" yaml:"ladder"` // coarse to fine
	Final          RouteAttempt   `json:"final" yaml:"final"`   // tried after the ladder fails
	StubCells      int            `json:"stub_cells" yaml:"stub_cells"`
	FallbackMargin float64        `json:"fallback_margin" yaml:"fallback_margin"`
}

// DefaultRouteSettings returns the standard routing ladder.
func DefaultRouteSettings() RouteSettings {
	return RouteSettings{
		Ladder: []RouteAttempt{
			{CellSize: 10, Margin: 6},
			{CellSize: 5, Margin: 4},
			{CellSize: 5, Margin: 2},
			{CellSize: 3, Margin: 2},
		},
		Final:          RouteAttempt{CellSize: 2, Margin: 1},
		StubCells:      3,
		FallbackMargin: 20,
	}
}

// Attempts returns the ladder followed by the final attempt.
func (s RouteSettings) Attempts() []RouteAttempt {
	out := make([]RouteAttempt, 0, len(s.Ladder)+1)
	for _, a := range s.Ladder {
		if a.CellSize > 0 {
			out = append(out, a)
		}
	}
	if s.Final.CellSize > 0 {
		out = append(out, s.Final)
	}
	return out
}

// RouteProfile is a named set of routing settings.
type RouteProfile struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Settings    RouteSettings `json:"settings" yaml:"settings"`
}

// RouteProfiles lists the built-in profiles.
var RouteProfiles = []RouteProfile{
	{
		Name:        "Standard",
		Description: "Coarse to fine ladder with generous clearance",
		Settings:    DefaultRouteSettings(),
	},
	{
		Name:        "Fine",
		Description: "Fine grid only; slower but hugs obstacles more closely",
		Settings: RouteSettings{
			Ladder: []RouteAttempt{
				{CellSize: 4, Margin: 3},
				{CellSize: 3, Margin: 2},
			},
			Final:          RouteAttempt{CellSize: 2, Margin: 1},
			StubCells:      3,
			FallbackMargin: 20,
		},
	},
	{
		Name:        "Fast",
		Description: "Two coarse attempts, for large rooms",
		Settings: RouteSettings{
			Ladder: []RouteAttempt{
				{CellSize: 20, Margin: 8},
				{CellSize: 10, Margin: 6},
			},
			Final:          RouteAttempt{CellSize: 5, Margin: 2},
			StubCells:      3,
			FallbackMargin: 20,
		},
	},
}

// CustomRouteProfiles holds user-defined profiles loaded at startup.
var CustomRouteProfiles []RouteProfile

// AllRouteProfiles returns built-in profiles followed by custom ones.
func AllRouteProfiles() []RouteProfile {
	all := make([]RouteProfile, 0, len(RouteProfiles)+len(CustomRouteProfiles))
	all = append(all, RouteProfiles...)
	all = append(all, CustomRouteProfiles...)
	return all
}

// GetRouteProfile returns the profile with the given name, falling back to Standard.
func GetRouteProfile(name string) RouteProfile {
	for _, p := range AllRouteProfiles() {
		if p.Name == name {
			return p
		}
	}
	return RouteProfiles[0]
}

// GetRouteProfileNames returns the names of all profiles.
func GetRouteProfileNames() []string {
	all := AllRouteProfiles()
	names := make([]string, len(all))
	for i, p := range all {
		names[i] = p.Name
	}
	return names
}

// IsBuiltInRouteProfile reports whether name belongs to a built-in profile.
func IsBuiltInRouteProfile(name string) bool {
	for _, p := range RouteProfiles {
		if p.Name == name {
			return true
		}
	}
	return false
}
