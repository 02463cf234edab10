package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied to new projects
	DefaultRoomWidth      float64 `json:"default_room_width"`
	DefaultRoomHeight     float64 `json:"default_room_height"`
	DefaultOverlapSpacing float64 `json:"default_overlap_spacing"`
	DefaultPathThickness  float64 `json:"default_path_thickness"`
	DefaultRectFontSize   float64 `json:"default_rect_font_size"`
	DefaultRouteProfile   string  `json:"default_route_profile"`

	// Application preferences
	AutoSaveInterval  int      `json:"auto_save_interval"` // minutes, 0 = disabled
	RecomputeDebounce int      `json:"recompute_debounce"` // milliseconds
	RecentProjects    []string `json:"recent_projects"`
	Theme             string   `json:"theme"` // "light", "dark", "system"
}

// DefaultAppConfig returns an AppConfig populated with the values NewProject uses.
func DefaultAppConfig() AppConfig {
	defaults := NewProject()
	return AppConfig{
		DefaultRoomWidth:      defaults.Room.Width,
		DefaultRoomHeight:     defaults.Room.Height,
		DefaultOverlapSpacing: defaults.OverlapSpacing,
		DefaultPathThickness:  defaults.PathThickness,
		DefaultRectFontSize:   defaults.RectFontSize,
		DefaultRouteProfile:   RouteProfiles[0].Name,
		AutoSaveInterval:      0,
		RecomputeDebounce:     150,
		RecentProjects:        []string{},
		Theme:                 "system",
	}
}

// ApplyToProject copies the default values from AppConfig into a project.
// This is used when creating a new project so it inherits the user's saved defaults.
func (c AppConfig) ApplyToProject(p *Project) {
	p.SetRoomSize(c.DefaultRoomWidth, c.DefaultRoomHeight)
	p.SetOverlapSpacing(c.DefaultOverlapSpacing)
	p.SetPathThickness(c.DefaultPathThickness)
	p.SetRectFontSize(c.DefaultRectFontSize)
}

// AddRecentProject moves path to the front of the recent list, keeping at most max entries.
func (c *AppConfig) AddRecentProject(path string, max int) {
	recent := []string{path}
	for _, p := range c.RecentProjects {
		if p != path {
			recent = append(recent, p)
		}
	}
	if max > 0 && len(recent) > max {
		recent = recent[:max]
	}
	c.RecentProjects = recent
}
