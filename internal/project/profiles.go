package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/runaround/internal/model"
)

// DefaultProfilesPath returns the default file path for custom route profiles.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.yaml")
}

type profileFile struct {
	Profiles []model.RouteProfile `yaml:"profiles"`
}

// SaveCustomProfiles saves custom route profiles to a YAML file.
func SaveCustomProfiles(path string, profiles []model.RouteProfile) error {
	data, err := yaml.Marshal(profileFile{Profiles: profiles})
	if err != nil {
		return fmt.Errorf("marshal profiles: %w", err)
	}
	return writeFileAtomic(path, data)
}

// LoadCustomProfiles loads custom route profiles from a YAML file.
// Returns an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]model.RouteProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.RouteProfile{}, nil
		}
		return nil, err
	}

	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	profiles := make([]model.RouteProfile, 0, len(file.Profiles))
	for _, p := range file.Profiles {
		if err := validateProfile(p); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// LoadCustomProfilesFromDefault loads custom profiles from the default path
// and installs them as model.CustomRouteProfiles.
func LoadCustomProfilesFromDefault() ([]model.RouteProfile, error) {
	profiles, err := LoadCustomProfiles(DefaultProfilesPath())
	if err != nil {
		return nil, err
	}
	model.CustomRouteProfiles = profiles
	return profiles, nil
}

// ExportProfile exports a single profile to a YAML file (for sharing).
func ExportProfile(path string, profile model.RouteProfile) error {
	data, err := yaml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return writeFileAtomic(path, data)
}

// ImportProfile imports a single profile from a YAML file.
func ImportProfile(path string) (model.RouteProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RouteProfile{}, err
	}

	var profile model.RouteProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return model.RouteProfile{}, err
	}
	if err := validateProfile(profile); err != nil {
		return model.RouteProfile{}, err
	}
	return profile, nil
}

func validateProfile(p model.RouteProfile) error {
	if p.Name == "" {
		return errors.New("profile has no name")
	}
	if model.IsBuiltInRouteProfile(p.Name) {
		return fmt.Errorf("profile %q shadows a built-in profile", p.Name)
	}
	for i, a := range p.Settings.Attempts() {
		if a.Margin < 0 {
			return fmt.Errorf("profile %q: attempt %d has a negative margin", p.Name, i)
		}
	}
	if len(p.Settings.Attempts()) == 0 {
		return fmt.Errorf("profile %q has no routing attempts", p.Name)
	}
	return nil
}
