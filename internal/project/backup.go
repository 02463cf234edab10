package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/piwi3910/runaround/internal/model"
)

// BackupVersion is written into every backup. Files from a newer major
// version are refused.
const BackupVersion = "1.0.0"

// BackupData bundles the settings and custom route profiles of one install.
type BackupData struct {
	Version       string               `json:"version"`
	CreatedAt     string               `json:"created_at"`
	Config        model.AppConfig      `json:"config"`
	RouteProfiles []model.RouteProfile `json:"route_profiles,omitempty"`
}

var errNoVersion = errors.New("missing version field")

// ExportAllData writes config and profiles to exportPath as one JSON file.
func ExportAllData(exportPath string, config model.AppConfig, profiles []model.RouteProfile) error {
	data, err := json.MarshalIndent(BackupData{
		Version:       BackupVersion,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		Config:        sanitizeConfig(config),
		RouteProfiles: profiles,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backup: %w", err)
	}
	if err := writeFileAtomic(exportPath, data); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// ImportAllData reads and checks a backup. Applying it is up to the caller.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("read backup: %w", err)
	}
	backup := BackupData{Config: model.DefaultAppConfig()}
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("parse backup: %w", err)
	}
	if err := checkBackupVersion(backup.Version); err != nil {
		return BackupData{}, fmt.Errorf("invalid backup file: %w", err)
	}
	backup.Config = sanitizeConfig(backup.Config)
	for _, p := range backup.RouteProfiles {
		if err := validateProfile(p); err != nil {
			return BackupData{}, fmt.Errorf("invalid backup file: %w", err)
		}
	}
	return backup, nil
}

func checkBackupVersion(v string) error {
	if v == "" {
		return errNoVersion
	}
	major, _, _ := strings.Cut(v, ".")
	want, _, _ := strings.Cut(BackupVersion, ".")
	if major != want {
		return fmt.Errorf("unsupported backup version %s", v)
	}
	return nil
}
