package project

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/runaround/internal/model"
)

func TestAutosaverSaveNow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auto"+FileExtension)
	a := NewAutosaver(path, time.Minute, sampleProject)

	require.NoError(t, a.SaveNow())
	assert.Equal(t, 1, a.Saves())

	loaded, err := LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, "Ground floor", loaded.Name)
}

func TestAutosaverTicks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auto.json")
	a := NewAutosaver(path, 10*time.Millisecond, sampleProject)

	a.Start(context.Background())
	defer a.Stop()

	assert.Eventually(t, func() bool { return a.Saves() >= 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestAutosaverStopsWithContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auto.json")
	a := NewAutosaver(path, 5*time.Millisecond, sampleProject)

	ctx, cancel := context.WithCancel(context.Background())
	a.Start(ctx)
	cancel()
	a.Stop()

	n := a.Saves()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, a.Saves())
}

func TestAutosaverDisabled(t *testing.T) {
	a := NewAutosaver(filepath.Join(t.TempDir(), "x.json"), 0, model.NewProject)
	a.Start(context.Background())
	a.Stop()
	assert.Equal(t, 0, a.Saves())
}

func TestAutosaverReportsWriteErrors(t *testing.T) {
	dir := t.TempDir()
	// the target's parent is a regular file, so MkdirAll fails
	blocker := filepath.Join(dir, "file")
	require.NoError(t, SaveProject(blocker, model.NewProject()))

	a := NewAutosaver(filepath.Join(blocker, "auto.json"), time.Minute, model.NewProject)
	assert.Error(t, a.SaveNow())
	assert.Equal(t, 0, a.Saves())
}
