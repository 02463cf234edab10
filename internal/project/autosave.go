package project

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/piwi3910/runaround/internal/log"
	"github.com/piwi3910/runaround/internal/model"
)

// DefaultAutosavePath returns the file the editor autosaves into.
func DefaultAutosavePath() string {
	return filepath.Join(DefaultConfigDir(), "autosave"+FileExtension)
}

// Autosaver periodically writes a snapshot of the open project.
type Autosaver struct {
	Path     string
	Interval time.Duration
	Snapshot func() model.Project

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	saves  int
	logger *slog.Logger
}

// NewAutosaver creates an autosaver; it does nothing until Start is called.
func NewAutosaver(path string, interval time.Duration, snapshot func() model.Project) *Autosaver {
	return &Autosaver{
		Path:     path,
		Interval: interval,
		Snapshot: snapshot,
		logger:   log.WithComponent("autosave"),
	}
}

// Start begins saving every Interval until ctx is done or Stop is called.
// A non-positive interval disables autosave. Calling Start again restarts
// the timer.
func (a *Autosaver) Start(ctx context.Context) {
	a.Stop()
	if a.Interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	a.mu.Lock()
	a.cancel = cancel
	a.done = done
	a.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(a.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.SaveNow()
			}
		}
	}()
}

// Stop halts the background loop and waits for it to exit.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

// SaveNow writes the current snapshot immediately.
func (a *Autosaver) SaveNow() error {
	if err := SaveProject(a.Path, a.Snapshot()); err != nil {
		a.logger.Error("autosave failed", slog.String("path", a.Path), slog.Any("err", err))
		return err
	}
	a.mu.Lock()
	a.saves++
	a.mu.Unlock()
	return nil
}

// Saves returns the number of successful saves so far.
func (a *Autosaver) Saves() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saves
}
