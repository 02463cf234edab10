package ui

import (
	"time"

	"github.com/piwi3910/runaround/internal/model"
)

const defaultMaxDepth = 50

// Snapshot is the layout as it was before a labelled edit.
type Snapshot struct {
	Project model.Project
	Label   string // e.g. "Move Rect"
}

// MakeSnapshot deep-copies p so later edits cannot reach the snapshot.
func MakeSnapshot(p model.Project, label string) Snapshot {
	return Snapshot{Project: p.Clone(), Label: label}
}

// History is a bounded undo/redo log. Edits with the same label that follow
// each other within the merge window collapse into one undo step, so a burst
// of nudges or slider moves undoes in one go.
type History struct {
	undo, redo  []Snapshot
	maxDepth    int
	mergeWindow time.Duration
	lastPush    time.Time
	now         func() time.Time
}

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithMaxDepth caps the number of undo steps kept.
func WithMaxDepth(n int) HistoryOption {
	return func(h *History) {
		if n > 0 {
			h.maxDepth = n
		}
	}
}

// WithMergeWindow enables merging of repeated edits.
func WithMergeWindow(d time.Duration) HistoryOption {
	return func(h *History) { h.mergeWindow = d }
}

func withClock(now func() time.Time) HistoryOption {
	return func(h *History) { h.now = now }
}

func NewHistory(opts ...HistoryOption) *History {
	h := &History{maxDepth: defaultMaxDepth, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Push records the state before an edit and drops anything that could be
// redone.
func (h *History) Push(s Snapshot) {
	now := h.now()
	merge := h.mergeWindow > 0 && len(h.redo) == 0 && len(h.undo) > 0 &&
		h.undo[len(h.undo)-1].Label == s.Label && now.Sub(h.lastPush) < h.mergeWindow
	h.lastPush = now
	h.redo = nil
	if merge {
		// The older snapshot already holds the state before the burst.
		return
	}
	h.undo = append(h.undo, s)
	if over := len(h.undo) - h.maxDepth; over > 0 {
		h.undo = append([]Snapshot(nil), h.undo[over:]...)
	}
}

// Undo returns the snapshot to restore and keeps current for Redo.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	s, ok := pop(&h.undo)
	if ok {
		h.redo = append(h.redo, current)
		h.lastPush = time.Time{}
	}
	return s, ok
}

// Redo is the inverse of Undo.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	s, ok := pop(&h.redo)
	if ok {
		h.undo = append(h.undo, current)
		h.lastPush = time.Time{}
	}
	return s, ok
}

func pop(stack *[]Snapshot) (Snapshot, bool) {
	n := len(*stack)
	if n == 0 {
		return Snapshot{}, false
	}
	s := (*stack)[n-1]
	*stack = (*stack)[:n-1]
	return s, true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoLabel names the edit Undo would revert, or "".
func (h *History) UndoLabel() string {
	if len(h.undo) == 0 {
		return ""
	}
	return h.undo[len(h.undo)-1].Label
}

func (h *History) Clear() {
	h.undo, h.redo = nil, nil
	h.lastPush = time.Time{}
}
