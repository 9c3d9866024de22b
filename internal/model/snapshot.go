package model

import "time"

// Snapshot reasons.
const (
	ReasonManual     = "manual"
	ReasonDaily      = "auto-diario"
	ReasonPreRestore = "pre-restore"
	ReasonPreImport  = "pre-import"
)

// Snapshot is an immutable full copy of the state. ID doubles as the sort key.
type Snapshot struct {
	ID     string    `json:"id"`
	At     time.Time `json:"at"`
	Reason string    `json:"reason"`
	State  *State    `json:"state"`
}

// SnapshotEntry is one row of the snapshot index (newest first).
type SnapshotEntry struct {
	ID     string    `json:"id"`
	At     time.Time `json:"at"`
	Reason string    `json:"reason"`
}

// Entry returns the index row for s.
func (s *Snapshot) Entry() SnapshotEntry {
	return SnapshotEntry{ID: s.ID, At: s.At, Reason: s.Reason}
}
