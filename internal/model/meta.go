package model

// Update sources recorded in Meta.StateUpdatedSource.
const (
	SourceLocal        = "local"
	SourceSyncPull     = "sync-pull"
	SourceImport       = "import"
	SourceRestore      = "restore"
	SourceLegacyImport = "legacy-import"
	SourceSeed         = "seed"
)

// Meta is the metadata record stored next to the state. It outlives any
// single state version. Timestamps are kept as strings (see FormatTimestamp)
// so values received from the remote are preserved verbatim.
type Meta struct {
	DeviceID           string `json:"deviceId"`
	StateUpdatedAt     string `json:"stateUpdatedAt,omitempty"`
	StateUpdatedBy     string `json:"stateUpdatedBy,omitempty"`
	StateUpdatedSource string `json:"stateUpdatedSource,omitempty"`
	LastSnapshotDay    string `json:"lastSnapshotDay,omitempty"`
	LegacyImportedAt   string `json:"legacyImportedAt,omitempty"`
	LastSyncPushAt     string `json:"lastSyncPushAt,omitempty"`
	LastSyncPullAt     string `json:"lastSyncPullAt,omitempty"`
}
