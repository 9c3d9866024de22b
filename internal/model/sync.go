package model

import "encoding/json"

// Remote document identity.
const (
	RemoteApp    = "billar-finanzas"
	RemoteFormat = 1
)

// SyncConfig is the persisted remote endpoint configuration.
type SyncConfig struct {
	URL  string `json:"url"`
	User string `json:"user"`
	Pass string `json:"pass"`
	Auto bool   `json:"auto"`
}

// Configured reports whether a remote URL is set.
func (c SyncConfig) Configured() bool {
	return c.URL != ""
}

// RemoteDocument is the whole document exchanged with the remote store.
// State is kept raw until it passes shape validation.
type RemoteDocument struct {
	App       string          `json:"app"`
	Format    int             `json:"format"`
	UpdatedAt string          `json:"updatedAt"`
	UpdatedBy string          `json:"updatedBy"`
	State     json.RawMessage `json:"state"`
}

// DecodeState validates and decodes the embedded state.
func (d *RemoteDocument) DecodeState() (*State, error) {
	if len(d.State) == 0 {
		return nil, errMissingState
	}
	return DecodeState(d.State)
}
