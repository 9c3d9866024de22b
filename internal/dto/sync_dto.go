package dto

// SyncConfigRequest replaces the stored sync configuration. An empty URL
// disables sync; a missing clave keeps the stored password.
type SyncConfigRequest struct {
	URL     string  `json:"url"     validate:"omitempty,url"`
	Usuario string  `json:"usuario"`
	Clave   *string `json:"clave"`
	Auto    bool    `json:"auto"`
}

// SyncConfigResponse never echoes the password back.
type SyncConfigResponse struct {
	URL         string `json:"url"`
	Usuario     string `json:"usuario"`
	TieneClave  bool   `json:"tiene_clave"`
	Auto        bool   `json:"auto"`
	Configurado bool   `json:"configurado"`
}
