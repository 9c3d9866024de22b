package dto

import "github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"

// MutationResponse wraps the result of a state-changing call together with
// any best-effort steps that did not complete.
type MutationResponse struct {
	Data     any                `json:"data,omitempty"`
	Warnings []apperror.Warning `json:"warnings,omitempty"`
}

type SnapshotRequest struct {
	Motivo string `json:"motivo" validate:"max=60"`
}
