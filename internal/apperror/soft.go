package apperror

import (
	"github.com/rs/zerolog/log"
)

// Warning is a soft failure from a best-effort step. It deliberately does not
// implement error.
type Warning struct {
	Op  string `json:"op"`
	Msg string `json:"msg"`
}

// Soft logs err at warn level and returns it as a Warning. A nil err yields
// nil so callers can append unconditionally through Collect.
func Soft(op string, err error) *Warning {
	if err == nil {
		return nil
	}
	log.Warn().Str("op", op).Err(err).Msg("best-effort step failed")
	return &Warning{Op: op, Msg: err.Error()}
}

// Collect appends w to ws when w is non-nil.
func Collect(ws []Warning, w *Warning) []Warning {
	if w == nil {
		return ws
	}
	return append(ws, *w)
}
