// Package apperror defines the two error tiers used across the ledger core.
//
// Hard errors (*Error) abort the operation that produced them and are returned
// through the normal error channel. Soft failures (Warning) belong to
// best-effort bookkeeping: they are logged and collected, never returned as an
// error, so a caller cannot propagate one by accident.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a hard error.
type Kind int

const (
	KindStorage   Kind = iota + 1 // KV engine I/O or serialization failure
	KindShape                     // document failed structural validation
	KindNotFound                  // snapshot id or remote document absent
	KindConflict                  // confirmation-gated overwrite was declined
	KindTransport                 // non-success HTTP status or network failure
	KindInvalid                   // command rejected by a domain rule
)

func (k Kind) String() string {
	switch k {
	case KindStorage:
		return "storage"
	case KindShape:
		return "shape"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTransport:
		return "transport"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Error is the hard-tier error. Op names the failing operation
// ("state.save", "sync.pull", …).
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

// Sentinels for errors.Is; they match any *Error of the same Kind.
var (
	ErrStorage   = &Error{Kind: KindStorage}
	ErrShape     = &Error{Kind: KindShape}
	ErrNotFound  = &Error{Kind: KindNotFound}
	ErrConflict  = &Error{Kind: KindConflict}
	ErrTransport = &Error{Kind: KindTransport}
	ErrInvalid   = &Error{Kind: KindInvalid}
)

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind only, so errors.Is(err, ErrNotFound) works for every
// not-found error regardless of Op or message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Storage wraps a KV-engine or serialization failure.
func Storage(op string, err error) error {
	return &Error{Kind: KindStorage, Op: op, Err: err}
}

// Shape reports a document that failed structural validation.
func Shape(op, msg string) error {
	return &Error{Kind: KindShape, Op: op, Msg: msg}
}

// NotFound reports a missing snapshot, snapshot body or remote document.
func NotFound(op, what string) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: what + " no encontrado"}
}

// Conflict reports a confirmation-gated overwrite that was declined.
func Conflict(op, msg string) error {
	return &Error{Kind: KindConflict, Op: op, Msg: msg}
}

// Transport reports an HTTP status or network failure talking to the remote.
func Transport(op string, err error) error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

// Invalid reports a command rejected by a ledger rule.
func Invalid(op, msg string) error {
	return &Error{Kind: KindInvalid, Op: op, Msg: msg}
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
