package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into domain errors.
//
//   - ErrNotFound: no record matches the key (including the owner predicate)
//   - ErrInvalidState: the record exists but its status rejects the operation
//   - ErrConflict: a concurrent writer changed the record first
//   - ErrUnavailable: backing service temporarily unreachable
//
// Validation failures use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("unavailable")
)
