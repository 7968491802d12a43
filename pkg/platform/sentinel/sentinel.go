package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into coded domain errors:
//   - ErrNotFound: no restriction, verification request or rule with that key
//   - ErrConflict: a uniqueness constraint was hit (second active KYC request)
//   - ErrInvalidState: the record is in the wrong lifecycle state for the operation
//
// Validation failures belong in pkg/domain-errors, not here.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
)
