package models

import "errors"

// Error taxonomy shared by the services. Wrap with fmt.Errorf("...: %w", err)
// and test with errors.Is at the transport boundary.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrPersistence  = errors.New("persistence error")
)
