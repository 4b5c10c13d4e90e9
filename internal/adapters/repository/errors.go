package repository

import "errors"

// Sentinel kinds for model artifact errors.
var (
	ErrArtifactMissing = errors.New("model artifact not found")
	ErrArtifactCorrupt = errors.New("model artifact corrupt")
	ErrSchemaMismatch  = errors.New("model schema mismatch")
	ErrRowShape        = errors.New("input row does not match model columns")
)
