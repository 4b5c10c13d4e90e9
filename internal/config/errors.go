package config

import "errors"

// Load and validation failures. Every error returned by Load wraps one of these.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
	// ErrEnvFile marks an unreadable dotenv file; it is always paired with ErrLoadConfig.
	ErrEnvFile = errors.New("dotenv file unreadable")
)
