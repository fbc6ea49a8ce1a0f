package config

import (
	"errors"
)

// Sentinel error kinds for this package. Load wraps one of them.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
