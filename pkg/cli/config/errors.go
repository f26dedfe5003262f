package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for flag and file configuration
var (
	ErrInvalidFlag     = goerr.New("invalid flag value")
	ErrMissingFlag     = goerr.New("required flag is missing")
	ErrInvalidSettings = goerr.New("invalid settings file")
)

// Context keys for error values
const (
	FlagKey = "flag"
	PathKey = "path"
)
