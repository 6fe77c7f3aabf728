package config

import (
	"errors"
)

var (
	ErrConfigLoadFailed = errors.New("failed to load configuration")
	ErrServerNotFound   = errors.New("server not found in config")
	ErrImportFailed     = errors.New("failed to import servers")
)
