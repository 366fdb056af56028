package storage

import "errors"

// Storage error constants
var (
	// ErrMissingConnectionString is returned when DB_STRING is empty
	ErrMissingConnectionString = errors.New("DB_STRING is not defined: set it in the environment or the .env file")
)
