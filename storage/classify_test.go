package storage

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{
			name:     "nil error returns empty string",
			err:      nil,
			contains: "",
		},
		{
			name:     "missing connection string",
			err:      fmt.Errorf("connect: %w", ErrMissingConnectionString),
			contains: "Set DB_STRING",
		},
		{
			name:     "malformed uri",
			err:      errors.New("invalid MongoDB connection string: scheme must be \"mongodb\" or \"mongodb+srv\""),
			contains: "Malformed MongoDB connection string",
		},
		{
			name:     "authentication failure",
			err:      errors.New("connection() error occurred during connection handshake: auth error: sasl conversation error: Authentication failed."),
			contains: "Authentication failed",
		},
		{
			name:     "connection refused op error",
			err:      &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED},
			contains: "Connection refused",
		},
		{
			name:     "connection refused inside topology description",
			err:      errors.New("server selection error: server selection timeout, current topology: { Last error: dial tcp 127.0.0.1:1: connect: connection refused }"),
			contains: "Connection refused",
		},
		{
			name:     "dns failure",
			err:      &net.DNSError{Err: "no such host", Name: "mongo.invalid"},
			contains: "Cannot resolve hostname",
		},
		{
			name:     "timeout",
			err:      errors.New("failed to ping MongoDB: context deadline exceeded"),
			contains: "timed out",
		},
		{
			name:     "unknown",
			err:      errors.New("something odd"),
			contains: "Failed to connect to MongoDB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyConnectionError(tt.err, "mongodb://localhost:27017")
			if tt.contains == "" {
				assert.Empty(t, result)
				return
			}
			assert.Contains(t, result, tt.contains)
		})
	}
}
