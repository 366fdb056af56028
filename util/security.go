package util

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathTraversal indicates a path traversal attempt was detected
var ErrPathTraversal = errors.New("path traversal attempt detected")

// ErrPathOutsideAllowedDir indicates the path is outside the allowed directory
var ErrPathOutsideAllowedDir = errors.New("path outside allowed directory")

// maxPathLength bounds user-influenced path segments
const maxPathLength = 2048

// ValidateFilePath resolves name inside allowedDir and guarantees the result stays there.
//
// The check runs on the raw name before cleaning, because filepath.Clean would fold ".."
// segments away and hide the attempt. Absolute names are rejected outright.
// The returned path is absolute.
func ValidateFilePath(name, allowedDir string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}
	if allowedDir == "" {
		return "", fmt.Errorf("allowed directory cannot be empty")
	}
	if !IsPathSafe(name) {
		return "", ErrPathTraversal
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return "", ErrPathOutsideAllowedDir
	}

	absAllowedDir, err := filepath.Abs(allowedDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve allowed directory: %w", err)
	}

	absPath := filepath.Join(absAllowedDir, filepath.Clean(name))

	rel, err := filepath.Rel(absAllowedDir, absPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathOutsideAllowedDir
	}

	return absPath, nil
}

// IsPathSafe checks if a path is safe (no traversal, no null bytes, reasonable length)
func IsPathSafe(path string) bool {
	if path == "" || len(path) > maxPathLength {
		return false
	}
	if strings.Contains(path, "..") {
		return false
	}
	if strings.ContainsRune(path, 0) {
		return false
	}
	return true
}
