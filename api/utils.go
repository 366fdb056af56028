package api

import (
	"net/http"
	"regexp"

	"go.uber.org/zap"
)

const maxErrorMessageLength = 200

var (
	connectionStringPattern = regexp.MustCompile(`(?:mongodb(?:\+srv)?|mysql|postgres|postgresql|redis)://[^\s"']+`)
	filePathPattern         = regexp.MustCompile(`(?:[A-Za-z]:\\|/)(?:[^\\/:*?"<>|\s]+[\\/])+[^\\/:*?"<>|\s]+`)
	privateIPPattern        = regexp.MustCompile(`\b(?:10|127)(?:\.\d{1,3}){3}(?::\d{1,5})?\b|\b192\.168(?:\.\d{1,3}){2}(?::\d{1,5})?\b|\b172\.(?:1[6-9]|2[0-9]|3[01])(?:\.\d{1,3}){2}(?::\d{1,5})?\b`)
	stackTracePattern       = regexp.MustCompile(`(?m)^goroutine \d+.*$`)
	uuidPattern             = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	objectIDPattern         = regexp.MustCompile(`[0-9a-fA-F]{24}`)
	numericIDPattern        = regexp.MustCompile(`/\d+(/|$)`)
)

// sanitizeErrorMessage removes sensitive information from error messages before sending to clients
func sanitizeErrorMessage(message string) string {
	message = connectionStringPattern.ReplaceAllString(message, "[DATABASE_CONNECTION]")
	message = filePathPattern.ReplaceAllString(message, "[FILE_PATH]")
	message = privateIPPattern.ReplaceAllString(message, "[PRIVATE_IP]")
	message = stackTracePattern.ReplaceAllString(message, "[STACK_TRACE]")

	if len(message) > maxErrorMessageLength {
		message = message[:maxErrorMessageLength-3] + "..."
	}
	return message
}

// sanitizePath replaces IDs in URL paths for logging and metrics
func sanitizePath(path string) string {
	path = uuidPattern.ReplaceAllString(path, "{uuid}")
	path = objectIDPattern.ReplaceAllString(path, "{oid}")
	path = numericIDPattern.ReplaceAllString(path, "/{id}$1")

	if len(path) > 100 {
		path = path[:97] + "..."
	}
	return path
}

// writeError writes an error response to the client and logs it with proper sanitization.
// Only server errors are logged.
func writeError(w http.ResponseWriter, statusCode int, message string, err error, logger *zap.SugaredLogger) {
	if logger != nil && statusCode >= http.StatusInternalServerError {
		fields := []interface{}{"status_code", statusCode}
		if err != nil {
			fields = append(fields, "error", err.Error())
		}
		logger.Errorw(message, fields...)
	}

	http.Error(w, sanitizeErrorMessage(message), statusCode)
}
