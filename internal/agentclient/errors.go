package agentclient

import "strings"

// ErrorClass classifies an upstream agent failure per §7 so the session
// knows whether to retry, surface a specific error code, or attempt
// session recovery.
type ErrorClass string

const (
	ClassRateLimit      ErrorClass = "rate_limit"
	ClassAuth           ErrorClass = "auth"
	ClassServer         ErrorClass = "server"
	ClassSessionInvalid ErrorClass = "session_invalid"
	ClassUnknown        ErrorClass = "unknown"
)

var sessionInvalidSubstrings = []string{
	"session not found",
	"invalid session",
	"session expired",
	"conversation not found",
	"resume failed",
	"no conversation",
	"process exited with code",
}

// Classify inspects an upstream error code/message and returns its class.
// A code of "invalid_request" is always session-invalid, matching the
// spec's explicit rule; otherwise the message is scanned for any of the
// known session-invalid phrases.
func Classify(code, message string) ErrorClass {
	switch code {
	case "rate_limit", "rate_limit_error":
		return ClassRateLimit
	case "authentication_error", "billing_error", "permission_error":
		return ClassAuth
	case "invalid_request", "invalid_request_error":
		return ClassSessionInvalid
	}
	lower := strings.ToLower(message)
	for _, s := range sessionInvalidSubstrings {
		if strings.Contains(lower, s) {
			return ClassSessionInvalid
		}
	}
	if code == "server_error" || code == "overloaded_error" {
		return ClassServer
	}
	if code != "" {
		return ClassServer
	}
	return ClassUnknown
}
