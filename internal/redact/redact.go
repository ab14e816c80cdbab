// Package redact strips credentials and other sensitive fragments from
// strings before they reach the logs. Error messages routinely embed
// connection strings, tokens, or addresses; everything logged through the
// error path goes through here first.
package redact

import "regexp"

// Placeholder inserted wherever a sensitive fragment was found.
const Placeholder = "[REDACTED]"

var sensitivePatterns = []*regexp.Regexp{
	// Connection strings with inline credentials
	regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@`),
	// password=..., secret=..., key=... style assignments
	regexp.MustCompile(`(?i)(password|passwd|secret|api[_-]?key|token)\s*[=:]\s*\S+`),
	// Three-part base64url JWTs
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
	// Bearer header values
	regexp.MustCompile(`(?i)bearer\s+\S+`),
	// Email addresses
	regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, Placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
