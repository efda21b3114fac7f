package mcp

import "regexp"

// Credential patterns scrubbed from remote text before it reaches logs or
// span status. Broker responses echo tokens in error bodies surprisingly often.
var credentialPatterns = []*regexp.Regexp{
	// Kite Connect "token api_key:access_token" authorization header
	regexp.MustCompile(`(?i)token\s+[a-z0-9]{8,}:[a-z0-9]{16,}`),
	// Kite request/access tokens in query strings or JSON
	regexp.MustCompile(`(?i)"?(access_token|request_token|enctoken|api_secret|api_key)"?\s*[:=]\s*"?[A-Za-z0-9_\-]{8,}"?`),
	// Generic key=value patterns (case-insensitive)
	regexp.MustCompile(`(?i)(secret|password|bearer|authorization)\s*[:=]\s*["']?\S{8,}["']?`),
	// Bearer tokens
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._\-]{16,}`),
}

const redactedPlaceholder = "[REDACTED]"

// ScrubCredentials replaces known credential patterns in text with [REDACTED].
func ScrubCredentials(text string) string {
	for _, pat := range credentialPatterns {
		text = pat.ReplaceAllString(text, redactedPlaceholder)
	}
	return text
}
