package http

import "regexp"

var (
	toolNameRe   = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	instrumentRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*:[^:\s][^:]*$`)
)

// isValidToolName checks for snake_case tool names such as "get_holdings".
func isValidToolName(s string) bool {
	return len(s) <= 64 && toolNameRe.MatchString(s)
}

// isValidInstrument checks the EXCHANGE:SYMBOL form, e.g. "NSE:INFY" or "NSE:NIFTY 50".
func isValidInstrument(s string) bool {
	return len(s) <= 64 && instrumentRe.MatchString(s)
}
