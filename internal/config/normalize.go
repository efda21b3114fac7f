package config

import (
	"net/url"
	"strings"
)

// NormalizeEndpoint tidies a user-supplied tool server URL:
//   - surrounding whitespace and trailing slashes removed
//   - "http://" added when no scheme is given
//   - "/mcp" appended when the URL has no path
//
// Input that still fails to parse is returned trimmed, so the client
// surfaces the parse error on first use.
func NormalizeEndpoint(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return strings.TrimSpace(raw)
	}

	u.Path = strings.TrimRight(u.Path, "/")
	if u.Path == "" {
		u.Path = "/mcp"
	}
	return u.String()
}
