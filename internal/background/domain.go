package background

import (
	"net/url"
	"strings"
)

// CanonicalDomain extracts the tracking key from a user-entered site
// rule: the hostname with any leading "www." label stripped. Input
// without a scheme gets "https://" prepended before parsing. Returns
// "" for malformed input or non-http(s) schemes.
func CanonicalDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return hostOf(raw)
}

// NavigationDomain extracts the tracking key from a live navigation
// URL. Navigation URLs always carry a scheme; anything without an
// http(s) one is ignored outright.
func NavigationDomain(raw string) string {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return ""
	}
	return hostOf(raw)
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return ""
	}
	return host
}
