package lead

import (
	"encoding/base64"
	"strings"
)

// Client describes the browser that sent a submission. Screen and TimeZone
// come from hidden form fields and may be empty.
type Client struct {
	UserAgent string
	Screen    string
	TimeZone  string
	IP        string
}

// Fingerprint returns a weak identifier for rate limiting: base64 of
// "userAgent-screen-timeZone". Without screen and time zone it falls back
// to the user agent and client IP.
func Fingerprint(c Client) string {
	var raw string
	if strings.TrimSpace(c.Screen) == "" && strings.TrimSpace(c.TimeZone) == "" {
		raw = c.UserAgent + "-" + c.IP
	} else {
		raw = c.UserAgent + "-" + c.Screen + "-" + c.TimeZone
	}
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// LimitKey is the rate limiter key: the fingerprint scoped to the client IP,
// so visitors sharing a browser build, screen and time zone are counted apart.
func LimitKey(c Client) string {
	return Fingerprint(c) + "|" + strings.TrimSpace(c.IP)
}
