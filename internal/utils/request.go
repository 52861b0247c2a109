package utils

import (
	"net/http"
	"strings"
)

// IsSecureRequest reports whether the request arrived over TLS, directly or via a proxy
func IsSecureRequest(req *http.Request) bool {
	if req.TLS != nil {
		return true
	}
	return strings.EqualFold(req.Header.Get("X-Forwarded-Proto"), "https")
}

// SessionCookie builds the session cookie. It has no expiry so the browser
// drops it, and with it the recent list, when the browser session ends.
func SessionCookie(value string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   secure,
	}
}

// IsHTMX reports whether the request was issued by htmx
func IsHTMX(req *http.Request) bool {
	return req.Header.Get("HX-Request") == "true"
}
