package handlers

import (
	"net/http"
	"strings"
)

// getParam returns a path or query parameter value regardless of whether
// the router stores it with a leading colon or not.
func getParam(r *http.Request, name string) string {
	if r == nil {
		return ""
	}
	if val := r.URL.Query().Get(":" + name); val != "" {
		return val
	}
	if val := r.URL.Query().Get(name); val != "" {
		return strings.TrimSpace(val)
	}
	return r.PathValue(name)
}

// firstParam returns the first non-empty parameter among names.
func firstParam(r *http.Request, names ...string) string {
	for _, name := range names {
		if v := getParam(r, name); v != "" {
			return v
		}
	}
	return ""
}
