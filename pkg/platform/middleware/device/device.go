// Package device derives a coarse device description from the
// User-Agent header for audit enrichment. No fingerprinting; the
// description is browser family plus platform only.
package device

import (
	"net/http"

	"github.com/mssola/useragent"

	"sisvita/pkg/requestcontext"
)

// Middleware parses the User-Agent and stores a short description
// ("Chrome 120 on Linux", "sisvita-android on Android") in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		desc := Describe(r.Header.Get("User-Agent"))
		ctx := requestcontext.WithDevice(r.Context(), desc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Describe renders a short human-readable device description.
func Describe(rawUA string) string {
	if rawUA == "" {
		return "unknown"
	}
	ua := useragent.New(rawUA)
	name, version := ua.Browser()
	if name == "" {
		return "unknown"
	}
	desc := name
	if version != "" {
		desc += " " + version
	}
	if os := ua.OS(); os != "" {
		desc += " on " + os
	}
	return desc
}
