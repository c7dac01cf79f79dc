package fixtures

import "strings"

// slugTargets maps whole slugs to request targets.
var slugTargets = map[string]string{
	"index":   "/",
	"favicon": "/favicon.ico",
	"jpeg":    "/image/jpeg",
	"png":     "/image/png",
	"svg":     "/image/svg",
	"text":    "/robots.txt",
	"utf8":    "/encoding/utf8",
	"webp":    "/image/webp",
}

// slugPrefixes rewrites a slug prefix into a path prefix, so status_418 becomes /status/418.
var slugPrefixes = []struct {
	prefix string
	path   string
}{
	{"status_", "/status/"},
}

// DecodeTarget turns a fixture slug into a request target. CONNECT targets are authorities and
// are returned as-is.
func DecodeTarget(method, slug string) string {
	if strings.EqualFold(method, "CONNECT") {
		return slug
	}
	if target, ok := slugTargets[slug]; ok {
		return target
	}
	for _, p := range slugPrefixes {
		if rest := strings.TrimPrefix(slug, p.prefix); rest != slug && rest != "" {
			return p.path + rest
		}
	}
	return "/" + slug
}

// SplitName splits a fixture base name (without extension) into its method and slug. ok is false
// if the name has no method prefix or no slug.
func SplitName(name string) (method, slug string, ok bool) {
	prefix, slug, found := strings.Cut(name, "_")
	if !found || prefix == "" || slug == "" {
		return "", "", false
	}
	return strings.ToUpper(prefix), slug, true
}
