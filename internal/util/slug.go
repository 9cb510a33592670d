package util

import (
	"crypto/rand"
	"math/big"
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	SlugLen    = 6
	MaxSlugLen = 255
)

const slugChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ1234567890"

// GenerateSlug returns a random alphanumeric slug of SlugLen characters.
func GenerateSlug() string {
	b := make([]byte, SlugLen)

	for i := range b {
		rn, _ := rand.Int(rand.Reader, big.NewInt(int64(len(slugChars))))
		b[i] = slugChars[rn.Int64()]
	}

	return string(b)
}

// LookupSlugOK reports whether slug may be looked up at all.
// Lookups are exact-match, so anything else is left for the store to miss.
func LookupSlugOK(slug string) bool {
	return slug != "" && len(slug) <= MaxSlugLen && utf8.ValidString(slug)
}

// ValidSlug is the stricter rule applied when creating redirects: URL
// unreserved characters only, so every stored slug survives a round trip
// through a request path unchanged.
func ValidSlug(slug string) bool {
	if slug == "" || len(slug) > MaxSlugLen {
		return false
	}
	for i := 0; i < len(slug); i++ {
		c := slug[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.', c == '~':
		default:
			return false
		}
	}
	return true
}

// ValidDestination accepts absolute http(s) URLs and site-relative paths.
func ValidDestination(dest string) bool {
	if strings.TrimSpace(dest) != dest || dest == "" {
		return false
	}
	if strings.HasPrefix(dest, "/") {
		return !strings.HasPrefix(dest, "//")
	}
	u, err := url.ParseRequestURI(dest)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
