// Package normalize applies deterministic transformations to raw URLs so
// that equivalent URLs collapse to an identical string, and derives the
// 32-bit hash the Visited Index keys on.
package normalize

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net/url"
	"sort"
	"strings"
)

var (
	errEmptyInput          = errors.New("normalize url: empty input")
	errMissingSchemeOrHost = errors.New("normalize url: missing scheme or host")
	errUnsupportedScheme   = errors.New("normalize url: unsupported scheme")
)

// URL applies the transformations in §4.1: lowercase scheme and host, strip
// the fragment, strip a trailing slash (except on the bare root path), and
// sort query parameters lexicographically by key while preserving repeated
// values and their relative order within a key. Unlike some normalizers in
// the wild, this one does not upgrade http to https and does not strip
// tracking query parameters — both would change which URL a worker
// ultimately fetches.
func URL(rawURL string) (string, error) {
	if rawURL == "" {
		return "", errEmptyInput
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("normalize url: %w", err)
	}

	if err := validateParsedURL(parsed); err != nil {
		return "", err
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.RawFragment = ""
	parsed.Path = stripTrailingSlash(parsed.Path)
	parsed.RawQuery = sortedQuery(parsed.Query())

	return parsed.String(), nil
}

func validateParsedURL(parsed *url.URL) error {
	if parsed.Scheme == "" || parsed.Host == "" {
		return errMissingSchemeOrHost
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return nil
	default:
		return fmt.Errorf("%w: %s", errUnsupportedScheme, parsed.Scheme)
	}
}

func stripTrailingSlash(p string) string {
	if p == "" || p == "/" {
		return p
	}
	return strings.TrimSuffix(p, "/")
}

// sortedQuery rebuilds a query string with keys sorted lexicographically.
// Repeated values for the same key keep their original relative order.
func sortedQuery(values url.Values) string {
	if len(values) == 0 {
		return ""
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		for j, v := range values[k] {
			if i > 0 || j > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// Host returns the lowercased hostname (without port) of a URL already
// known to be well-formed, for domain-keyed lookups (scheduler, domain
// scope checks).
func Host(normalizedURL string) (string, error) {
	parsed, err := url.Parse(normalizedURL)
	if err != nil {
		return "", fmt.Errorf("extract host: %w", err)
	}
	return strings.ToLower(parsed.Hostname()), nil
}

// Hash returns a deterministic 32-bit FNV-1a digest of a normalized URL, used
// as the Visited Index key. Two URLs that normalize identically always hash
// identically; collisions across distinct URLs are possible but rare enough
// at the documented queue scale to treat as an acceptable exact-set cost
// (see DESIGN.md).
func Hash(normalizedURL string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalizedURL))
	return h.Sum32()
}
