package coordinator

import "github.com/crawlctl/coordinator/internal/normalize"

// hashURL hashes an already-normalized URL. Dispatch only ever sees
// normalized URLs (they came out of the Frontier, which stores normalized
// forms), so no re-normalization is needed here.
func hashURL(normalizedURL string) uint32 {
	return normalize.Hash(normalizedURL)
}

// urlHost extracts the host from a URL, normalizing first since report
// payloads echo back whatever URL string was dispatched (already normalized)
// or, for discovered URLs, an arbitrary raw link.
func urlHost(rawURL string) (string, error) {
	normalized, err := normalize.URL(rawURL)
	if err != nil {
		return "", err
	}
	return normalize.Host(normalized)
}
