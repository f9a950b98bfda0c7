package normalize_test

import (
	"testing"

	"github.com/crawlctl/coordinator/internal/normalize"
)

func TestURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"lowercase scheme", "HTTP://Example.com/Path", "http://example.com/Path", false},
		{"lowercase host", "https://EXAMPLE.COM/path", "https://example.com/path", false},
		{"preserves scheme, no https upgrade", "http://example.com/path", "http://example.com/path", false},
		{"remove trailing slash", "https://example.com/path/", "https://example.com/path", false},
		{"keep root slash", "https://example.com/", "https://example.com/", false},
		{"no trailing slash to begin with", "https://example.com/path", "https://example.com/path", false},
		{"remove fragment", "https://example.com/path#section", "https://example.com/path", false},
		{"sort query params", "https://example.com/path?z=1&a=2", "https://example.com/path?a=2&z=1", false},
		{"does not strip utm params", "https://example.com/path?utm_source=twitter&id=1", "https://example.com/path?id=1&utm_source=twitter", false},
		{
			"repeated keys keep relative order",
			"https://example.com/path?b=2&a=y&a=x&b=1",
			"https://example.com/path?a=y&a=x&b=2&b=1",
			false,
		},
		{"empty string", "", "", true},
		{"invalid url", "://not-a-url", "", true},
		{"missing scheme", "example.com/path", "", true},
		{"ftp scheme rejected", "ftp://example.com/file", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalize.URL(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("URL(%q): expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("URL(%q): unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("URL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestURLIdempotent(t *testing.T) {
	inputs := []string{
		"HTTP://Example.com/Path/?z=1&a=2#frag",
		"https://example.com/",
		"https://example.com/a/b?x=1&x=2",
	}
	for _, in := range inputs {
		once, err := normalize.URL(in)
		if err != nil {
			t.Fatalf("URL(%q): unexpected error: %v", in, err)
		}
		twice, err := normalize.URL(once)
		if err != nil {
			t.Fatalf("URL(%q) second pass: unexpected error: %v", once, err)
		}
		if once != twice {
			t.Errorf("normalize not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestHashDeterministicAndSensitive(t *testing.T) {
	a, err := normalize.URL("https://example.com/path?a=1&b=2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := normalize.URL("HTTPS://EXAMPLE.com/path/?b=2&a=1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a != b {
		t.Fatalf("expected equivalent URLs to normalize identically: %q vs %q", a, b)
	}
	if normalize.Hash(a) != normalize.Hash(b) {
		t.Errorf("expected identical hash for equivalent normalized URLs")
	}

	c, err := normalize.URL("https://example.com/other-path")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if normalize.Hash(a) == normalize.Hash(c) {
		t.Errorf("expected distinct hash for distinct URLs (false collision in test fixture)")
	}
}

func TestHost(t *testing.T) {
	normalized, err := normalize.URL("https://Example.COM:8080/path")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	host, err := normalize.Host(normalized)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if host != "example.com" {
		t.Errorf("Host() = %q, want %q", host, "example.com")
	}
}
