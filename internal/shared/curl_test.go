package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseCurlCommand(t *testing.T) {
	tt := []struct {
		name        string
		curlCmd     string
		wantHeaders map[string]string
		wantCookie  string
		wantErr     bool
	}{
		{
			name:    "single header with single quotes",
			curlCmd: `curl -H 'Authorization: Bearer token123' https://api.example.com`,
			wantHeaders: map[string]string{
				"Authorization": "Bearer token123",
			},
			wantCookie: "",
			wantErr:    false,
		},
		{
			name:    "single header with double quotes",
			curlCmd: `curl -H "Authorization: Bearer token123" https://api.example.com`,
			wantHeaders: map[string]string{
				"Authorization": "Bearer token123",
			},
			wantCookie: "",
			wantErr:    false,
		},
		{
			name:    "multiple headers",
			curlCmd: `curl -H 'Content-Type: application/json' -H 'Authorization: Bearer token' https://api.example.com`,
			wantHeaders: map[string]string{
				"Content-Type":  "application/json",
				"Authorization": "Bearer token",
			},
			wantCookie: "",
			wantErr:    false,
		},
		{
			name:        "cookie in -b flag",
			curlCmd:     `curl -b 'session=abc123' https://api.example.com`,
			wantHeaders: map[string]string{},
			wantCookie:  "session=abc123",
			wantErr:     false,
		},
		{
			name:        "cookie in -H header",
			curlCmd:     `curl -H 'Cookie: session=abc123; token=xyz' https://api.example.com`,
			wantHeaders: map[string]string{},
			wantCookie:  "session=abc123; token=xyz",
			wantErr:     false,
		},
		{
			name:    "cookie header is excluded from regular headers",
			curlCmd: `curl -H 'Cookie: session=abc123' -H 'Authorization: Bearer token' https://api.example.com`,
			wantHeaders: map[string]string{
				"Authorization": "Bearer token",
			},
			wantCookie: "session=abc123",
			wantErr:    false,
		},
		{
			name: "multiline curl with backslashes",
			curlCmd: `curl -H 'Authorization: Bearer token' \
-H 'Content-Type: application/json' \
https://api.example.com`,
			wantHeaders: map[string]string{
				"Authorization": "Bearer token",
				"Content-Type":  "application/json",
			},
			wantCookie: "",
			wantErr:    false,
		},
		{
			name:        "-b cookie takes precedence over -H cookie",
			curlCmd:     `curl -H 'Cookie: old=value' -b 'new=value' https://api.example.com`,
			wantHeaders: map[string]string{},
			wantCookie:  "new=value",
			wantErr:     false,
		},
		{
			name:    "no headers or cookies",
			curlCmd: `curl https://api.example.com`,
			wantErr: true,
		},
		{
			name:    "empty command",
			curlCmd: "",
			wantErr: true,
		},
		{
			name: "complex real-world example",
			curlCmd: `curl 'https://music.youtube.com/youtubei/v1/browse' \
  -H 'accept: */*' \
  -H 'accept-language: en-US,en;q=0.9' \
  -H 'authorization: SAPISIDHASH token_here' \
  -H 'content-type: application/json' \
  -H 'cookie: SAPISID=xyz; CONSENT=YES' \
  --data-raw '{"context":{}}'`,
			wantHeaders: map[string]string{
				"accept":          "*/*",
				"accept-language": "en-US,en;q=0.9",
				"authorization":   "SAPISIDHASH token_here",
				"content-type":    "application/json",
			},
			wantCookie: "SAPISID=xyz; CONSENT=YES",
			wantErr:    false,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseCurlCommand([]byte(tc.curlCmd))

			if (err != nil) != tc.wantErr {
				t.Errorf("ParseCurlCommand() error = %v, wantErr %v", err, tc.wantErr)
				return
			}

			if tc.wantErr {
				return
			}

			if result == nil {
				t.Fatal("ParseCurlCommand() returned nil result")
			}

			if len(result.Headers) != len(tc.wantHeaders) {
				t.Errorf("ParseCurlCommand() headers count = %v, want %v", len(result.Headers), len(tc.wantHeaders))
			}

			for key, want := range tc.wantHeaders {
				if got := result.Headers[key]; got != want {
					t.Errorf("ParseCurlCommand() header[%s] = %v, want %v", key, got, want)
				}
			}

			if result.Cookie != tc.wantCookie {
				t.Errorf("ParseCurlCommand() cookie = %v, want %v", result.Cookie, tc.wantCookie)
			}
		})
	}
}

func TestParseCurlFile(t *testing.T) {
	t.Run("successful file parse", func(t *testing.T) {
		tmpDir := t.TempDir()
		curlFile := filepath.Join(tmpDir, "curl.sh")

		curlCmd := `curl -H 'Authorization: Bearer token123' -H 'Content-Type: application/json' https://api.example.com`
		if err := os.WriteFile(curlFile, []byte(curlCmd), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}

		result, err := ParseCurlFile(curlFile)
		if err != nil {
			t.Fatalf("ParseCurlFile() error = %v", err)
		}

		if len(result.Headers) != 2 {
			t.Errorf("ParseCurlFile() headers count = %v, want 2", len(result.Headers))
		}

		if result.Headers["Authorization"] != "Bearer token123" {
			t.Errorf("ParseCurlFile() Authorization = %v, want %v", result.Headers["Authorization"], "Bearer token123")
		}
	})

	t.Run("file does not exist", func(t *testing.T) {
		_, err := ParseCurlFile("/nonexistent/file.sh")
		if err == nil {
			t.Error("ParseCurlFile() expected error for nonexistent file")
		}
	})

	t.Run("file with no valid headers", func(t *testing.T) {
		tmpDir := t.TempDir()
		curlFile := filepath.Join(tmpDir, "invalid.sh")

		if err := os.WriteFile(curlFile, []byte("curl https://example.com"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}

		_, err := ParseCurlFile(curlFile)
		if err == nil {
			t.Error("ParseCurlFile() expected error for file with no headers")
		}
	})
}

func TestParseRawHeaders(t *testing.T) {
	t.Run("parses key-value lines and extracts cookie", func(t *testing.T) {
		raw := "Authorization: SAPISIDHASH abc\nCookie: SAPISID=xyz; CONSENT=YES\nX-Origin: https://music.youtube.com\n"

		result, err := ParseRawHeaders(raw)
		if err != nil {
			t.Fatalf("ParseRawHeaders() error = %v", err)
		}

		if result.Headers["Authorization"] != "SAPISIDHASH abc" {
			t.Errorf("unexpected Authorization: %v", result.Headers["Authorization"])
		}
		if result.Cookie != "SAPISID=xyz; CONSENT=YES" {
			t.Errorf("unexpected cookie: %v", result.Cookie)
		}
		if _, ok := result.Headers["Cookie"]; ok {
			t.Error("cookie should not appear in Headers")
		}
	})

	t.Run("skips pseudo-headers and blank lines", func(t *testing.T) {
		raw := ":authority: music.youtube.com\n\nAccept: */*\n"

		result, err := ParseRawHeaders(raw)
		if err != nil {
			t.Fatalf("ParseRawHeaders() error = %v", err)
		}

		if len(result.Headers) != 1 || result.Headers["Accept"] != "*/*" {
			t.Errorf("unexpected headers: %v", result.Headers)
		}
	})

	t.Run("rejects empty input", func(t *testing.T) {
		if _, err := ParseRawHeaders("\n\n"); err == nil {
			t.Error("expected error for empty input")
		}
	})
}

func TestCurlHeadersToHeaderMap(t *testing.T) {
	headers := &CurlHeaders{
		Headers: map[string]string{
			"Authorization": "SAPISIDHASH abc",
			"X-Origin":      "https://music.youtube.com",
		},
		Cookie: "SAPISID=xyz",
	}

	got := headers.ToHeaderMap()

	if got["Authorization"] != "SAPISIDHASH abc" {
		t.Errorf("missing Authorization, got %v", got)
	}
	if got["Cookie"] != "SAPISID=xyz" {
		t.Errorf("expected cookie under canonical key, got %v", got)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 entries, got %d", len(got))
	}
}

func TestCurlRoundTrip(t *testing.T) {
	// headers captured from a cURL command survive a raw-text round trip
	curlCmd := `curl -H 'Authorization: SAPISIDHASH abc' -H 'Cookie: SAPISID=xyz' https://music.youtube.com`

	parsed, err := ParseCurlCommand([]byte(curlCmd))
	if err != nil {
		t.Fatalf("ParseCurlCommand() error = %v", err)
	}

	reparsed, err := ParseRawHeaders(parsed.ToHeadersRaw())
	if err != nil {
		t.Fatalf("ParseRawHeaders() error = %v", err)
	}

	if reparsed.Headers["Authorization"] != "SAPISIDHASH abc" {
		t.Errorf("authorization lost in round trip: %v", reparsed.Headers)
	}
	if reparsed.Cookie != "SAPISID=xyz" {
		t.Errorf("cookie lost in round trip: %q", reparsed.Cookie)
	}

	if !strings.Contains(parsed.ToHeadersRaw(), "cookie: SAPISID=xyz") {
		t.Errorf("raw form missing cookie line: %s", parsed.ToHeadersRaw())
	}
}
