package services

import (
	"regexp"
	"strconv"
	"strings"
)

// Title keywords that flag alternate cuts of a track. Remaster detection
// also catches reissue years in titles ("... (2023 Remaster)" style uploads
// often carry only the year).
var (
	remixKeywords    = []string{"remix", "rmx", "rework", "bootleg", "edit"}
	remasterKeywords = []string{"remaster", "remastered", "2020", "2021", "2022", "2023", "2024", "2025"}
	albumKeywords    = []string{"full album", "complete album", "album completo"}
)

// fullAlbumDuration is the length past which an upload is assumed to be a
// whole album rather than a single track.
const fullAlbumDuration = 20 * 60

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// titleIsRemix reports whether a video title names an alternate cut.
func titleIsRemix(title string) bool {
	return containsAny(title, remixKeywords)
}

// titleIsRemaster reports whether a video title names a remastered release.
func titleIsRemaster(title string) bool {
	return containsAny(title, remasterKeywords)
}

// looksLikeFullAlbum flags uploads that are whole albums, by title or by
// length.
func looksLikeFullAlbum(title string, durationSeconds int) bool {
	return containsAny(title, albumKeywords) || durationSeconds >= fullAlbumDuration
}

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts the Data API's ISO 8601 duration ("PT4M13S")
// to seconds. Malformed input parses to zero.
func parseISODuration(s string) int {
	m := isoDurationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}

	total := 0
	if m[1] != "" {
		h, _ := strconv.Atoi(m[1])
		total += h * 3600
	}
	if m[2] != "" {
		min, _ := strconv.Atoi(m[2])
		total += min * 60
	}
	if m[3] != "" {
		sec, _ := strconv.Atoi(m[3])
		total += sec
	}

	return total
}

// parseClockDuration converts the web client's "h:mm:ss" or "m:ss" text to
// seconds. Malformed input parses to zero.
func parseClockDuration(s string) int {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0
		}
		total = total*60 + n
	}

	return total
}

// parseCount reads a numeric count that providers render as either a JSON
// string or a label like "1,234,567 views".
func parseCount(s string) int64 {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
		if r == ' ' && digits.Len() > 0 {
			break
		}
	}
	if digits.Len() == 0 {
		return 0
	}

	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
