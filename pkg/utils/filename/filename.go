// Package filename builds safe download filenames from untrusted titles.
package filename

import (
	"mime"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// invalidCharsRe matches characters not safe for filenames across all major OSes.
var invalidCharsRe = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// multiDash collapses runs of dashes/underscores.
var multiDash = regexp.MustCompile(`[-_]{2,}`)

// Sanitize converts an arbitrary string into a filename-safe form. Invalid
// filesystem characters are replaced, whitespace is collapsed to single
// spaces, and the output is truncated to maxLen bytes (0 defaults to 120).
// Leading/trailing dashes and dots are stripped.
func Sanitize(name string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 120
	}

	s := strings.TrimSpace(name)
	if s == "" {
		return ""
	}

	// Collapse whitespace before replacing invalid characters, otherwise the
	// control-character class would turn tabs and newlines into dashes.
	s = strings.Join(strings.Fields(s), " ")
	s = invalidCharsRe.ReplaceAllString(s, "-")
	s = multiDash.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-. ")

	if len(s) > maxLen {
		s = s[:maxLen]
		s = strings.TrimRight(s, "-. ")
	}
	return s
}

var knownExts = map[string]bool{
	"mp4": true, "webm": true, "mkv": true, "mov": true, "avi": true,
	"m4a": true, "mp3": true, "aac": true, "opus": true, "ogg": true,
	"flv": true, "3gp": true, "ts": true,
}

// ExtFromURL extracts a recognized media extension from a URL path, without
// the leading dot. Returns "" when the path carries none.
func ExtFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	if knownExts[ext] {
		return ext
	}
	return ""
}

// ExtFromContentType maps a MIME type to a media extension, without the
// leading dot. Returns "" for unrecognized types.
func ExtFromContentType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch mt {
	case "video/mp4":
		return "mp4"
	case "video/webm":
		return "webm"
	case "video/x-matroska":
		return "mkv"
	case "video/quicktime":
		return "mov"
	case "audio/mpeg":
		return "mp3"
	case "audio/mp4":
		return "m4a"
	case "audio/ogg", "audio/opus":
		return "ogg"
	}
	return ""
}

// ForDownload builds the attachment filename for a download: sanitized title
// plus an extension chosen from the upstream URL path, else the upstream
// content type, else the requested container.
func ForDownload(title, upstreamURL, contentType, container string) string {
	base := Sanitize(title, 120)
	if base == "" {
		base = "video"
	}
	ext := ExtFromURL(upstreamURL)
	if ext == "" {
		ext = ExtFromContentType(contentType)
	}
	if ext == "" {
		ext = strings.ToLower(strings.TrimPrefix(container, "."))
	}
	if ext == "" {
		ext = "mp4"
	}
	return base + "." + ext
}
