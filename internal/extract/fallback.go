package extract

import (
	"fmt"
	"strings"

	"github.com/abdullahdev00/video-downloader/internal/media"
	"github.com/abdullahdev00/video-downloader/internal/platform"
	"github.com/abdullahdev00/video-downloader/pkg/ytdlp"
)

// blockedError marks a tool failure whose stderr matches a known auth or
// privacy wall. It is the trigger for the synthetic degradation path.
type blockedError struct {
	platform platform.Platform
	reason   string
}

func (e *blockedError) Error() string {
	return fmt.Sprintf("extract: %s blocked extraction: %s", e.platform, e.reason)
}

// Signatures that mean the platform refused us, not that the tool broke.
var blockedSignatures = []string{
	"sign in to confirm",
	"login required",
	"log in or sign up",
	"requires authentication",
	"use --cookies",
	"this content isn't available",
	"private video",
	"private account",
	"account is private",
	"video unavailable",
	"blocked",
	"http error 401",
	"http error 403",
	"403: forbidden",
	"rate-limit reached",
}

// classifyBlocked inspects the tool's stderr for auth/privacy signatures.
func classifyBlocked(res *ytdlp.Result) (string, bool) {
	if res == nil {
		return "", false
	}
	stderr := strings.ToLower(string(res.Stderr))
	for _, sig := range blockedSignatures {
		if strings.Contains(stderr, sig) {
			return sig, true
		}
	}
	return "", false
}

// syntheticMetadata builds the clearly-labeled placeholder served when
// extraction is blocked and degradation is enabled.
func syntheticMetadata(url string, plat platform.Platform) *media.VideoMetadata {
	return &media.VideoMetadata{
		URL:       url,
		Platform:  plat,
		Title:     fmt.Sprintf("Sample Video (%s)", plat.DisplayName()),
		Description: fmt.Sprintf(
			"%s blocked metadata extraction for this link. Showing demo content; downloads will use a sample clip.",
			plat.DisplayName()),
		Duration:  "0:30",
		Uploader:  "Demo",
		Qualities: media.GenericLadder(),
		Synthetic: true,
	}
}
