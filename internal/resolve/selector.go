package resolve

import (
	"fmt"
	"strings"

	"github.com/abdullahdev00/video-downloader/internal/media"
	"github.com/abdullahdev00/video-downloader/internal/platform"
)

// permissiveSelector accepts anything the platform will hand over. Used by
// the format-unavailable retry rung.
const permissiveSelector = "best/bestvideo+bestaudio"

// audioSelector routes audio-only requests; actual extraction mode is chosen
// by the invocation, not the selector.
const audioSelector = "bestaudio/best"

// BuildSelector translates a quality label and preferred container into the
// tool's format selector expression. Preference order: exact height ceiling
// with container and HTTP delivery, then height ceiling alone, then container
// alone, then anything. Sparse-catalog platforms trade the strict container
// match for any HTTP-delivered stream.
func BuildSelector(plat platform.Platform, quality, container string) string {
	if quality == media.AudioOnlyLabel {
		return audioSelector
	}

	if container == "" {
		container = "mp4"
	}
	height := media.HeightForLabel(quality)

	if plat.SparseCatalog() {
		if height > 0 {
			return fmt.Sprintf("best[height<=%d][protocol^=http]/best[height<=%d]/best", height, height)
		}
		return "best[protocol^=http]/best"
	}

	if height > 0 {
		return strings.Join([]string{
			fmt.Sprintf("bestvideo[height<=%d][ext=%s]+bestaudio[ext=m4a]", height, container),
			fmt.Sprintf("best[height<=%d][ext=%s][protocol^=http]", height, container),
			fmt.Sprintf("best[height<=%d]", height),
			fmt.Sprintf("best[ext=%s]", container),
			"best",
		}, "/")
	}

	return fmt.Sprintf("best[ext=%s]/best", container)
}
