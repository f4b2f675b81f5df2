package media

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// AudioOnlyLabel is the fixed label for the audio extraction option. It always
// sorts last in a ladder.
const AudioOnlyLabel = "Audio Only"

// QualityOption describes one downloadable rendition of a video.
type QualityOption struct {
	Label     string `json:"label"`
	Container string `json:"container"`
	// SizeBytes is the estimated file size. Zero means unknown.
	SizeBytes int64 `json:"size_bytes,omitempty"`
}

// SizeEstimate renders the size for display, or "unknown" when no estimate
// is available.
func (q QualityOption) SizeEstimate() string {
	if q.SizeBytes <= 0 {
		return "unknown"
	}
	return humanize.Bytes(uint64(q.SizeBytes))
}

// IsAudio reports whether the option is the audio-only rendition.
func (q QualityOption) IsAudio() bool {
	return q.Label == AudioOnlyLabel || q.Container == "mp3"
}

var heightRe = regexp.MustCompile(`(\d{3,4})p`)

// HeightForLabel parses the resolution encoded in a quality label, e.g.
// "1080p HD" or "4K (2160p)". It returns 0 when the label carries no height
// (audio options, "best available").
func HeightForLabel(label string) int {
	m := heightRe.FindStringSubmatch(label)
	if m == nil {
		return 0
	}
	h, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return h
}

// LabelForHeight maps a stream height to the canonical ladder label.
func LabelForHeight(height int) string {
	switch {
	case height >= 2160:
		return "4K (2160p)"
	case height >= 1440:
		return "1440p (2K)"
	case height >= 1080:
		return "1080p HD"
	case height >= 720:
		return "720p HD"
	case height >= 480:
		return "480p"
	default:
		return "360p"
	}
}

// Ladder is the ordered set of quality options for a video: at most one entry
// per label, highest resolution first, audio-only last.
type Ladder []QualityOption

// GenericLadder returns the fixed placeholder ladder used when a probe cannot
// see real streams. Sizes are unknown.
func GenericLadder() Ladder {
	return Ladder{
		{Label: "4K (2160p)", Container: "mp4"},
		{Label: "1440p (2K)", Container: "mp4"},
		{Label: "1080p HD", Container: "mp4"},
		{Label: "720p HD", Container: "mp4"},
		{Label: "480p", Container: "mp4"},
		{Label: "360p", Container: "mp4"},
		{Label: AudioOnlyLabel, Container: "mp3"},
	}
}

// Merge folds incoming options into the ladder, keyed by label. A more
// complete entry replaces a placeholder of the same label: known size beats
// unknown, and mp4 beats any other container when sizes tie. Merging the same
// options twice is a no-op.
func (l Ladder) Merge(incoming ...QualityOption) Ladder {
	out := make(Ladder, len(l))
	copy(out, l)

	for _, opt := range incoming {
		if strings.TrimSpace(opt.Label) == "" {
			continue
		}
		idx := -1
		for i, have := range out {
			if have.Label == opt.Label {
				idx = i
				break
			}
		}
		if idx < 0 {
			out = append(out, opt)
			continue
		}
		if preferOption(opt, out[idx]) {
			out[idx] = opt
		}
	}

	out.sortOptions()
	return out
}

// preferOption reports whether candidate should replace current for the same
// label.
func preferOption(candidate, current QualityOption) bool {
	if candidate.SizeBytes > 0 && current.SizeBytes <= 0 {
		return true
	}
	if candidate.SizeBytes <= 0 && current.SizeBytes > 0 {
		return false
	}
	if candidate.Container == "mp4" && current.Container != "mp4" && !current.IsAudio() {
		return true
	}
	return false
}

func (l Ladder) sortOptions() {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i], l[j]
		if a.IsAudio() != b.IsAudio() {
			return !a.IsAudio()
		}
		return HeightForLabel(a.Label) > HeightForLabel(b.Label)
	})
}

// Find returns the option with the given label, if present.
func (l Ladder) Find(label string) (QualityOption, bool) {
	for _, opt := range l {
		if opt.Label == label {
			return opt, true
		}
	}
	return QualityOption{}, false
}
