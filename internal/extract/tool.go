package extract

import (
	"context"
	"fmt"

	"github.com/abdullahdev00/video-downloader/internal/media"
	"github.com/abdullahdev00/video-downloader/internal/platform"
	"github.com/abdullahdev00/video-downloader/pkg/utils/format"
	"github.com/abdullahdev00/video-downloader/pkg/ytdlp"
)

// ToolArgs returns per-platform argument overrides for the external tool.
// Shared with the link resolver so both invocation sites present the same
// identity to a platform.
func ToolArgs(plat platform.Platform) []string {
	args := []string{"--retries", "2", "--socket-timeout", "15"}
	if ref := plat.Referer(); ref != "" {
		args = append(args, "--referer", ref)
	}
	switch plat {
	case platform.Twitter:
		// Syndication API behaves better for anonymous requests.
		args = append(args, "--extractor-args", "twitter:api=syndication")
	case platform.YouTube:
		args = append(args, "--extractor-args", "youtube:player_client=web_safari")
	}
	return args
}

// probeTool invokes the external tool in metadata-dump mode and builds the
// real quality ladder from the declared stream list.
func (e *Extractor) probeTool(ctx context.Context, mediaURL string, plat platform.Platform) (*media.VideoMetadata, error) {
	rec, res, err := e.Tool.DumpJSON(ctx, e.Opts.toolTimeout(), mediaURL, ToolArgs(plat)...)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		if reason, blocked := classifyBlocked(res); blocked {
			return nil, &blockedError{platform: plat, reason: reason}
		}
		return nil, fmt.Errorf("tool probe failed (exit %d): %s", res.ExitCode, res.StderrTail(5))
	}

	meta := &media.VideoMetadata{
		URL:          mediaURL,
		Platform:     plat,
		Title:        rec.Title,
		ThumbnailURL: rec.Thumbnail,
		Uploader:     uploaderOf(rec),
		ViewCount:    rec.ViewCount,
		Qualities:    ladderFromFormats(rec.Formats),
	}
	if rec.Duration > 0 {
		meta.Duration = format.Duration(rec.Duration)
	}
	if meta.Title == "" {
		meta.Title = rec.ID
	}
	return meta, nil
}

func uploaderOf(rec *ytdlp.Record) string {
	if rec.Uploader != "" {
		return rec.Uploader
	}
	return rec.Channel
}

// ladderFromFormats folds the tool's declared streams into a quality ladder.
// Entries with known sizes win over unknown, mp4 over other containers; the
// audio-only entry is synthesized from the best audio stream.
func ladderFromFormats(formats []ytdlp.Format) media.Ladder {
	var ladder media.Ladder

	var bestAudio *ytdlp.Format
	for i, f := range formats {
		if f.VCodec != "none" && f.Height > 0 {
			ladder = ladder.Merge(media.QualityOption{
				Label:     media.LabelForHeight(f.Height),
				Container: f.Ext,
				SizeBytes: f.SizeBytes(),
			})
			continue
		}
		if f.ACodec != "" && f.ACodec != "none" && (f.VCodec == "none" || f.VCodec == "") {
			if bestAudio == nil || f.TBR > bestAudio.TBR {
				bestAudio = &formats[i]
			}
		}
	}

	audio := media.QualityOption{Label: media.AudioOnlyLabel, Container: "mp3"}
	if bestAudio != nil {
		audio.SizeBytes = bestAudio.SizeBytes()
	}
	ladder = ladder.Merge(audio)

	if len(ladder) == 1 && bestAudio == nil {
		// Nothing declared at all; fall back to the placeholder set so the
		// caller still gets a selectable ladder.
		return media.GenericLadder()
	}
	return ladder
}
