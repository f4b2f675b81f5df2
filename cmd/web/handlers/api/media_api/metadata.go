// package media_api provides the metadata and streaming endpoints.
package media_api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/abdullahdev00/video-downloader/cmd/web/handlers/common"
	"github.com/abdullahdev00/video-downloader/internal/extract"
	"github.com/abdullahdev00/video-downloader/internal/media"
	"github.com/abdullahdev00/video-downloader/internal/platform"
	"github.com/abdullahdev00/video-downloader/pkg/utils/format"
)

var validate = validator.New()

type metadataRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type qualityResponse struct {
	Label        string `json:"label"`
	Container    string `json:"container"`
	SizeBytes    int64  `json:"size_bytes,omitempty"`
	SizeEstimate string `json:"size_estimate"`
}

type metadataResponse struct {
	URL          string            `json:"url"`
	Platform     platform.Platform `json:"platform"`
	PlatformName string            `json:"platform_name"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	ThumbnailURL string            `json:"thumbnail_url,omitempty"`
	Duration     string            `json:"duration"`
	Uploader     string            `json:"uploader"`
	Views        string            `json:"views,omitempty"`
	Qualities    []qualityResponse `json:"qualities"`
	Synthetic    bool              `json:"synthetic,omitempty"`
}

// HandleMetadata extracts metadata for the media URL in the request body.
func HandleMetadata(extractor *extract.Extractor) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req metadataRequest
		if err := c.Bind(&req); err != nil {
			return common.ErrBadRequest("invalid json")
		}
		if err := validate.Struct(req); err != nil {
			return common.ErrBadRequest("url must be an absolute http(s) URL")
		}

		meta, err := extractor.Extract(c.Request().Context(), req.URL)
		if err != nil {
			slog.Warn("metadata extraction failed", "url", req.URL, "error", err)
			return common.MapMediaError(err)
		}

		return c.JSON(http.StatusOK, toMetadataResponse(meta))
	}
}

func toMetadataResponse(meta *media.VideoMetadata) metadataResponse {
	resp := metadataResponse{
		URL:          meta.URL,
		Platform:     meta.Platform,
		PlatformName: meta.Platform.DisplayName(),
		Title:        meta.Title,
		Description:  meta.Description,
		ThumbnailURL: meta.ThumbnailURL,
		Duration:     meta.Duration,
		Uploader:     meta.Uploader,
		Synthetic:    meta.Synthetic,
	}
	if meta.ViewCount > 0 {
		resp.Views = format.ViewCount(meta.ViewCount)
	}
	for _, q := range meta.Qualities {
		resp.Qualities = append(resp.Qualities, qualityResponse{
			Label:        q.Label,
			Container:    q.Container,
			SizeBytes:    q.SizeBytes,
			SizeEstimate: q.SizeEstimate(),
		})
	}
	return resp
}
