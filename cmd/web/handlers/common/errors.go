package common

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abdullahdev00/video-downloader/internal/media"
	"github.com/abdullahdev00/video-downloader/internal/platform"
)

// ErrBadRequest returns a 400 Bad Request error.
func ErrBadRequest(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

// ErrNotFound returns a 404 Not Found error.
func ErrNotFound(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusNotFound, msg)
}

// ErrInternal returns a 500 Internal Server Error.
func ErrInternal(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusInternalServerError, msg)
}

// MapMediaError translates pipeline errors into HTTP errors. Anything not
// recognized surfaces as a 500 so echo's error handler logs it.
func MapMediaError(err error) *echo.HTTPError {
	var extractErr *media.ExtractionFailedError
	var linkErr *media.LinkResolutionError
	var fetchErr *media.UpstreamFetchError
	var transcodeErr *media.TranscodeError

	switch {
	case errors.Is(err, platform.ErrUnsupported):
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported platform")
	case errors.As(err, &extractErr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "metadata extraction failed")
	case errors.As(err, &linkErr):
		return echo.NewHTTPError(http.StatusBadGateway, "could not resolve a download link")
	case errors.As(err, &fetchErr):
		return echo.NewHTTPError(http.StatusBadGateway, "upstream media fetch failed")
	case errors.As(err, &transcodeErr):
		return echo.NewHTTPError(http.StatusInternalServerError, "transcode failed")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
