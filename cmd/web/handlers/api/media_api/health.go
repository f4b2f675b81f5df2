package media_api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// VersionFunc reports the external tool's version string.
type VersionFunc func(ctx context.Context) (string, error)

// HandleHealthz answers liveness probes. The tool version is best effort; the
// service is alive even when the binary is missing.
func HandleHealthz(version VersionFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp := map[string]string{"status": "ok"}
		if version != nil {
			if v, err := version(c.Request().Context()); err == nil {
				resp["ytdlp_version"] = v
			} else {
				resp["ytdlp_version"] = "unavailable"
			}
		}
		return c.JSON(http.StatusOK, resp)
	}
}
