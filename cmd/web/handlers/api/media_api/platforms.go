package media_api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abdullahdev00/video-downloader/internal/platform"
)

type platformResponse struct {
	ID          platform.Platform `json:"id"`
	Name        string            `json:"name"`
	AuthWalled  bool              `json:"auth_walled"`
	AudioOnlyOK bool              `json:"audio_only_ok"`
}

// HandlePlatforms lists the supported platforms and their capabilities.
func HandlePlatforms() echo.HandlerFunc {
	return func(c echo.Context) error {
		var out []platformResponse
		for _, p := range platform.All() {
			out = append(out, platformResponse{
				ID:          p,
				Name:        p.DisplayName(),
				AuthWalled:  p.AuthWalled(),
				AudioOnlyOK: true,
			})
		}
		return c.JSON(http.StatusOK, out)
	}
}
