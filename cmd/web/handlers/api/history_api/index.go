// package history_api exposes the download history endpoints.
package history_api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/abdullahdev00/video-downloader/cmd/web/handlers/common"
	"github.com/abdullahdev00/video-downloader/internal/store"
)

type historyResponse struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Platform   string `json:"platform"`
	Title      string `json:"title"`
	Quality    string `json:"quality"`
	Container  string `json:"container"`
	ResolvedAt string `json:"resolved_at"`
}

// HandleIndex lists past downloads, newest first.
func HandleIndex(history store.HistoryStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		recs, err := history.List(c.Request().Context())
		if err != nil {
			return common.ErrInternal("could not list history")
		}

		out := make([]historyResponse, 0, len(recs))
		for _, r := range recs {
			out = append(out, historyResponse{
				ID:         r.ID.String(),
				URL:        r.URL,
				Platform:   string(r.Platform),
				Title:      r.Title,
				Quality:    r.Quality,
				Container:  r.Container,
				ResolvedAt: r.ResolvedAt.Format(time.RFC3339),
			})
		}
		return c.JSON(http.StatusOK, out)
	}
}
