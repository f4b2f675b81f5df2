package history_api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abdullahdev00/video-downloader/cmd/web/handlers/common"
	"github.com/abdullahdev00/video-downloader/internal/store"
)

// HandleClear wipes the whole download history.
func HandleClear(history store.HistoryStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := history.Clear(c.Request().Context()); err != nil {
			return common.ErrInternal("could not clear history")
		}
		return c.NoContent(http.StatusNoContent)
	}
}
