package history_api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abdullahdev00/video-downloader/cmd/web/handlers/common"
	"github.com/abdullahdev00/video-downloader/internal/store"
)

// HandleDelete removes one history record.
func HandleDelete(history store.HistoryStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := common.RequireUUIDParam(c, "id")
		if err != nil {
			return err
		}

		if err := history.Delete(c.Request().Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return common.ErrNotFound("history record not found")
			}
			return common.ErrInternal("could not delete history record")
		}
		return c.NoContent(http.StatusNoContent)
	}
}
