package media_api

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/abdullahdev00/video-downloader/cmd/web/handlers/common"
	"github.com/abdullahdev00/video-downloader/internal/proxy"
	"github.com/abdullahdev00/video-downloader/internal/store"
)

// HandleDownload streams the requested media through the proxy. Query
// parameters select the quality and container; a "token" parameter, when
// present, is echoed back as the transfer-start cookie the moment bytes
// begin to flow.
func HandleDownload(p *proxy.Proxy, history store.HistoryStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		url, err := common.RequireMediaURL(c)
		if err != nil {
			return err
		}

		req := proxy.Request{
			URL:         url,
			Quality:     strings.TrimSpace(c.QueryParam("quality")),
			Container:   strings.TrimSpace(c.QueryParam("container")),
			RangeHeader: c.Request().Header.Get("Range"),
			StartToken:  strings.TrimSpace(c.QueryParam("token")),
			Compat:      c.QueryParam("compat") == "1" || c.QueryParam("compat") == "true",
		}

		res, err := p.Stream(c.Request().Context(), c.Response(), req)
		if err != nil {
			slog.Warn("stream failed before first byte", "url", url, "error", err)
			return common.MapMediaError(err)
		}

		if res.BytesSent > 0 {
			rec := store.HistoryRecord{
				ID:         uuid.New(),
				URL:        url,
				Quality:    req.Quality,
				Container:  req.Container,
				ResolvedAt: time.Now().UTC(),
			}
			if meta, err := p.Cache.Get(c.Request().Context(), url); err == nil && meta != nil {
				rec.Platform = meta.Platform
				rec.Title = meta.Title
			}
			if err := history.Append(c.Request().Context(), rec); err != nil {
				slog.Warn("could not record download history", "url", url, "error", err)
			}
		}

		return nil
	}
}
