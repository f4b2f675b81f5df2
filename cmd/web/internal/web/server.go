package web

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/abdullahdev00/video-downloader/cmd/web/handlers/api/history_api"
	"github.com/abdullahdev00/video-downloader/cmd/web/handlers/api/media_api"
	"github.com/abdullahdev00/video-downloader/internal/config"
	"github.com/abdullahdev00/video-downloader/internal/extract"
	"github.com/abdullahdev00/video-downloader/internal/proxy"
	"github.com/abdullahdev00/video-downloader/internal/store"
)

// Services bundles the wired application components the handlers depend on.
type Services struct {
	Config      *config.Config
	Extractor   *extract.Extractor
	Proxy       *proxy.Proxy
	Metadata    store.MetadataStore
	History     store.HistoryStore
	ToolVersion media_api.VersionFunc
}

type Webserver struct {
	*echo.Echo
	svc *Services
}

func NewWebserver(ctx context.Context, svc *Services) (*Webserver, error) {
	e := echo.New()

	webserver := &Webserver{
		Echo: e,
		svc:  svc,
	}

	webserver.registerRoutes()

	if err := webserver.setupMiddleware(); err != nil {
		return nil, err
	}

	return webserver, nil
}

func (s *Webserver) setupMiddleware() error {
	s.HideBanner = true
	s.HidePort = true
	s.Use(middleware.BodyLimit("1M"))
	s.Use(middleware.Recover())
	s.Use(middleware.RequestID())
	s.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		// Media bytes must pass through untouched or Range math breaks.
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/api/download"
		},
	}))
	if rps := s.svc.Config.RateLimitRPS; rps > 0 {
		s.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(rps))))
	}
	s.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  false,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				fields = append(fields, "error", v.Error)
			}
			slog.Info("request", fields...)
			return nil
		},
	}))

	return nil
}

func (s *Webserver) registerRoutes() {
	s.GET("/healthz", media_api.HandleHealthz(s.svc.ToolVersion))

	apiGroup := s.Group("/api")
	apiGroup.GET("/platforms", media_api.HandlePlatforms())
	apiGroup.POST("/metadata", media_api.HandleMetadata(s.svc.Extractor))
	apiGroup.GET("/download", media_api.HandleDownload(s.svc.Proxy, s.svc.History))

	apiGroup.GET("/history", history_api.HandleIndex(s.svc.History))
	apiGroup.DELETE("/history/:id", history_api.HandleDelete(s.svc.History))
	apiGroup.DELETE("/history", history_api.HandleClear(s.svc.History))
}
