package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/abdullahdev00/video-downloader/cmd/web/internal/web"
	"github.com/abdullahdev00/video-downloader/internal/config"
	"github.com/abdullahdev00/video-downloader/internal/extract"
	"github.com/abdullahdev00/video-downloader/internal/fetch"
	"github.com/abdullahdev00/video-downloader/internal/proxy"
	"github.com/abdullahdev00/video-downloader/internal/resolve"
	"github.com/abdullahdev00/video-downloader/internal/store"
	"github.com/abdullahdev00/video-downloader/internal/tasks"
	"github.com/abdullahdev00/video-downloader/pkg/ytdlp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "error", err)
	}

	slog.Info("Starting web service")

	conf, err := config.LoadConfig(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var metadata store.MetadataStore
	var history store.HistoryStore
	if conf.DatabaseDSN != "" {
		pg, err := store.OpenPostgres(ctx, conf.DatabaseDSN, conf.DatabaseRetries)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		metadata, history = pg, pg
	} else {
		slog.Info("DATABASE_DSN not set; using in-memory store")
		mem := store.NewMemory()
		metadata, history = mem, mem
	}

	tool := &ytdlp.Client{
		Path:               conf.YtdlpPath,
		CookiesFile:        conf.CookiesFile,
		CookiesFromBrowser: conf.CookiesFromBrowser,
		DefaultTimeout:     time.Duration(conf.ToolTimeoutSeconds) * time.Second,
	}
	if conf.FfmpegPath != "" {
		tool.ExtraArgs = append(tool.ExtraArgs, "--ffmpeg-location", conf.FfmpegPath)
	}

	// Probes get a tight budget; relays stream whole files and need their own
	// client with a much longer one.
	probeClient, err := fetch.NewBrowserClient(time.Duration(conf.ProbeTimeoutSeconds+1) * time.Second)
	if err != nil {
		slog.Error("failed to build probe http client", "error", err)
		os.Exit(1)
	}
	relayClient, err := fetch.NewRelayClient()
	if err != nil {
		slog.Error("failed to build relay http client", "error", err)
		os.Exit(1)
	}

	runner := tasks.New(time.Duration(conf.ToolTimeoutSeconds) * time.Second)
	defer runner.Close(10 * time.Second)

	extractor := &extract.Extractor{
		HTTP:  probeClient,
		Tool:  tool,
		Store: metadata,
		Tasks: runner,
		Opts: extract.Options{
			ProbeTimeout:   time.Duration(conf.ProbeTimeoutSeconds) * time.Second,
			ToolTimeout:    time.Duration(conf.ToolTimeoutSeconds) * time.Second,
			SampleFallback: conf.SampleFallbackEnabled,
		},
	}

	resolver := &resolve.Resolver{
		Tool:     tool,
		ToolArgs: extract.ToolArgs,
		Opts: resolve.Options{
			ToolTimeout:    time.Duration(conf.ToolTimeoutSeconds) * time.Second,
			SampleFallback: conf.SampleFallbackEnabled,
			SampleURL:      conf.SampleMediaURL,
		},
	}

	streamer := &proxy.Proxy{
		Resolver: resolver,
		Tool:     tool,
		HTTP:     relayClient,
		Cache:    metadata,
		ToolArgs: extract.ToolArgs,
		Opts:     proxy.Options{TmpDir: conf.TmpDir},
	}

	e, err := web.NewWebserver(ctx, &web.Services{
		Config:      conf,
		Extractor:   extractor,
		Proxy:       streamer,
		Metadata:    metadata,
		History:     history,
		ToolVersion: tool.Version,
	})
	if err != nil {
		slog.Error("failed to create webserver", "error", err)
		os.Exit(1)
	}

	addr := ":" + strconv.Itoa(conf.WebServerPort)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	slog.Info("Listening", "addr", addr)
	if err := e.Start(addr); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		// Echo returns an error on Shutdown; treat it as normal if context is done.
		if ctx.Err() != nil {
			return
		}
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
