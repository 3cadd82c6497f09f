package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rubiojr/reposearch/pkg/api"
	"github.com/rubiojr/reposearch/pkg/config"
	"github.com/rubiojr/reposearch/pkg/history"
	"github.com/rubiojr/reposearch/pkg/realtime"
	"github.com/urfave/cli/v3"
)

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides server.addr)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, c.String("config"), c.String("addr"))
		},
	}
}

// serve runs the API until interrupted, reloading the search client when
// the config file changes.
func serve(ctx context.Context, configPath, addr string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	client, err := newSearchClient(cfg)
	if err != nil {
		return fmt.Errorf("creating search client: %w", err)
	}

	hub := realtime.NewHub(0)
	opts := api.Options{
		Searcher: client,
		PerPage:  client.PerPage(),
		Builder:  builderFor(cfg),
		Hub:      hub,
	}
	if cfg.HistoryEnabled() {
		store, closeFn, err := openHistory(cfg, history.WithObserver(hub.PublishHistory))
		if err != nil {
			return err
		}
		defer func() {
			if err := closeFn(); err != nil {
				logger.Warnf("failed to close history database: %v", err)
			}
		}()
		opts.History = store
	}

	server := api.NewServer(opts)
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           api.CorsMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on http://%s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	var watchEvents <-chan fsnotify.Event
	var watchErrors <-chan error
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warnf("failed to create config file watcher: %v", err)
	} else {
		defer func() {
			if err := watcher.Close(); err != nil {
				logger.Warnf("failed to close config file watcher: %v", err)
			}
		}()
		if err := watcher.Add(configPath); err != nil {
			logger.Warnf("failed to watch config file %s: %v", configPath, err)
		} else {
			logger.Infof("watching config file for changes: %s", configPath)
		}
		watchEvents = watcher.Events
		watchErrors = watcher.Errors
	}

	reload := func(reason string) {
		logger.Infof("%s, reloading configuration...", reason)
		if err := reloadSearcher(configPath, server); err != nil {
			logger.Errorf("failed to reload configuration: %v", err)
			return
		}
		logger.Infof("configuration reloaded")
	}

	for {
		select {
		case <-ctx.Done():
			return shutdown(httpServer)
		case err := <-errCh:
			return fmt.Errorf("serving API: %w", err)
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				reload("received SIGHUP")
				continue
			}
			return shutdown(httpServer)
		case event, ok := <-watchEvents:
			if !ok {
				watchEvents = nil
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			// Editors often replace the file atomically.
			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				time.Sleep(200 * time.Millisecond)
				if _, err := os.Stat(configPath); os.IsNotExist(err) {
					logger.Warnf("config file was removed and not replaced, skipping reload")
					continue
				}
				if err := watcher.Add(configPath); err != nil {
					logger.Warnf("failed to re-add config file to watcher: %v", err)
				}
			} else {
				time.Sleep(100 * time.Millisecond)
			}
			reload(fmt.Sprintf("config file changed (%s)", event.Op))
		case err, ok := <-watchErrors:
			if !ok {
				watchErrors = nil
				continue
			}
			logger.Warnf("config file watcher error: %v", err)
		}
	}
}

// reloadSearcher rebuilds the search client from the config file. Storage
// and listen address changes need a restart.
func reloadSearcher(configPath string, server *api.Server) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading new config: %w", err)
	}
	client, err := newSearchClient(cfg)
	if err != nil {
		return fmt.Errorf("creating search client: %w", err)
	}
	server.SetSearcher(client, client.PerPage(), builderFor(cfg))
	return nil
}

func shutdown(srv *http.Server) error {
	logger.Infof("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
