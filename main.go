package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/camdrv/cmd"
	"github.com/smazurov/camdrv/internal/config"
	"github.com/smazurov/camdrv/internal/events"
	"github.com/smazurov/camdrv/internal/logging"
	"github.com/smazurov/camdrv/internal/metrics"
	"github.com/smazurov/camdrv/internal/monitor"
	"github.com/smazurov/camdrv/internal/profiles"
	"github.com/smazurov/camdrv/internal/systemd"
	"github.com/smazurov/camdrv/internal/version"
	"github.com/smazurov/camdrv/pkg/linuxav/hotplug"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Capture settings
	ProfilesFile string `help:"Capture profiles file" default:"profiles.toml" toml:"capture.profiles_file" env:"PROFILES_FILE"`
	RetryDelay   string `help:"Delay before reopening a failed session" default:"5s" toml:"capture.retry_delay" env:"RETRY_DELAY"`

	// Metrics settings
	MetricsAddr string `help:"Prometheus metrics listen address" default:":9100" toml:"metrics.addr" env:"METRICS_ADDR"`

	// Hotplug settings
	HotplugEnabled bool `help:"Watch for device attach/detach events" default:"true" toml:"hotplug.enabled" env:"HOTPLUG_ENABLED"`

	// Logging settings
	LoggingLevel    string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat   string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingLinuxav  string `help:"Device layer logging level" default:"info" toml:"logging.linuxav" env:"LOGGING_LINUXAV"`
	LoggingMonitor  string `help:"Capture monitor logging level" default:"info" toml:"logging.monitor" env:"LOGGING_MONITOR"`
	LoggingHotplug  string `help:"Hotplug watcher logging level" default:"info" toml:"logging.hotplug" env:"LOGGING_HOTPLUG"`
	LoggingProfiles string `help:"Profiles logging level" default:"info" toml:"logging.profiles" env:"LOGGING_PROFILES"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.Load(opts, nil); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"linuxav":  opts.LoggingLinuxav,
				"monitor":  opts.LoggingMonitor,
				"hotplug":  opts.LoggingHotplug,
				"profiles": opts.LoggingProfiles,
			},
		})

		logger := logging.GetLogger("main")

		retryDelay, err := time.ParseDuration(opts.RetryDelay)
		if err != nil {
			logger.Warn("Invalid retry delay, using 5s", "value", opts.RetryDelay)
			retryDelay = 5 * time.Second
		}

		bus := events.New()
		mon := monitor.New(bus, monitor.WithRetryDelay(retryDelay))

		store := profiles.NewStore(opts.ProfilesFile)
		if err := store.Load(); err != nil {
			logger.Error("Failed to load capture profiles", "error", err, "path", opts.ProfilesFile)
			os.Exit(1)
		}

		// Reload profiles and reconcile sessions when the file changes.
		profilesLoader := func(path string) (map[string]profiles.Profile, error) {
			s := profiles.NewStore(path)
			if err := s.Load(); err != nil {
				return nil, err
			}
			return s.All(), nil
		}
		watcher := config.NewWatcher(
			opts.ProfilesFile,
			profilesLoader,
			logging.GetLogger("profiles"),
		)
		watcher.OnReload(func(all map[string]profiles.Profile) {
			mon.Apply(all)
		})

		metricsServer := &http.Server{
			Addr:              opts.MetricsAddr,
			Handler:           metrics.HTTPHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		hotplugCtx, hotplugCancel := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			logger.Info("Starting camdrv", "version", version.String())

			mon.Apply(store.All())

			if err := watcher.Start(); err != nil {
				logger.Warn("Failed to start profiles watcher, hot-reload disabled", "error", err)
			}

			if opts.HotplugEnabled {
				go runHotplug(hotplugCtx, bus)
			}

			if _, err := systemd.NotifyReady(); err != nil {
				logger.Debug("systemd readiness notification failed", "error", err)
			}

			logger.Info("Serving metrics", "addr", opts.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "error", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			if _, err := systemd.NotifyStopping(); err != nil {
				logger.Debug("systemd stop notification failed", "error", err)
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Metrics server shutdown failed", "error", err)
			}

			hotplugCancel()
			if err := watcher.Stop(); err != nil {
				logger.Warn("Profiles watcher stop failed", "error", err)
			}
			mon.Stop()
		})
	})

	cli.Root().AddCommand(cmd.CreateDevicesCmd())
	cli.Root().AddCommand(cmd.CreateFormatsCmd())
	cli.Root().AddCommand(cmd.CreateGrabCmd())
	cli.Root().AddCommand(cmd.CreateVersionCmd())

	cli.Run()
}

// runHotplug forwards netlink device events onto the bus until ctx is
// cancelled. Detached devices also have their metrics dropped.
func runHotplug(ctx context.Context, bus *events.Bus) {
	logger := logging.GetLogger("hotplug")

	mon, err := hotplug.NewMonitor()
	if err != nil {
		logger.Warn("Failed to open hotplug monitor", "error", err)
		return
	}
	defer mon.Close()

	eventCh := make(chan hotplug.Event, 16)
	go func() {
		if err := mon.Run(ctx, eventCh); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("Hotplug monitor stopped", "error", err)
		}
	}()

	for ev := range eventCh {
		ts := time.Now().UTC().Format(time.RFC3339)
		switch ev.Action {
		case hotplug.ActionAdd:
			logger.Info("Video device attached", "path", ev.Path)
			bus.Publish(events.DeviceAttachedEvent{DevicePath: ev.Path, Timestamp: ts})
		case hotplug.ActionRemove:
			logger.Info("Video device detached", "path", ev.Path)
			metrics.DeleteDevice(ev.Path)
			bus.Publish(events.DeviceDetachedEvent{DevicePath: ev.Path, Timestamp: ts})
		}
	}
}
