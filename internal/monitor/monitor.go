// Package monitor runs capture sessions for enabled profiles and keeps
// them alive across device errors. Each session owns one camera and is
// driven by a single goroutine; frames are accounted to metrics and
// lifecycle changes are published on the event bus.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/camdrv/internal/events"
	"github.com/smazurov/camdrv/internal/logging"
	"github.com/smazurov/camdrv/internal/metrics"
	"github.com/smazurov/camdrv/internal/profiles"
	"github.com/smazurov/camdrv/pkg/linuxav/v4l2"
)

// frame is the slice of the frame API the monitor needs.
type frame interface {
	Size() int
	Release() error
}

// session is the slice of the capture API the monitor drives. Tests
// substitute scripted sessions here.
type session interface {
	Start(config *v4l2.Config) error
	Capture() (frame, error)
	Stop() error
	Close() error
}

// openFunc opens a capture session on a device path.
type openFunc func(path string) (session, error)

// cameraSession adapts a Camera to the session interface.
type cameraSession struct {
	cam *v4l2.Camera
}

func (s cameraSession) Start(config *v4l2.Config) error { return s.cam.Start(config) }
func (s cameraSession) Stop() error                     { return s.cam.Stop() }
func (s cameraSession) Close() error                    { return s.cam.Close() }

func (s cameraSession) Capture() (frame, error) {
	f, err := s.cam.Capture()
	if err != nil {
		return nil, err
	}
	return cameraFrame{f}, nil
}

type cameraFrame struct {
	f *v4l2.Frame
}

func (f cameraFrame) Size() int      { return len(f.f.Data) }
func (f cameraFrame) Release() error { return f.f.Release() }

func openCamera(path string) (session, error) {
	cam, err := v4l2.Open(path)
	if err != nil {
		return nil, err
	}
	return cameraSession{cam}, nil
}

// Monitor supervises one capture goroutine per enabled profile.
type Monitor struct {
	bus    *events.Bus
	logger *slog.Logger
	open   openFunc
	retry  time.Duration

	mu      sync.Mutex
	running map[string]context.CancelFunc
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithRetryDelay sets the delay before a failed session is reopened.
// Default is 5s.
func WithRetryDelay(d time.Duration) Option {
	return func(m *Monitor) {
		m.retry = d
	}
}

// New creates a monitor publishing on the given bus.
func New(bus *events.Bus, opts ...Option) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Monitor{
		bus:     bus,
		logger:  logging.GetLogger("monitor"),
		open:    openCamera,
		retry:   5 * time.Second,
		running: make(map[string]context.CancelFunc),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Apply reconciles running sessions against the given profile set:
// enabled profiles not yet running are started, running profiles that
// disappeared or were disabled are stopped. Safe to call from a config
// watcher handler.
func (m *Monitor) Apply(all map[string]profiles.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx.Err() != nil {
		return
	}

	for id, cancel := range m.running {
		p, ok := all[id]
		if !ok || !p.Enabled {
			m.logger.Info("Stopping capture session", "profile", id)
			cancel()
			delete(m.running, id)
		}
	}

	for id, p := range all {
		if !p.Enabled {
			continue
		}
		if _, ok := m.running[id]; ok {
			continue
		}
		if err := profiles.Validate(p); err != nil {
			m.logger.Warn("Skipping invalid profile", "profile", id, "error", err)
			continue
		}

		ctx, cancel := context.WithCancel(m.ctx)
		m.running[id] = cancel
		m.wg.Add(1)
		m.logger.Info("Starting capture session", "profile", id, "device", p.Device)
		go func(p profiles.Profile) {
			defer m.wg.Done()
			m.runProfile(ctx, p)
		}(p)
	}
}

// Stop cancels all sessions and waits for their goroutines to drain.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.cancel()
	m.running = make(map[string]context.CancelFunc)
	m.mu.Unlock()
	m.wg.Wait()
}

// runProfile keeps one profile's session alive until the context is
// cancelled, reopening the device after failures.
func (m *Monitor) runProfile(ctx context.Context, p profiles.Profile) {
	for {
		err := m.runSession(ctx, p)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			m.logger.Warn("Capture session failed, retrying",
				"profile", p.ID, "device", p.Device, "retry", m.retry, "error", err)
			m.bus.Publish(events.CaptureErrorEvent{
				ProfileID:  p.ID,
				DevicePath: p.Device,
				Error:      err.Error(),
				Timestamp:  timestamp(),
			})
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(m.retry):
		}
	}
}

// runSession opens the device, streams frames until the context is
// cancelled or the device errors, then tears the session down. The
// camera is only touched from this goroutine, so cancellation is
// observed between captures rather than interrupting one.
func (m *Monitor) runSession(ctx context.Context, p profiles.Profile) error {
	cfg, err := p.CaptureConfig()
	if err != nil {
		metrics.RecordError(p.Device, "start")
		return err
	}

	sess, err := m.open(p.Device)
	if err != nil {
		metrics.RecordError(p.Device, "start")
		return err
	}
	defer sess.Close()

	if err := sess.Start(&cfg); err != nil {
		metrics.RecordError(p.Device, "start")
		return err
	}

	metrics.SessionStarted(p.Device)
	defer metrics.SessionStopped(p.Device)

	m.bus.Publish(events.CaptureStartedEvent{
		ProfileID:  p.ID,
		DevicePath: p.Device,
		Width:      int(cfg.Width),
		Height:     int(cfg.Height),
		Format:     cfg.Format,
		Timestamp:  timestamp(),
	})

	var frames uint64
	var captureErr error
	for {
		if ctx.Err() != nil {
			break
		}

		f, err := sess.Capture()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			metrics.RecordError(p.Device, "capture")
			captureErr = err
			break
		}

		frames++
		metrics.RecordFrame(p.Device, f.Size())
		if err := f.Release(); err != nil {
			metrics.RecordError(p.Device, "capture")
			captureErr = err
			break
		}
	}

	if err := sess.Stop(); err != nil {
		metrics.RecordError(p.Device, "stop")
		m.logger.Warn("Session stop failed", "profile", p.ID, "error", err)
	}

	m.bus.Publish(events.CaptureStoppedEvent{
		ProfileID:  p.ID,
		DevicePath: p.Device,
		Frames:     frames,
		Timestamp:  timestamp(),
	})

	return captureErr
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
