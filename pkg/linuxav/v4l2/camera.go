//go:build linux

package v4l2

import (
	"fmt"
	"log/slog"
	"unsafe"
)

type state int

const (
	stateIdle state = iota
	stateStreaming
	stateAborted
)

// Camera owns one open capture device and, while streaming, a pool of
// memory-mapped buffers shared with the driver. It moves Idle ->
// Streaming (Start) -> Aborted (Stop) and never leaves Aborted. A Camera
// is not safe for concurrent use; all calls must come from the single
// goroutine driving the state machine.
type Camera struct {
	dev    device
	path   string
	state  state
	closed bool

	// negotiated by Start, fixed while streaming
	width  uint32
	height uint32
	format uint32

	buffers [][]byte
	logger  *slog.Logger
}

// Open opens the capture device at path and verifies it supports video
// capture. The returned Camera is Idle; the caller must Close it.
func Open(path string) (*Camera, error) {
	dev, err := openFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	cam, err := newCamera(dev, path)
	if err != nil {
		dev.close()
		return nil, err
	}
	return cam, nil
}

// newCamera wires a Camera over an already-open device handle after
// checking the capture capability. Tests inject scripted devices here.
func newCamera(dev device, path string) (*Camera, error) {
	caps := v4l2_capability{}
	if err := dev.ioctl(VIDIOC_QUERYCAP, unsafe.Pointer(&caps)); err != nil {
		return nil, fmt.Errorf("query capabilities of %s: %w", path, err)
	}

	effective := caps.capabilities
	if effective&V4L2_CAP_DEVICE_CAPS != 0 {
		effective = caps.device_caps
	}
	if effective&V4L2_CAP_VIDEO_CAPTURE == 0 {
		return nil, fmt.Errorf("%s is not a video capture device", path)
	}

	return &Camera{
		dev:    dev,
		path:   path,
		state:  stateIdle,
		logger: slog.With("component", "linuxav", "device", path),
	}, nil
}

// Start negotiates the configuration with the driver, maps the buffer
// pool, and enables streaming. Negotiation requires exact acceptance:
// any parameter the driver adjusts fails Start with the matching Err*
// sentinel and leaves the camera Idle with zero buffers. Passing nil
// uses DefaultConfig.
//
// Start panics if the camera is not Idle.
func (c *Camera) Start(config *Config) error {
	if c.state != stateIdle {
		panic("v4l2: Start called on a camera that is not idle")
	}

	var cfg Config
	if config != nil {
		cfg = *config
	} else {
		cfg = DefaultConfig()
	}

	if err := c.negotiateFormat(cfg.Width, cfg.Height, cfg.Format, cfg.Field); err != nil {
		return err
	}
	if err := c.negotiateInterval(cfg.Interval); err != nil {
		return err
	}
	if err := c.allocBuffers(cfg.Buffers); err != nil {
		return err
	}
	if err := c.enableStreaming(); err != nil {
		if freeErr := c.freeBuffers(); freeErr != nil {
			c.logger.Warn("failed to unmap buffers after stream-on failure", "error", freeErr)
		}
		return fmt.Errorf("enable streaming: %w", err)
	}

	c.width = cfg.Width
	c.height = cfg.Height
	c.format = fourcc(cfg.Format)
	c.state = stateStreaming
	c.logger.Debug("streaming started",
		"width", cfg.Width, "height", cfg.Height,
		"format", cfg.Format, "buffers", len(c.buffers))
	return nil
}

// Capture blocks until the driver completes a buffer, dequeues it, and
// returns a Frame over its used bytes. The Frame borrows one pool slot;
// it must be released before that slot re-enters the capture rotation,
// and must not be used after the camera stops.
//
// Capture panics if the camera is not Streaming.
func (c *Camera) Capture() (*Frame, error) {
	if c.state != stateStreaming {
		panic("v4l2: Capture called on a camera that is not streaming")
	}

	buf := v4l2_buffer{
		typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
		memory: V4L2_MEMORY_MMAP,
	}
	if err := c.dev.ioctl(VIDIOC_DQBUF, unsafe.Pointer(&buf)); err != nil {
		return nil, fmt.Errorf("dequeue buffer: %w", err)
	}

	if int(buf.index) >= len(c.buffers) {
		panic(fmt.Sprintf("v4l2: driver dequeued buffer %d outside pool of %d", buf.index, len(c.buffers)))
	}

	region := c.buffers[buf.index]
	used := int(buf.bytesused)
	if used > len(region) {
		used = len(region)
	}

	return &Frame{
		Data:   region[:used],
		Width:  c.width,
		Height: c.height,
		Format: FormatFourCC(c.format),
		cam:    c,
		index:  buf.index,
	}, nil
}

// Stop disables streaming and unmaps the buffer pool. The camera always
// transitions to Aborted, even when cleanup fails partway; a stopped
// camera cannot be restarted.
//
// Stop panics if the camera is not Streaming.
func (c *Camera) Stop() error {
	if c.state != stateStreaming {
		panic("v4l2: Stop called on a camera that is not streaming")
	}
	c.state = stateAborted

	streamErr := c.streamOff()
	freeErr := c.freeBuffers()

	if streamErr != nil {
		return fmt.Errorf("disable streaming: %w", streamErr)
	}
	if freeErr != nil {
		return fmt.Errorf("unmap buffers: %w", freeErr)
	}
	return nil
}

// Close releases the camera. If it is still streaming, Stop runs first
// as a best-effort cleanup whose errors are logged and dropped; callers
// needing to observe stop failures must call Stop explicitly. The device
// handle is closed exactly once; further Close calls return nil.
func (c *Camera) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	if c.state == stateStreaming {
		if err := c.Stop(); err != nil {
			c.logger.Warn("implicit stop during close failed", "error", err)
		}
	}
	return c.dev.close()
}

// negotiateFormat submits the resolution, pixel format and field order,
// then rejects any adjustment the driver made.
func (c *Camera) negotiateFormat(width, height uint32, format string, field Field) error {
	if len(format) != 4 {
		return fmt.Errorf("fourcc %q must be 4 bytes: %w", format, ErrBadFormat)
	}
	code := fourcc(format)

	f := v4l2_format{typ: V4L2_BUF_TYPE_VIDEO_CAPTURE}
	f.pix.width = width
	f.pix.height = height
	f.pix.pixelformat = code
	f.pix.field = uint32(field)

	if err := c.dev.ioctl(VIDIOC_S_FMT, unsafe.Pointer(&f)); err != nil {
		return fmt.Errorf("set format: %w", err)
	}

	if f.pix.width != width || f.pix.height != height {
		return fmt.Errorf("device selected %dx%d instead of %dx%d: %w",
			f.pix.width, f.pix.height, width, height, ErrBadResolution)
	}
	if f.pix.pixelformat != code {
		return fmt.Errorf("device selected %s instead of %s: %w",
			FormatFourCC(f.pix.pixelformat), format, ErrBadFormat)
	}
	if f.pix.field != uint32(field) {
		return fmt.Errorf("device selected field %s instead of %s: %w",
			Field(f.pix.field), field, ErrBadField)
	}
	return nil
}

// negotiateInterval submits the frame interval and checks the driver's
// answer for rational equality by cross-multiplication, so 15/150 still
// matches a request of 1/10 without dividing.
func (c *Camera) negotiateInterval(interval Fract) error {
	parm := v4l2_streamparm{typ: V4L2_BUF_TYPE_VIDEO_CAPTURE}
	parm.capture.timeperframe = v4l2_fract{
		numerator:   interval.Numerator,
		denominator: interval.Denominator,
	}

	if err := c.dev.ioctl(VIDIOC_S_PARM, unsafe.Pointer(&parm)); err != nil {
		return fmt.Errorf("set stream parameters: %w", err)
	}

	got := parm.capture.timeperframe
	if got.numerator == 0 || got.denominator == 0 {
		return fmt.Errorf("device reported degenerate interval %d/%d: %w",
			got.numerator, got.denominator, ErrBadInterval)
	}
	if uint64(interval.Numerator)*uint64(got.denominator) !=
		uint64(interval.Denominator)*uint64(got.numerator) {
		return fmt.Errorf("device selected interval %d/%d instead of %s: %w",
			got.numerator, got.denominator, interval, ErrBadInterval)
	}
	return nil
}

// allocBuffers requests the pool from the driver and maps every region.
// The pool is sized from the driver's returned count, which may differ
// from the request. If any query or mapping fails, regions mapped so far
// are unmapped before the error returns.
func (c *Camera) allocBuffers(count uint32) error {
	req := v4l2_requestbuffers{
		count:  count,
		typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
		memory: V4L2_MEMORY_MMAP,
	}
	if err := c.dev.ioctl(VIDIOC_REQBUFS, unsafe.Pointer(&req)); err != nil {
		return fmt.Errorf("request %d buffers: %w", count, err)
	}

	for i := uint32(0); i < req.count; i++ {
		buf := v4l2_buffer{
			index:  i,
			typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
			memory: V4L2_MEMORY_MMAP,
		}
		if err := c.dev.ioctl(VIDIOC_QUERYBUF, unsafe.Pointer(&buf)); err != nil {
			c.unwindBuffers()
			return fmt.Errorf("query buffer %d: %w", i, err)
		}

		region, err := c.dev.mmap(buf.m, buf.length)
		if err != nil {
			c.unwindBuffers()
			return fmt.Errorf("map buffer %d: %w", i, err)
		}
		c.buffers = append(c.buffers, region)
	}
	return nil
}

// unwindBuffers drops partially-mapped regions on an allocation failure.
// The mapping error is the one the caller reports, so unmap failures are
// only logged.
func (c *Camera) unwindBuffers() {
	if err := c.freeBuffers(); err != nil {
		c.logger.Warn("failed to unmap buffers during allocation unwind", "error", err)
	}
}

// enableStreaming queues every pool buffer into the driver's rotation
// and issues stream-on.
func (c *Camera) enableStreaming() error {
	for i := range c.buffers {
		if err := c.enqueue(uint32(i)); err != nil {
			return fmt.Errorf("queue buffer %d: %w", i, err)
		}
	}

	typ := uint32(V4L2_BUF_TYPE_VIDEO_CAPTURE)
	if err := c.dev.ioctl(VIDIOC_STREAMON, unsafe.Pointer(&typ)); err != nil {
		return fmt.Errorf("stream on: %w", err)
	}
	return nil
}

func (c *Camera) streamOff() error {
	typ := uint32(V4L2_BUF_TYPE_VIDEO_CAPTURE)
	return c.dev.ioctl(VIDIOC_STREAMOFF, unsafe.Pointer(&typ))
}

// enqueue returns one buffer index to the driver's input rotation.
func (c *Camera) enqueue(index uint32) error {
	buf := v4l2_buffer{
		index:  index,
		typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
		memory: V4L2_MEMORY_MMAP,
	}
	return c.dev.ioctl(VIDIOC_QBUF, unsafe.Pointer(&buf))
}

// freeBuffers unmaps every pool region and clears the pool. All regions
// are attempted; the first failure is returned.
func (c *Camera) freeBuffers() error {
	var first error
	for i, region := range c.buffers {
		if err := c.dev.munmap(region); err != nil && first == nil {
			first = fmt.Errorf("unmap buffer %d: %w", i, err)
		}
	}
	c.buffers = nil
	return first
}
