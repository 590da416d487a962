//go:build linux

package v4l2

import "fmt"

// Frame is a short-lived view over one dequeued capture buffer. Data is
// the window of bytes the driver actually filled, backed directly by the
// camera's memory mapping: it is only valid until the frame is released
// and becomes invalid once the camera stops or closes. Copy the bytes
// out if they must outlive the frame.
//
// Every frame borrows exactly one buffer-pool slot. Releasing it (via
// Release or Discard) re-queues that slot into the driver's rotation;
// until then the driver will not reuse the slot, so holding frames too
// long starves the capture queue.
type Frame struct {
	// Data is the used-byte window into the mapped buffer.
	Data []byte
	// Width and Height of the frame, copied from the negotiated format.
	Width  uint32
	Height uint32
	// Format is the FourCC of the negotiated pixel format.
	Format string

	cam      *Camera
	index    uint32
	released bool
}

// Release returns the frame's buffer to the driver's capture rotation
// and surfaces the re-queue failure, if any. Exactly one re-queue is
// ever issued per frame; calling Release again is a no-op.
func (f *Frame) Release() error {
	if f.released {
		return nil
	}
	f.released = true
	if err := f.cam.enqueue(f.index); err != nil {
		return fmt.Errorf("requeue buffer %d: %w", f.index, err)
	}
	return nil
}

// Discard is the best-effort variant of Release for teardown paths that
// cannot propagate errors: a failed re-queue is logged and dropped.
// Callers that need the buffer reliably back in rotation should use
// Release.
func (f *Frame) Discard() {
	if f.released {
		return
	}
	f.released = true
	if err := f.cam.enqueue(f.index); err != nil {
		f.cam.logger.Debug("discarding frame requeue failure", "index", f.index, "error", err)
	}
}
