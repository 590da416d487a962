package events

// Event type constants for kelindar/event.
const (
	TypeCaptureStarted uint32 = iota + 1
	TypeCaptureStopped
	TypeCaptureError
	TypeDeviceAttached
	TypeDeviceDetached
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// CaptureStartedEvent is published when a capture session begins
// streaming on a device.
type CaptureStartedEvent struct {
	ProfileID  string `json:"profile_id" example:"door" doc:"Capture profile identifier"`
	DevicePath string `json:"device_path" example:"/dev/video0" doc:"Path to the video device"`
	Width      int    `json:"width" example:"1280" doc:"Negotiated frame width"`
	Height     int    `json:"height" example:"720" doc:"Negotiated frame height"`
	Format     string `json:"format" example:"MJPG" doc:"Negotiated pixel format FourCC"`
	Timestamp  string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CaptureStartedEvent.
func (e CaptureStartedEvent) Type() uint32 { return TypeCaptureStarted }

// CaptureStoppedEvent is published when a capture session ends.
type CaptureStoppedEvent struct {
	ProfileID  string `json:"profile_id" example:"door" doc:"Capture profile identifier"`
	DevicePath string `json:"device_path" example:"/dev/video0" doc:"Path to the video device"`
	Frames     uint64 `json:"frames" example:"1024" doc:"Frames delivered during the session"`
	Timestamp  string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CaptureStoppedEvent.
func (e CaptureStoppedEvent) Type() uint32 { return TypeCaptureStopped }

// CaptureErrorEvent is published when a session fails to start or dies
// mid-stream.
type CaptureErrorEvent struct {
	ProfileID  string `json:"profile_id" example:"door" doc:"Capture profile identifier"`
	DevicePath string `json:"device_path" example:"/dev/video0" doc:"Path to the video device"`
	Error      string `json:"error" example:"bad interval" doc:"Detailed error description"`
	Timestamp  string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CaptureErrorEvent.
func (e CaptureErrorEvent) Type() uint32 { return TypeCaptureError }

// DeviceAttachedEvent is published when a video device appears.
type DeviceAttachedEvent struct {
	DevicePath string `json:"device_path" example:"/dev/video0" doc:"Path to the video device"`
	Timestamp  string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DeviceAttachedEvent.
func (e DeviceAttachedEvent) Type() uint32 { return TypeDeviceAttached }

// DeviceDetachedEvent is published when a video device disappears.
type DeviceDetachedEvent struct {
	DevicePath string `json:"device_path" example:"/dev/video0" doc:"Path to the video device"`
	Timestamp  string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DeviceDetachedEvent.
func (e DeviceDetachedEvent) Type() uint32 { return TypeDeviceDetached }
