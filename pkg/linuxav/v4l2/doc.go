//go:build linux

// Package v4l2 provides pure Go bindings to the Video4Linux2 (V4L2)
// capture API: device discovery, format catalog queries, and memory-mapped
// frame streaming.
//
// This package does not use cgo, enabling simple cross-compilation for
// different Linux architectures (amd64, arm64, arm).
//
// # Device Discovery
//
// Use FindDevices to discover all V4L2 video capture devices:
//
//	devices, err := v4l2.FindDevices()
//	for _, dev := range devices {
//	    fmt.Printf("%s: %s\n", dev.Path, dev.Name)
//	}
//
// # Streaming
//
// A Camera owns one device handle and a pool of memory-mapped buffers
// shared with the driver. Start negotiates the format, Capture blocks
// until the driver completes a buffer, and each Frame must be released
// to return its buffer to the capture rotation:
//
//	cam, err := v4l2.Open("/dev/video0")
//	defer cam.Close()
//
//	cfg := v4l2.DefaultConfig()
//	if err := cam.Start(&cfg); err != nil { ... }
//	frame, err := cam.Capture()
//	process(frame.Data)
//	frame.Release()
//	cam.Stop()
//
// A Camera moves Idle -> Streaming -> Aborted and never leaves Aborted;
// a stopped camera cannot be restarted. Calling Start, Capture, Stop or
// Formats in the wrong state is a programming error and panics. A Camera
// is not safe for concurrent use.
//
// # Format Queries
//
// Query supported formats, resolutions, and frame intervals before
// streaming:
//
//	formats, _ := cam.Formats()
//	for _, f := range formats {
//	    for _, mode := range f.Modes {
//	        fmt.Println(f.Format, mode, mode.Intervals)
//	    }
//	}
package v4l2
