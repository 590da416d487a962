//go:build linux

package v4l2

import (
	"bytes"
	"fmt"
)

// DeviceInfo describes a discovered V4L2 capture device.
type DeviceInfo struct {
	Path string // device node, e.g. /dev/video0
	Name string // card name from the driver
	Bus  string // bus info, e.g. usb-0000:00:14.0-1
}

// Fract is a frame interval expressed as seconds per frame. V4L2 works
// in intervals, not rates: 30 fps is Fract{1, 30}.
type Fract struct {
	Numerator   uint32
	Denominator uint32
}

// FPS returns the interval as frames per second.
func (f Fract) FPS() float64 {
	if f.Numerator == 0 {
		return 0
	}
	return float64(f.Denominator) / float64(f.Numerator)
}

func (f Fract) String() string {
	return fmt.Sprintf("%d/%d", f.Numerator, f.Denominator)
}

// Field is the interlace field order of a frame.
// See https://linuxtv.org/downloads/v4l-dvb-apis/field-order.html
type Field uint32

// Field orders. FieldNone is progressive scan.
const (
	FieldNone Field = iota + 1
	FieldTop
	FieldBottom
	FieldInterlaced
	FieldSeqTB
	FieldSeqBT
	FieldAlternate
	FieldInterlacedTB
	FieldInterlacedBT
)

func (f Field) String() string {
	switch f {
	case FieldNone:
		return "none"
	case FieldTop:
		return "top"
	case FieldBottom:
		return "bottom"
	case FieldInterlaced:
		return "interlaced"
	case FieldSeqTB:
		return "seq-tb"
	case FieldSeqBT:
		return "seq-bt"
	case FieldAlternate:
		return "alternate"
	case FieldInterlacedTB:
		return "interlaced-tb"
	case FieldInterlacedBT:
		return "interlaced-bt"
	}
	return fmt.Sprintf("field(%d)", uint32(f))
}

// Config describes the capture configuration negotiated by Start.
type Config struct {
	// Interval is the requested frame interval (seconds per frame).
	Interval Fract
	// Width and Height of the frame.
	Width  uint32
	Height uint32
	// Format is the FourCC of the pixel format (e.g. "YUYV", "MJPG").
	// Case matters.
	Format string
	// Field is the interlace field order.
	Field Field
	// Buffers is the number of buffers requested from the driver. The
	// driver may adjust the count; the pool is sized from its answer.
	Buffers uint32
}

// DefaultConfig returns 640x480 YUYV progressive at 10 fps with two buffers.
func DefaultConfig() Config {
	return Config{
		Interval: Fract{1, 10},
		Width:    640,
		Height:   480,
		Format:   "YUYV",
		Field:    FieldNone,
		Buffers:  2,
	}
}

// FormatInfo describes one pixel format the device advertises.
type FormatInfo struct {
	// Format is the FourCC of the format (e.g. "H264").
	Format string
	// Description is the driver's human-readable name for the format.
	Description string
	// Compressed reports whether the format is compressed rather than raw.
	Compressed bool
	// Emulated reports whether the driver transcodes this format from a
	// different native format.
	Emulated bool
	// Modes lists the discrete resolutions supported for the format.
	Modes []ModeInfo
}

func (f FormatInfo) String() string {
	var extra string
	switch {
	case f.Compressed && f.Emulated:
		extra = ", compressed, emulated"
	case f.Compressed:
		extra = ", compressed"
	case f.Emulated:
		extra = ", emulated"
	}
	return fmt.Sprintf("%s (%s%s)", f.Format, f.Description, extra)
}

// ModeInfo is one discrete resolution and its supported frame intervals.
type ModeInfo struct {
	Width     uint32
	Height    uint32
	Intervals []Fract
}

func (m ModeInfo) String() string {
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// fourcc packs a 4-character format code the way the kernel expects it.
// The caller must have validated the length.
func fourcc(s string) uint32 {
	return uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | uint32(s[3])<<24
}

// FormatFourCC converts a packed pixel format to its 4-character string.
func FormatFourCC(format uint32) string {
	b := make([]byte, 4)
	b[0] = byte(format & 0xFF)
	b[1] = byte((format >> 8) & 0xFF)
	b[2] = byte((format >> 16) & 0xFF)
	b[3] = byte((format >> 24) & 0xFF)
	return string(b)
}

// cstr converts a null-terminated byte slice to a Go string.
func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// Capability flags.
const (
	V4L2_CAP_VIDEO_CAPTURE = 0x00000001
	V4L2_CAP_DEVICE_CAPS   = 0x80000000
)

// Format flags.
const (
	V4L2_FMT_FLAG_COMPRESSED = 0x0001
	V4L2_FMT_FLAG_EMULATED   = 0x0002
)

// Frame size and interval types. Only discrete entries enter the catalog.
const (
	V4L2_FRMSIZE_TYPE_DISCRETE = 1
	V4L2_FRMIVAL_TYPE_DISCRETE = 1
)

// Buffer type and memory model.
const (
	V4L2_BUF_TYPE_VIDEO_CAPTURE = 1
	V4L2_MEMORY_MMAP            = 1
)
