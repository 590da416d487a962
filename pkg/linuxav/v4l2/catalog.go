//go:build linux

package v4l2

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"
)

// Formats enumerates every pixel format the device advertises, and for
// each format its discrete resolutions and their discrete frame
// intervals. Stepwise and continuous entries are skipped. Each
// index-based enumeration ends when the driver rejects the index with
// EINVAL; any other failure aborts the whole query.
//
// Formats panics if the camera is not Idle: the enumeration must not
// race live streaming buffers.
func (c *Camera) Formats() ([]FormatInfo, error) {
	if c.state != stateIdle {
		panic("v4l2: Formats called on a camera that is not idle")
	}

	var formats []FormatInfo
	for i := uint32(0); ; i++ {
		desc := v4l2_fmtdesc{
			index: i,
			typ:   V4L2_BUF_TYPE_VIDEO_CAPTURE,
		}
		if err := c.dev.ioctl(VIDIOC_ENUM_FMT, unsafe.Pointer(&desc)); err != nil {
			if errors.Is(err, syscall.EINVAL) {
				break // end of enumeration
			}
			return nil, fmt.Errorf("enumerate format %d: %w", i, err)
		}

		modes, err := c.enumModes(desc.pixelformat)
		if err != nil {
			return nil, err
		}

		formats = append(formats, FormatInfo{
			Format:      FormatFourCC(desc.pixelformat),
			Description: cstr(desc.description[:]),
			Compressed:  desc.flags&V4L2_FMT_FLAG_COMPRESSED != 0,
			Emulated:    desc.flags&V4L2_FMT_FLAG_EMULATED != 0,
			Modes:       modes,
		})
	}
	return formats, nil
}

// enumModes lists the discrete frame sizes for one pixel format.
func (c *Camera) enumModes(pixelFormat uint32) ([]ModeInfo, error) {
	var modes []ModeInfo
	for i := uint32(0); ; i++ {
		size := v4l2_frmsizeenum{
			index:        i,
			pixel_format: pixelFormat,
		}
		if err := c.dev.ioctl(VIDIOC_ENUM_FRAMESIZES, unsafe.Pointer(&size)); err != nil {
			if errors.Is(err, syscall.EINVAL) {
				break
			}
			return nil, fmt.Errorf("enumerate frame size %d: %w", i, err)
		}
		if size.typ != V4L2_FRMSIZE_TYPE_DISCRETE {
			continue
		}

		intervals, err := c.enumIntervals(pixelFormat, size.discrete.width, size.discrete.height)
		if err != nil {
			return nil, err
		}
		modes = append(modes, ModeInfo{
			Width:     size.discrete.width,
			Height:    size.discrete.height,
			Intervals: intervals,
		})
	}
	return modes, nil
}

// enumIntervals lists the discrete frame intervals for one resolution.
func (c *Camera) enumIntervals(pixelFormat, width, height uint32) ([]Fract, error) {
	var intervals []Fract
	for i := uint32(0); ; i++ {
		ival := v4l2_frmivalenum{
			index:        i,
			pixel_format: pixelFormat,
			width:        width,
			height:       height,
		}
		if err := c.dev.ioctl(VIDIOC_ENUM_FRAMEINTERVALS, unsafe.Pointer(&ival)); err != nil {
			if errors.Is(err, syscall.EINVAL) {
				break
			}
			return nil, fmt.Errorf("enumerate frame interval %d: %w", i, err)
		}
		if ival.typ != V4L2_FRMIVAL_TYPE_DISCRETE {
			continue
		}
		intervals = append(intervals, Fract{
			Numerator:   ival.discrete.numerator,
			Denominator: ival.discrete.denominator,
		})
	}
	return intervals, nil
}
