//go:build linux

package v4l2

import (
	"fmt"
	"log/slog"
	"os"
	"unsafe"
)

// FindDevices scans /sys/class/video4linux and returns every node that
// reports the video capture capability. Nodes that cannot be opened or
// queried are skipped, not fatal: capture cards commonly expose metadata
// nodes alongside the capture node.
func FindDevices() ([]DeviceInfo, error) {
	entries, err := os.ReadDir("/sys/class/video4linux")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read video4linux sysfs: %w", err)
	}

	logger := slog.With("component", "linuxav")

	var devices []DeviceInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := "/dev/" + entry.Name()

		dev, err := openFile(path)
		if err != nil {
			logger.Debug("skipping video device", "path", path, "error", err)
			continue
		}

		caps := v4l2_capability{}
		err = dev.ioctl(VIDIOC_QUERYCAP, unsafe.Pointer(&caps))
		dev.close()
		if err != nil {
			logger.Debug("skipping device without capabilities", "path", path, "error", err)
			continue
		}

		effective := caps.capabilities
		if effective&V4L2_CAP_DEVICE_CAPS != 0 {
			effective = caps.device_caps
		}
		if effective&V4L2_CAP_VIDEO_CAPTURE == 0 {
			continue
		}

		devices = append(devices, DeviceInfo{
			Path: path,
			Name: cstr(caps.card[:]),
			Bus:  cstr(caps.bus_info[:]),
		})
	}
	return devices, nil
}
