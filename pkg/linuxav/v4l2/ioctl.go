//go:build linux

package v4l2

import (
	"errors"
	"syscall"
	"unsafe"
)

// device is the narrow surface the capture state machine drives: typed
// control requests, buffer mapping, and handle teardown. Tests substitute
// a scripted implementation; production code always talks to a videoFile.
type device interface {
	ioctl(req uint, arg unsafe.Pointer) error
	mmap(offset uint32, length uint32) ([]byte, error)
	munmap(data []byte) error
	close() error
}

// videoFile is the syscall-backed device implementation.
type videoFile struct {
	fd int
}

// openFile opens the device blocking. Capture relies on VIDIOC_DQBUF
// blocking until the driver completes a buffer.
func openFile(path string) (*videoFile, error) {
	fd, err := syscall.Open(path, syscall.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &videoFile{fd: fd}, nil
}

func (f *videoFile) ioctl(req uint, arg unsafe.Pointer) error {
	for {
		_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(f.fd), uintptr(req), uintptr(arg))
		if errno == 0 {
			return nil
		}
		if errors.Is(errno, syscall.EINTR) {
			continue
		}
		return errno
	}
}

func (f *videoFile) mmap(offset uint32, length uint32) ([]byte, error) {
	return syscall.Mmap(f.fd, int64(offset), int(length),
		syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
}

func (f *videoFile) munmap(data []byte) error {
	return syscall.Munmap(data)
}

func (f *videoFile) close() error {
	return syscall.Close(f.fd)
}
