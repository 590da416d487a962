package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordFrame(t *testing.T) {
	dev := "/dev/video-test-frames"
	defer DeleteDevice(dev)

	RecordFrame(dev, 1024)
	RecordFrame(dev, 2048)

	if got := testutil.ToFloat64(framesTotal.WithLabelValues(dev)); got != 2 {
		t.Errorf("frames_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(frameBytesTotal.WithLabelValues(dev)); got != 3072 {
		t.Errorf("frame_bytes_total = %v, want 3072", got)
	}
}

func TestRecordError(t *testing.T) {
	dev := "/dev/video-test-errors"
	defer DeleteDevice(dev)

	RecordError(dev, "start")
	RecordError(dev, "start")
	RecordError(dev, "capture")

	if got := testutil.ToFloat64(errorsTotal.WithLabelValues(dev, "start")); got != 2 {
		t.Errorf("errors_total{stage=start} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(errorsTotal.WithLabelValues(dev, "capture")); got != 1 {
		t.Errorf("errors_total{stage=capture} = %v, want 1", got)
	}
}

func TestSessionGauge(t *testing.T) {
	dev := "/dev/video-test-session"
	defer DeleteDevice(dev)

	SessionStarted(dev)
	if got := testutil.ToFloat64(sessionsActive.WithLabelValues(dev)); got != 1 {
		t.Errorf("sessions_active = %v, want 1", got)
	}

	SessionStopped(dev)
	if got := testutil.ToFloat64(sessionsActive.WithLabelValues(dev)); got != 0 {
		t.Errorf("sessions_active = %v, want 0", got)
	}
}

func TestHTTPHandlerServesMetrics(t *testing.T) {
	if HTTPHandler() == nil {
		t.Fatal("HTTPHandler() returned nil")
	}
}
