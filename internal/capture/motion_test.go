package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func solidFrame(v float64) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0), 480, 640, gocv.MatTypeCV8UC3)
}

func TestNewMotionDetector(t *testing.T) {
	tests := []struct {
		name        string
		threshold   float64
		wantEnabled bool
	}{
		{name: "default threshold", threshold: 1.0, wantEnabled: true},
		{name: "low threshold", threshold: 0.5, wantEnabled: true},
		{name: "disabled", threshold: 0, wantEnabled: false},
		{name: "negative disables", threshold: -1, wantEnabled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := NewMotionDetector(tt.threshold)
			defer md.Close()

			if md.Enabled() != tt.wantEnabled {
				t.Errorf("Enabled() = %v, want %v", md.Enabled(), tt.wantEnabled)
			}
			if md.initialized {
				t.Error("motion detector should not be initialized initially")
			}
		})
	}
}

func TestMotionDetector_FirstFrameCounts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	frame := solidFrame(0)
	defer frame.Close()

	if detected, _ := md.Detect(&frame); !detected {
		t.Error("first frame should count as motion")
	}
}

func TestMotionDetector_NoMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	frame1 := solidFrame(0)
	defer frame1.Close()
	frame2 := solidFrame(0)
	defer frame2.Close()

	md.Detect(&frame1)
	if detected, changed := md.Detect(&frame2); detected {
		t.Errorf("identical frames should not detect motion, changed = %f", changed)
	}
}

func TestMotionDetector_WithMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	black := solidFrame(0)
	defer black.Close()
	white := solidFrame(255)
	defer white.Close()

	md.Detect(&black)
	detected, changed := md.Detect(&white)
	if !detected {
		t.Errorf("black to white should detect motion, changed = %f", changed)
	}
	if changed < 50.0 {
		t.Errorf("changed = %f, expected > 50%% for black to white", changed)
	}
}

func TestMotionDetector_Disabled(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(0)
	defer md.Close()

	frame := solidFrame(0)
	defer frame.Close()

	for i := 0; i < 3; i++ {
		if detected, _ := md.Detect(&frame); !detected {
			t.Fatalf("frame %d: disabled detector should report motion", i)
		}
	}
}

func TestMotionDetector_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	frame := solidFrame(0)
	defer frame.Close()

	md.Detect(&frame)
	if !md.initialized {
		t.Error("detector should be initialized after first Detect")
	}

	md.Reset()
	if md.initialized {
		t.Error("detector should not be initialized after Reset")
	}
	if detected, _ := md.Detect(&frame); !detected {
		t.Error("first frame after Reset should count as motion")
	}
}

func TestMotionDetector_SetThreshold(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	md.SetThreshold(5.0)
	if md.threshold != 5.0 {
		t.Errorf("threshold = %f, want 5.0", md.threshold)
	}

	md.SetThreshold(0)
	if md.Enabled() {
		t.Error("threshold 0 should disable the detector")
	}
}

func TestMotionDetector_NilFrame(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	if detected, changed := md.Detect(nil); detected || changed != 0 {
		t.Errorf("Detect(nil) = %v, %f; want false, 0", detected, changed)
	}
}

func TestMotionDetector_Close_Multiple(t *testing.T) {
	md := NewMotionDetector(1.0)
	md.Close()
	md.Close()
}
