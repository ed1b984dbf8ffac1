package detector

import (
	"errors"
	"image"
	"math"
	"testing"
)

const (
	frameWidth  = 1920
	frameHeight = 1080
)

func pixelDistance(a, b image.Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func TestPoint3D_Pixel(t *testing.T) {
	tests := []struct {
		name  string
		point Point3D
		want  image.Point
	}{
		{name: "origin", point: Point3D{X: 0, Y: 0}, want: image.Point{X: 0, Y: 0}},
		{name: "center", point: Point3D{X: 0.5, Y: 0.5}, want: image.Point{X: 960, Y: 540}},
		{name: "truncates", point: Point3D{X: 0.26, Y: 0.3339}, want: image.Point{X: 499, Y: 360}},
		{name: "far corner", point: Point3D{X: 1, Y: 1}, want: image.Point{X: 1920, Y: 1080}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.point.Pixel(frameWidth, frameHeight); got != tt.want {
				t.Errorf("Pixel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandLandmarks_Fingertips(t *testing.T) {
	var hand HandLandmarks
	hand.Points[IndexTip] = Point3D{X: 0.25, Y: 0.5}
	hand.Points[MiddleTip] = Point3D{X: 0.75, Y: 0.25}

	index, middle := hand.Fingertips(frameWidth, frameHeight)

	if index != (image.Point{X: 480, Y: 540}) {
		t.Errorf("index = %v, want (480,540)", index)
	}
	if middle != (image.Point{X: 1440, Y: 270}) {
		t.Errorf("middle = %v, want (1440,270)", middle)
	}
}

func TestHandLandmarks_Pixels(t *testing.T) {
	hand := PointingLandmarks(0.4, 0.3)
	pixels := hand.Pixels(frameWidth, frameHeight)

	index, middle := hand.Fingertips(frameWidth, frameHeight)
	if pixels[IndexTip] != index {
		t.Errorf("pixels[IndexTip] = %v, want %v", pixels[IndexTip], index)
	}
	if pixels[MiddleTip] != middle {
		t.Errorf("pixels[MiddleTip] = %v, want %v", pixels[MiddleTip], middle)
	}
}

func TestHandLandmarks_Mirror(t *testing.T) {
	hand := PointingLandmarks(0.3, 0.3)
	mirrored := hand.Mirror()

	if mirrored.Handedness != "Left" {
		t.Errorf("expected handedness Left, got %s", mirrored.Handedness)
	}
	if math.Abs(mirrored.Points[IndexTip].X-0.7) > 1e-9 {
		t.Errorf("expected mirrored index X 0.7, got %f", mirrored.Points[IndexTip].X)
	}
	if hand.Points[IndexTip].X != 0.3 {
		t.Error("Mirror should not modify the receiver")
	}
}

func TestHandConnections(t *testing.T) {
	for _, c := range HandConnections {
		for _, idx := range c {
			if idx < 0 || idx >= NumLandmarks {
				t.Errorf("connection %v references landmark %d out of range", c, idx)
			}
		}
	}
	if len(HandConnections) != 21 {
		t.Errorf("expected 21 connections, got %d", len(HandConnections))
	}
}

func TestPresets(t *testing.T) {
	t.Run("pointing hand keeps fingers apart", func(t *testing.T) {
		hand := PointingLandmarks(0.3, 0.3)
		index, middle := hand.Fingertips(frameWidth, frameHeight)

		if index != (Point3D{X: 0.3, Y: 0.3}).Pixel(frameWidth, frameHeight) {
			t.Errorf("index tip should be at the requested position, got %v", index)
		}
		if d := pixelDistance(index, middle); d < 100 {
			t.Errorf("pointing fingertips should be far apart, distance %f", d)
		}
	})

	t.Run("pinching hand brings fingertips together", func(t *testing.T) {
		hand := PinchLandmarks(0.3, 0.3)
		index, middle := hand.Fingertips(frameWidth, frameHeight)

		if d := pixelDistance(index, middle); d >= 40 {
			t.Errorf("pinching fingertips should be under 40px apart, distance %f", d)
		}
	})

	t.Run("presets are right hands with high confidence", func(t *testing.T) {
		for _, hand := range []HandLandmarks{PointingLandmarks(0.5, 0.5), PinchLandmarks(0.5, 0.5)} {
			if hand.Handedness != "Right" {
				t.Errorf("expected handedness Right, got %s", hand.Handedness)
			}
			if hand.Score < 0.9 {
				t.Errorf("expected score >= 0.9, got %f", hand.Score)
			}
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns no hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands on every call", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{PointingLandmarks(0.1, 0.1), PinchLandmarks(0.2, 0.2)})

		for i := 0; i < 3; i++ {
			hands, err := mock.Detect(nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(hands) != 2 {
				t.Errorf("call %d: expected 2 hands, got %d", i, len(hands))
			}
		}
		if mock.Calls() != 3 {
			t.Errorf("expected 3 calls, got %d", mock.Calls())
		}
	})

	t.Run("plays a sequence and holds the last entry", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetSequence([][]HandLandmarks{
			nil,
			{PointingLandmarks(0.1, 0.1)},
			{PinchLandmarks(0.1, 0.1), PinchLandmarks(0.2, 0.2)},
		})

		want := []int{0, 1, 2, 2, 2}
		for i, n := range want {
			hands, _ := mock.Detect(nil)
			if len(hands) != n {
				t.Errorf("call %d: expected %d hands, got %d", i, n, len(hands))
			}
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{PointingLandmarks(0.1, 0.1)})

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)
		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("Close returns nil", func(t *testing.T) {
		if err := NewMockDetector().Close(); err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestParseResponse(t *testing.T) {
	t.Run("decodes hands", func(t *testing.T) {
		line := []byte(`{"hands":[{"handedness":"Left","score":0.9,"points":[{"x":0.1,"y":0.2,"z":0.3}]}]}` + "\n")

		hands, err := parseResponse(line)
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(hands))
		}
		if hands[0].Handedness != "Left" || hands[0].Score != 0.9 {
			t.Errorf("unexpected hand metadata: %+v", hands[0])
		}
		if hands[0].Points[Wrist] != (Point3D{X: 0.1, Y: 0.2, Z: 0.3}) {
			t.Errorf("unexpected wrist: %+v", hands[0].Points[Wrist])
		}
		if hands[0].Points[IndexTip] != (Point3D{}) {
			t.Errorf("missing points should stay zero, got %+v", hands[0].Points[IndexTip])
		}
	})

	t.Run("empty hands", func(t *testing.T) {
		hands, err := parseResponse([]byte(`{"hands":[]}`))
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("expected no hands, got %d", len(hands))
		}
	})

	t.Run("service error", func(t *testing.T) {
		if _, err := parseResponse([]byte(`{"error":"model not loaded"}`)); err == nil {
			t.Error("expected error from service error field")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := parseResponse([]byte(`not json`)); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	_, err := NewMediaPipeDetector(Config{ScriptPath: "/nonexistent/mediapipe_service.py"})
	if !errors.Is(err, ErrServiceNotFound) {
		t.Errorf("expected ErrServiceNotFound, got %v", err)
	}
}
