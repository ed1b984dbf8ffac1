package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It returns a scripted sequence of detections, one per call, and then
// keeps returning the last one.
type MockDetector struct {
	mu       sync.Mutex
	sequence [][]HandLandmarks
	calls    int
	err      error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands makes every call to Detect return hands.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = [][]HandLandmarks{hands}
	m.calls = 0
}

// SetSequence makes successive calls to Detect return successive entries.
func (m *MockDetector) SetSequence(seq [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = seq
	m.calls = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next scripted detection or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.calls
	m.calls++

	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) == 0 {
		return nil, nil
	}
	if i >= len(m.sequence) {
		i = len(m.sequence) - 1
	}
	return m.sequence[i], nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// PointingLandmarks returns a right hand pointing with the index finger at
// (x, y), given in normalized frame coordinates. The middle finger is curled
// well away from the index tip.
func PointingLandmarks(x, y float64) HandLandmarks {
	h := baseHand(x, y)

	h.Points[MiddleMCP] = Point3D{X: x - 0.03, Y: y + 0.20, Z: 0.0}
	h.Points[MiddlePIP] = Point3D{X: x - 0.03, Y: y + 0.17, Z: -0.04}
	h.Points[MiddleDIP] = Point3D{X: x - 0.05, Y: y + 0.19, Z: -0.04}
	h.Points[MiddleTip] = Point3D{X: x - 0.06, Y: y + 0.22, Z: -0.02}

	return h
}

// PinchLandmarks returns a right hand with the index and middle fingertips
// pressed together at (x, y), given in normalized frame coordinates.
func PinchLandmarks(x, y float64) HandLandmarks {
	h := baseHand(x, y)

	h.Points[MiddleMCP] = Point3D{X: x - 0.03, Y: y + 0.20, Z: 0.0}
	h.Points[MiddlePIP] = Point3D{X: x - 0.02, Y: y + 0.12, Z: 0.0}
	h.Points[MiddleDIP] = Point3D{X: x - 0.01, Y: y + 0.06, Z: 0.0}
	h.Points[MiddleTip] = Point3D{X: x - 0.005, Y: y + 0.005, Z: 0.0}

	return h
}

// baseHand lays out a right hand whose index fingertip is at (x, y), with
// the ring and pinky fingers curled.
func baseHand(x, y float64) HandLandmarks {
	h := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	h.Points[Wrist] = Point3D{X: x, Y: y + 0.45, Z: 0.0}

	h.Points[ThumbCMC] = Point3D{X: x + 0.05, Y: y + 0.40, Z: 0.02}
	h.Points[ThumbMCP] = Point3D{X: x + 0.09, Y: y + 0.35, Z: 0.03}
	h.Points[ThumbIP] = Point3D{X: x + 0.11, Y: y + 0.30, Z: 0.03}
	h.Points[ThumbTip] = Point3D{X: x + 0.12, Y: y + 0.26, Z: 0.03}

	h.Points[IndexMCP] = Point3D{X: x + 0.02, Y: y + 0.22, Z: 0.0}
	h.Points[IndexPIP] = Point3D{X: x + 0.01, Y: y + 0.13, Z: 0.0}
	h.Points[IndexDIP] = Point3D{X: x, Y: y + 0.06, Z: 0.0}
	h.Points[IndexTip] = Point3D{X: x, Y: y, Z: 0.0}

	h.Points[RingMCP] = Point3D{X: x - 0.07, Y: y + 0.22, Z: -0.02}
	h.Points[RingPIP] = Point3D{X: x - 0.07, Y: y + 0.20, Z: -0.05}
	h.Points[RingDIP] = Point3D{X: x - 0.09, Y: y + 0.22, Z: -0.04}
	h.Points[RingTip] = Point3D{X: x - 0.10, Y: y + 0.24, Z: -0.02}

	h.Points[PinkyMCP] = Point3D{X: x - 0.11, Y: y + 0.25, Z: -0.02}
	h.Points[PinkyPIP] = Point3D{X: x - 0.11, Y: y + 0.23, Z: -0.05}
	h.Points[PinkyDIP] = Point3D{X: x - 0.13, Y: y + 0.25, Z: -0.04}
	h.Points[PinkyTip] = Point3D{X: x - 0.14, Y: y + 0.27, Z: -0.02}

	return h
}
