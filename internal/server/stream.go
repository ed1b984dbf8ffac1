package server

import (
	"fmt"
	"net/http"
	"sync"

	"gocv.io/x/gocv"
)

// FrameHub fans rendered frames out to MJPEG clients. Frames are encoded
// only while at least one client is connected, and a slow client only ever
// sees the newest frame.
type FrameHub struct {
	mu      sync.Mutex
	subs    map[chan []byte]struct{}
	latest  []byte
	done    chan struct{}
	closed  bool
	quality int
}

// NewFrameHub creates a hub encoding JPEGs at the given quality (1-100).
// Quality <= 0 uses OpenCV's default.
func NewFrameHub(quality int) *FrameHub {
	return &FrameHub{
		subs:    make(map[chan []byte]struct{}),
		done:    make(chan struct{}),
		quality: quality,
	}
}

// Subscribers returns the number of connected stream clients.
func (h *FrameHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Publish encodes frame and sends it to all clients. It is a no-op without
// clients.
func (h *FrameHub) Publish(frame *gocv.Mat) error {
	if frame == nil || frame.Empty() || h.Subscribers() == 0 {
		return nil
	}

	var (
		buf *gocv.NativeByteBuffer
		err error
	)
	if h.quality > 0 {
		buf, err = gocv.IMEncodeWithParams(gocv.JPEGFileExt, *frame, []int{int(gocv.IMWriteJpegQuality), h.quality})
	} else {
		buf, err = gocv.IMEncode(gocv.JPEGFileExt, *frame)
	}
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases native memory released by Close.
	data := append([]byte(nil), buf.GetBytes()...)
	h.PublishJPEG(data)
	return nil
}

// PublishJPEG sends an already encoded frame to all clients.
func (h *FrameHub) PublishJPEG(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = data
	for ch := range h.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- data:
		default:
		}
	}
}

// Latest returns the most recently published JPEG, or nil.
func (h *FrameHub) Latest() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

// Close ends all streams.
func (h *FrameHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.closed = true
		close(h.done)
	}
}

func (h *FrameHub) subscribe() (chan []byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	ch := make(chan []byte, 1)
	if h.latest != nil {
		ch <- h.latest
	}
	h.subs[ch] = struct{}{}
	return ch, true
}

func (h *FrameHub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, ch)
}

// ServeHTTP streams frames as multipart/x-mixed-replace.
func (h *FrameHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ch, ok := h.subscribe()
	if !ok {
		http.Error(w, "Stream closed", http.StatusServiceUnavailable)
		return
	}
	defer h.unsubscribe(ch)

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.done:
			return
		case data := <-ch:
			if err := writePart(w, data); err != nil {
				return
			}
		}
	}
}

func writePart(w http.ResponseWriter, data []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "\r\n"); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
