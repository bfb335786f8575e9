// Package recorder provides a simple, thread-safe helper to record inputs
// from a running game into a TCM writer. Frames are derived from the wall
// clock and the replay's tick rate, or supplied explicitly.
package recorder

import (
	"log"
	"sync"
	"time"

	"github.com/reallyoldfogie/tcm-go/tcm"
)

// Recorder feeds inputs to a tcm.Writer, computing frames relative to the
// start of the current segment.
type Recorder[M tcm.Meta] struct {
	w     *tcm.Writer[M]
	start time.Time
	now   func() time.Time

	mu     sync.Mutex
	closed bool
	count  int
}

// New creates a Recorder writing through w. The first segment starts now.
func New[M tcm.Meta](w *tcm.Writer[M]) *Recorder[M] {
	r := &Recorder[M]{w: w, now: time.Now}
	r.start = r.now()
	return r
}

// NewFile creates and owns a TCM file at path using the given metadata.
// Use Close() when finished.
func NewFile[M tcm.Meta](path string, meta M) (*Recorder[M], error) {
	w, err := tcm.Create(path, meta)
	if err != nil {
		return nil, err
	}
	return New(w), nil
}

// frameAt converts a wall-clock time to a frame in the current segment.
// Callers hold r.mu.
func (r *Recorder[M]) frameAt(t time.Time) tcm.Frame {
	elapsed := t.Sub(r.start)
	if elapsed <= 0 {
		return r.w.SegmentStart()
	}
	frame := tcm.Frame(elapsed.Seconds() * float64(r.w.Meta().TPS()))
	if floor := r.w.SegmentStart(); frame < floor {
		return floor
	}
	return frame
}

// Frame returns the frame an input recorded now would get.
func (r *Recorder[M]) Frame() tcm.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frameAt(r.now())
}

// RecordNow records in at the current frame. Recording a tcm.RestartInput
// starts a new segment.
func (r *Recorder[M]) RecordNow(in tcm.Input) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	now := r.now()
	return r.record(now, r.frameAt(now), in)
}

// RecordAt records in at an explicit frame of the current segment.
func (r *Recorder[M]) RecordAt(frame tcm.Frame, in tcm.Input) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	return r.record(r.now(), frame, in)
}

func (r *Recorder[M]) record(now time.Time, frame tcm.Frame, in tcm.Input) error {
	if err := r.w.WriteInput(frame, in); err != nil {
		return err
	}
	if _, ok := in.(tcm.RestartInput); ok {
		r.start = now
	}
	r.count++
	if r.count%100 == 0 {
		log.Printf("[tcm recorder] Recorded %d inputs (latest: %v at frame %d)", r.count, in, frame)
	}
	return nil
}

// Count returns the number of inputs recorded.
func (r *Recorder[M]) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Close writes the replay (and closes the file for NewFile recorders).
func (r *Recorder[M]) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.w.Close()
}
