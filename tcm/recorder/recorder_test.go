package recorder

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reallyoldfogie/tcm-go/tcm"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRecorder(w *tcm.Writer[tcm.MetaV2]) (*Recorder[tcm.MetaV2], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := New(w)
	r.now = clock.now
	r.start = clock.t
	return r, clock
}

func TestRecordNowFrames(t *testing.T) {
	var buf bytes.Buffer
	w := tcm.NewWriter(&buf, tcm.NewMetaV2(60, 0, nil))
	r, clock := newTestRecorder(w)

	assert.Zero(t, r.Frame())

	clock.advance(500 * time.Millisecond)
	assert.EqualValues(t, 30, r.Frame())
	require.NoError(t, r.RecordNow(tcm.VanillaInput{Button: tcm.Jump, Push: true}))

	clock.advance(time.Second)
	require.NoError(t, r.RecordNow(tcm.VanillaInput{Button: tcm.Jump}))
	require.NoError(t, r.RecordNow(tcm.RestartInput{Type: tcm.Death}))

	// the restart reset the segment clock
	assert.Zero(t, r.Frame())
	clock.advance(2 * time.Second)
	require.NoError(t, r.RecordNow(tcm.VanillaInput{Button: tcm.Right, Push: true}))

	assert.Equal(t, 4, r.Count())
	require.NoError(t, r.Close())

	got, err := tcm.DeserializeV2(&buf)
	require.NoError(t, err)
	assert.Equal(t, []tcm.InputCommand{
		{Frame: 30, Input: tcm.VanillaInput{Button: tcm.Jump, Push: true}},
		{Frame: 90, Input: tcm.VanillaInput{Button: tcm.Jump}},
		{Frame: 90, Input: tcm.RestartInput{Type: tcm.Death}},
		{Frame: 120, Input: tcm.VanillaInput{Button: tcm.Right, Push: true}},
	}, got.Inputs)
}

func TestRecordAt(t *testing.T) {
	w := tcm.NewWriter(&bytes.Buffer{}, tcm.NewMetaV2(240, 0, nil))
	r, _ := newTestRecorder(w)

	require.NoError(t, r.RecordAt(100, tcm.VanillaInput{Button: tcm.Left, Push: true}))
	require.NoError(t, r.RecordAt(100, tcm.TpsInput{TPS: 120}))

	var order *tcm.OutOfOrderError
	assert.ErrorAs(t, r.RecordAt(99, tcm.VanillaInput{Button: tcm.Left}), &order)
	assert.Equal(t, 2, r.Count())

	// a clock that lags explicit frames is clamped to the last one
	assert.EqualValues(t, 100, r.Frame())
}

func TestRecorderClose(t *testing.T) {
	var buf bytes.Buffer
	w := tcm.NewWriter(&buf, tcm.NewMetaV2(60, 0, nil))
	r, _ := newTestRecorder(w)

	require.NoError(t, r.RecordAt(1, tcm.BugpointInput{}))
	require.NoError(t, r.Close())
	n := buf.Len()

	require.NoError(t, r.Close())
	assert.NoError(t, r.RecordNow(tcm.BugpointInput{}), "recording after Close is ignored")
	assert.Equal(t, n, buf.Len())
	assert.Equal(t, 1, r.Count())
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.tcm")
	r, err := NewFile(path, tcm.NewMetaV1(60, 0))
	require.NoError(t, err)

	require.NoError(t, r.RecordAt(12, tcm.VanillaInput{Button: tcm.Jump, Push: true}))
	require.NoError(t, r.RecordAt(20, tcm.RestartInput{Type: tcm.Restart}))
	require.NoError(t, r.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	got, err := tcm.Open(path)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Version())
	assert.Len(t, got.Inputs, 2)
}

func TestRecorderConcurrent(t *testing.T) {
	w := tcm.NewWriter(&bytes.Buffer{}, tcm.NewMetaV2(60, 0, nil))
	r := New(w)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				_ = r.RecordNow(tcm.VanillaInput{Button: tcm.Jump, Push: j%2 == 0})
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	assert.Equal(t, w.Len(), r.Count())
	require.NoError(t, r.Close())
}
