package scan_test

import (
	"context"
	"errors"
	"image"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/scan"
)

const (
	frameEmpty byte = iota
	frameGarbled
	frameBarcode
)

func frame(kind byte) image.Image {
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	img.Pix[0] = kind

	return img
}

type fakeDecoder struct{}

func (fakeDecoder) Decode(img image.Image) (string, error) {
	switch img.(*image.Gray).Pix[0] {
	case frameBarcode:
		return "7891000100103", nil
	case frameGarbled:
		return "", errors.New("garbled symbol")
	default:
		return "", scan.ErrNoSymbol
	}
}

type fakeStream struct {
	frames []image.Image
	block  bool
	closed atomic.Bool
}

func (s *fakeStream) Next(ctx context.Context) (image.Image, error) {
	if len(s.frames) > 0 {
		f := s.frames[0]
		s.frames = s.frames[1:]

		return f, nil
	}

	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	return nil, io.EOF
}

func (s *fakeStream) Close() error {
	s.closed.Store(true)
	return nil
}

type fakeCamera struct {
	mu      sync.Mutex
	streams []*fakeStream
	openErr error
	open    atomic.Int32
	maxOpen atomic.Int32
	next    func() *fakeStream
}

func (c *fakeCamera) Open(_ context.Context, _ scan.Device, _ scan.Constraints) (scan.Stream, error) {
	if c.openErr != nil {
		return nil, c.openErr
	}

	n := c.open.Add(1)
	if n > c.maxOpen.Load() {
		c.maxOpen.Store(n)
	}

	s := c.next()

	c.mu.Lock()
	c.streams = append(c.streams, s)
	c.mu.Unlock()

	return &countedStream{fakeStream: s, cam: c}, nil
}

type countedStream struct {
	*fakeStream
	cam  *fakeCamera
	once sync.Once
}

func (s *countedStream) Close() error {
	s.once.Do(func() { s.cam.open.Add(-1) })
	return s.fakeStream.Close()
}

func receive(t *testing.T, ch <-chan scan.Outcome) (scan.Outcome, bool) {
	t.Helper()

	select {
	case o, ok := <-ch:
		return o, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outcome")
		return scan.Outcome{}, false
	}
}

var dev = scan.Device{ID: "video0", Path: "/dev/video0"}

func TestSession_DecodesFirstBarcode(t *testing.T) {
	var hooked []error

	cam := &fakeCamera{next: func() *fakeStream {
		return &fakeStream{frames: []image.Image{frame(frameEmpty), frame(frameGarbled), frame(frameBarcode), frame(frameBarcode)}}
	}}

	s := scan.NewSession(cam, fakeDecoder{}, scan.WithErrorHook(func(err error) { hooked = append(hooked, err) }))

	out, err := s.Start(context.Background(), dev)
	require.NoError(t, err)

	o, ok := receive(t, out)
	require.True(t, ok)
	assert.Equal(t, "7891000100103", o.Barcode)
	assert.NoError(t, o.Err)

	_, ok = receive(t, out)
	assert.False(t, ok, "exactly one outcome")

	s.Stop()

	assert.Equal(t, scan.StateDecoded, s.State())
	assert.Len(t, hooked, 1)
	assert.Equal(t, int32(0), cam.open.Load())
	assert.True(t, cam.streams[0].closed.Load())
}

func TestSession_StreamLost(t *testing.T) {
	cam := &fakeCamera{next: func() *fakeStream {
		return &fakeStream{frames: []image.Image{frame(frameEmpty)}}
	}}

	s := scan.NewSession(cam, fakeDecoder{})

	out, err := s.Start(context.Background(), dev)
	require.NoError(t, err)

	o, ok := receive(t, out)
	require.True(t, ok)
	assert.ErrorIs(t, o.Err, scan.ErrStreamLost)
	assert.Empty(t, o.Barcode)

	s.Stop()
	assert.Equal(t, scan.StateFailed, s.State())
}

func TestSession_OpenFailure(t *testing.T) {
	cam := &fakeCamera{openErr: errors.New("permission denied")}
	s := scan.NewSession(cam, fakeDecoder{})

	_, err := s.Start(context.Background(), dev)
	require.ErrorIs(t, err, scan.ErrCameraAccess)
	assert.Equal(t, scan.StateFailed, s.State())
	assert.ErrorIs(t, s.Last().Err, scan.ErrCameraAccess)

	s.Stop()
}

func TestSession_StopDeliversNothing(t *testing.T) {
	cam := &fakeCamera{next: func() *fakeStream {
		return &fakeStream{frames: []image.Image{frame(frameEmpty)}, block: true}
	}}

	s := scan.NewSession(cam, fakeDecoder{})

	out, err := s.Start(context.Background(), dev)
	require.NoError(t, err)
	assert.Equal(t, scan.StateStreaming, s.State())

	s.Stop()
	s.Stop()

	_, ok := receive(t, out)
	assert.False(t, ok)
	assert.Equal(t, scan.StateIdle, s.State())
	assert.Equal(t, int32(0), cam.open.Load())
}

func TestSession_StartReplacesRunningSession(t *testing.T) {
	cam := &fakeCamera{next: func() *fakeStream {
		return &fakeStream{block: true}
	}}

	s := scan.NewSession(cam, fakeDecoder{})

	first, err := s.Start(context.Background(), dev)
	require.NoError(t, err)

	second, err := s.Start(context.Background(), dev)
	require.NoError(t, err)

	_, ok := receive(t, first)
	assert.False(t, ok, "first session is closed without an outcome")
	assert.Equal(t, int32(1), cam.maxOpen.Load())

	s.Stop()

	_, ok = receive(t, second)
	assert.False(t, ok)
	assert.Equal(t, int32(0), cam.open.Load())
}

func TestSession_StopWhenIdle(t *testing.T) {
	s := scan.NewSession(&fakeCamera{}, fakeDecoder{})

	s.Stop()
	assert.Equal(t, scan.StateIdle, s.State())
}

func TestSession_ContextCancel(t *testing.T) {
	cam := &fakeCamera{next: func() *fakeStream { return &fakeStream{block: true} }}
	s := scan.NewSession(cam, fakeDecoder{})

	ctx, cancel := context.WithCancel(context.Background())

	out, err := s.Start(ctx, dev)
	require.NoError(t, err)

	cancel()

	_, ok := receive(t, out)
	assert.False(t, ok)

	s.Stop()
	assert.Equal(t, int32(0), cam.open.Load())
}
