package scan

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// FFmpegCamera captures V4L2 devices through an ffmpeg subprocess that writes
// raw 8-bit grayscale frames to stdout.
type FFmpegCamera struct {
	Path string // ffmpeg binary, defaults to "ffmpeg"
}

// Open starts ffmpeg and waits for the first frame, so a busy or missing
// device fails here rather than on the first Next.
func (c *FFmpegCamera) Open(ctx context.Context, dev Device, cons Constraints) (Stream, error) {
	bin := c.Path
	if bin == "" {
		bin = "ffmpeg"
	}

	w, h := cons.Width, cons.Height
	if w <= 0 || h <= 0 {
		w, h = DefaultConstraints.Width, DefaultConstraints.Height
	}

	// ffmpeg has no portable autofocus switch; ContinuousFocus is left to the driver.
	cmd := exec.CommandContext(ctx, bin,
		"-hide_banner", "-loglevel", "error",
		"-f", "v4l2",
		"-video_size", strconv.Itoa(w)+"x"+strconv.Itoa(h),
		"-i", dev.Path,
		"-pix_fmt", "gray",
		"-f", "rawvideo", "-",
	)

	stderr := &tailBuffer{limit: 2048}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting ffmpeg: %w", err)
	}

	s := &ffmpegStream{cmd: cmd, out: stdout, width: w, height: h}

	first, err := s.read()
	if err != nil {
		s.Close()

		if msg := stderr.String(); msg != "" {
			return nil, fmt.Errorf("reading first frame: %s", msg)
		}

		return nil, fmt.Errorf("reading first frame: %w", err)
	}

	s.pending = first

	return s, nil
}

type ffmpegStream struct {
	cmd     *exec.Cmd
	out     io.Reader
	width   int
	height  int
	pending image.Image

	closeOnce sync.Once
}

func (s *ffmpegStream) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.pending != nil {
		img := s.pending
		s.pending = nil

		return img, nil
	}

	return s.read()
}

func (s *ffmpegStream) read() (image.Image, error) {
	buf := make([]byte, s.width*s.height)
	if _, err := io.ReadFull(s.out, buf); err != nil {
		return nil, err
	}

	return &image.Gray{Pix: buf, Stride: s.width, Rect: image.Rect(0, 0, s.width, s.height)}, nil
}

func (s *ffmpegStream) Close() error {
	s.closeOnce.Do(func() {
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}

		// Wait reports the kill; the stream is gone either way.
		s.cmd.Wait()
	})

	return nil
}

type tailBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf.Write(p)
	if over := t.buf.Len() - t.limit; over > 0 {
		t.buf.Next(over)
	}

	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return strings.TrimSpace(t.buf.String())
}
