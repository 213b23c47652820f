package scan

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"
)

// FileCamera serves a still image as an endless stream. Device.Path names the file.
type FileCamera struct {
	Interval time.Duration
}

func (c FileCamera) Open(_ context.Context, dev Device, _ Constraints) (Stream, error) {
	f, err := os.Open(dev.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", dev.Path, err)
	}

	return &stillStream{img: img, interval: c.Interval}, nil
}

type stillStream struct {
	img      image.Image
	interval time.Duration
	served   bool
}

func (s *stillStream) Next(ctx context.Context) (image.Image, error) {
	if s.served && s.interval > 0 {
		select {
		case <-time.After(s.interval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.served = true

	return s.img, nil
}

func (s *stillStream) Close() error { return nil }
