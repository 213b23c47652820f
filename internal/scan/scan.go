// Package scan finds a camera and decodes barcodes from its frames.
package scan

import (
	"context"
	"errors"
	"image"
	"regexp"
)

var (
	ErrNoCamera          = errors.New("scan: no camera available")
	ErrDeviceEnumeration = errors.New("scan: listing cameras failed")
	ErrCameraAccess      = errors.New("scan: camera could not be opened")
	ErrStreamLost        = errors.New("scan: camera stream ended")
	// ErrNoSymbol means the frame holds no readable barcode. It is not a failure.
	ErrNoSymbol = errors.New("scan: no barcode in frame")
)

type Device struct {
	ID    string
	Label string
	Path  string
}

// Constraints are hints; a camera may deliver something else.
type Constraints struct {
	Width           int
	Height          int
	ContinuousFocus bool
}

var DefaultConstraints = Constraints{Width: 1280, Height: 720, ContinuousFocus: true}

type DeviceLister interface {
	ListCameras(ctx context.Context) ([]Device, error)
}

type Camera interface {
	Open(ctx context.Context, dev Device, c Constraints) (Stream, error)
}

type Stream interface {
	Next(ctx context.Context) (image.Image, error)
	Close() error
}

type Decoder interface {
	Decode(img image.Image) (string, error)
}

var rearLabel = regexp.MustCompile(`(?i)back|rear|environment|traseira`)

// SelectCamera prefers a rear-facing camera. With two or more rear matches the
// second is taken, since phones list the wide-angle lens first.
func SelectCamera(devices []Device) (Device, error) {
	if len(devices) == 0 {
		return Device{}, ErrNoCamera
	}

	var rear []Device
	for _, d := range devices {
		if rearLabel.MatchString(d.Label) {
			rear = append(rear, d)
		}
	}

	switch {
	case len(rear) >= 2:
		return rear[1], nil
	case len(rear) == 1:
		return rear[0], nil
	default:
		return devices[0], nil
	}
}

// FindCamera returns the device whose ID, path or label equals name.
func FindCamera(devices []Device, name string) (Device, error) {
	for _, d := range devices {
		if d.ID == name || d.Path == name || d.Label == name {
			return d, nil
		}
	}

	return Device{}, ErrNoCamera
}
