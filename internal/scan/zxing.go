package scan

import (
	"errors"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

// ZXingDecoder reads EAN-13, EAN-8, UPC-A, UPC-E and Code 128 symbols.
type ZXingDecoder struct {
	readers []gozxing.Reader
	hints   map[gozxing.DecodeHintType]interface{}
}

func NewZXingDecoder() *ZXingDecoder {
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}

	return &ZXingDecoder{
		readers: []gozxing.Reader{
			oned.NewMultiFormatUPCEANReader(hints),
			oned.NewCode128Reader(),
		},
		hints: hints,
	}
}

func (d *ZXingDecoder) Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("binarizing frame: %w", err)
	}

	var lastErr error

	for _, r := range d.readers {
		res, err := r.Decode(bmp, d.hints)
		if err == nil {
			return res.GetText(), nil
		}

		var notFound gozxing.NotFoundException
		if errors.As(err, &notFound) {
			continue
		}

		lastErr = err
	}

	// Checksum and format errors on a blurry frame are as common as empty ones.
	var checksum gozxing.ChecksumException
	var format gozxing.FormatException
	if lastErr == nil || errors.As(lastErr, &checksum) || errors.As(lastErr, &format) {
		return "", ErrNoSymbol
	}

	return "", lastErr
}
