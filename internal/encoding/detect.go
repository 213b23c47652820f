// Package encoding normalises uploaded text files to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sampleSize = 4096

// legacy maps chardet charset names to decoders. Anything else falls back to Windows-1252,
// the usual charset of spreadsheet exports on Brazilian desktops.
var legacy = map[string]xencoding.Encoding{
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-15":  charmap.ISO8859_15,
	"ISO-8859-9":   charmap.ISO8859_9,
	"IBM850":       charmap.CodePage850,
}

// Detect names the charset of sample: a BOM wins, then UTF-8 validity, then chardet.
func Detect(sample []byte) string {
	switch {
	case bytes.HasPrefix(sample, []byte{0xEF, 0xBB, 0xBF}):
		return "UTF-8-BOM"
	case bytes.HasPrefix(sample, []byte{0xFF, 0xFE}):
		return "UTF-16LE"
	case bytes.HasPrefix(sample, []byte{0xFE, 0xFF}):
		return "UTF-16BE"
	case utf8.Valid(trimPartialRune(sample)):
		return "UTF-8"
	}

	res, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil {
		return "windows-1252"
	}

	if _, ok := legacy[res.Charset]; ok || res.Charset == "UTF-8" {
		return res.Charset
	}

	return "windows-1252"
}

// NewUTF8Reader returns a reader yielding r's content as UTF-8 without a BOM.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sampleSize)

	sample, err := br.Peek(sampleSize)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peek: %w", err)
	}

	switch charset := Detect(sample); charset {
	case "UTF-8":
		return br, nil
	case "UTF-8-BOM":
		if _, err := br.Discard(3); err != nil {
			return nil, fmt.Errorf("skip bom: %w", err)
		}

		return br, nil
	case "UTF-16LE":
		return transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), nil
	case "UTF-16BE":
		return transform.NewReader(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()), nil
	default:
		enc, ok := legacy[charset]
		if !ok {
			enc = charmap.Windows1252
		}

		return transform.NewReader(br, enc.NewDecoder()), nil
	}
}

// trimPartialRune drops a multi-byte sequence cut off by the end of the sample.
func trimPartialRune(b []byte) []byte {
	for i := 1; i <= utf8.UTFMax && i <= len(b); i++ {
		start := len(b) - i
		if !utf8.RuneStart(b[start]) {
			continue
		}

		if !utf8.FullRune(b[start:]) {
			return b[:start]
		}

		break
	}

	return b
}
