package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/encoding"
)

func TestNewUTF8Reader(t *testing.T) {
	type testCase struct {
		name  string
		input []byte
		want  string
	}

	tests := []testCase{
		{
			name:  "UTF8Passthrough",
			input: []byte("Código;Preço\nFeijão;8,50\n"),
			want:  "Código;Preço\nFeijão;8,50\n",
		},
		{
			name:  "UTF8BOMStripped",
			input: append([]byte{0xEF, 0xBB, 0xBF}, "EAN;Nome\n"...),
			want:  "EAN;Nome\n",
		},
		{
			// "Preço;Feijão\n" in Windows-1252: ç = 0xE7, ã = 0xE3
			name:  "Windows1252",
			input: []byte{'P', 'r', 'e', 0xE7, 'o', ';', 'F', 'e', 'i', 'j', 0xE3, 'o', '\n'},
			want:  "Preço;Feijão\n",
		},
		{
			name:  "UTF16LE",
			input: []byte{0xFF, 0xFE, 'E', 0, 'A', 0, 'N', 0},
			want:  "EAN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := encoding.NewUTF8Reader(bytes.NewReader(tt.input))
			require.NoError(t, err)

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestDetect_MultibyteAtSampleBoundary(t *testing.T) {
	// The sample ends in the middle of "ç"; the text is still UTF-8.
	sample := []byte(strings.Repeat("a", 10) + "ç")
	sample = sample[:len(sample)-1]

	assert.Equal(t, "UTF-8", encoding.Detect(sample))
}
