package sniffer

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectHead(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want MediaType
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0x00}, TypeJPEG},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00}, TypePNG},
		{"gif", []byte("GIF89a......"), TypeGIF},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), TypeWEBP},
		{"avif", []byte("\x00\x00\x00\x1cftypavif\x00\x00\x00\x00"), TypeAVIF},
		{"svg", []byte("  <svg xmlns='http://www.w3.org/2000/svg'></svg>"), TypeSVG},
		{"svg with prolog", []byte(`<?xml version="1.0"?><svg></svg>`), TypeSVG},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectHead(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Type)
		})
	}
}

func TestDetectHead_Unknown(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("hello"), []byte(`<?xml version="1.0"?><html/>`)} {
		_, err := DetectHead(data)
		assert.ErrorIs(t, err, ErrUnknownType)
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "jpg", TypeJPEG.Extension())
	assert.Equal(t, "png", TypePNG.Extension())
}

func TestMimeTypeFromHTTP(t *testing.T) {
	h := http.Header{}
	assert.Equal(t, "", MimeTypeFromHTTP(h))
	h.Set("Content-Type", "Image/PNG; charset=binary")
	assert.Equal(t, "image/png", MimeTypeFromHTTP(h))
}
