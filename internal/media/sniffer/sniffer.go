// Package sniffer identifies item images from their leading bytes.
package sniffer

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
)

type MediaType string

const (
	TypeJPEG MediaType = "jpeg"
	TypePNG  MediaType = "png"
	TypeGIF  MediaType = "gif"
	TypeWEBP MediaType = "webp"
	TypeAVIF MediaType = "avif"
	TypeSVG  MediaType = "svg"
)

// Extension is the file suffix used for stored objects.
func (t MediaType) Extension() string {
	if t == TypeJPEG {
		return "jpg"
	}
	return string(t)
}

var ErrUnknownType = errors.New("unknown media type")

type Result struct {
	Type MediaType
	MIME string
}

type signature struct {
	match  func([]byte) bool
	result Result
}

var signatures = []signature{
	{isJPEG, Result{Type: TypeJPEG, MIME: "image/jpeg"}},
	{isPNG, Result{Type: TypePNG, MIME: "image/png"}},
	{isGIF, Result{Type: TypeGIF, MIME: "image/gif"}},
	{isWEBP, Result{Type: TypeWEBP, MIME: "image/webp"}},
	{isAVIF, Result{Type: TypeAVIF, MIME: "image/avif"}},
	{isSVG, Result{Type: TypeSVG, MIME: "image/svg+xml"}},
}

// headLen is how much of the payload is inspected.
const headLen = 512

func DetectHead(data []byte) (Result, error) {
	head := data
	if len(head) > headLen {
		head = head[:headLen]
	}
	for _, sig := range signatures {
		if sig.match(head) {
			return sig.result, nil
		}
	}
	return Result{}, ErrUnknownType
}

var (
	pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	gif87    = []byte("GIF87a")
	gif89    = []byte("GIF89a")
)

func isJPEG(head []byte) bool {
	return len(head) > 3 && head[0] == 0xff && head[1] == 0xd8 && head[2] == 0xff
}

func isPNG(head []byte) bool {
	return bytes.HasPrefix(head, pngMagic)
}

func isGIF(head []byte) bool {
	return bytes.HasPrefix(head, gif87) || bytes.HasPrefix(head, gif89)
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 && bytes.Equal(head[:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WEBP"))
}

func isAVIF(head []byte) bool {
	if len(head) < 12 || string(head[4:8]) != "ftyp" {
		return false
	}
	return bytes.Contains(head[8:], []byte("avif")) || bytes.Contains(head[8:], []byte("avis"))
}

// isSVG accepts documents that open with an svg root, optionally behind an
// xml declaration or doctype.
func isSVG(head []byte) bool {
	trimmed := strings.ToLower(strings.TrimSpace(string(head)))
	if strings.HasPrefix(trimmed, "<svg") {
		return true
	}
	return (strings.HasPrefix(trimmed, "<?xml") || strings.HasPrefix(trimmed, "<!doctype svg")) &&
		strings.Contains(trimmed, "<svg")
}

func MimeTypeFromHTTP(header http.Header) string {
	contentType := header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
