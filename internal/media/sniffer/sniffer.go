// Package sniffer detects post image formats from magic bytes. Only raster
// formats are accepted; anything else is rejected before it reaches the
// object store.
package sniffer

import (
	"bytes"
	"errors"
	"net/textproto"
	"strings"
)

type ImageType string

const (
	TypeJPEG ImageType = "jpeg"
	TypePNG  ImageType = "png"
	TypeGIF  ImageType = "gif"
	TypeWEBP ImageType = "webp"
)

var ErrUnsupportedType = errors.New("unsupported image type")

type Result struct {
	Type ImageType
	MIME string
}

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Detect inspects the leading bytes of data.
func Detect(data []byte) (Result, error) {
	switch {
	case isJPEG(data):
		return Result{Type: TypeJPEG, MIME: "image/jpeg"}, nil
	case isPNG(data):
		return Result{Type: TypePNG, MIME: "image/png"}, nil
	case isGIF(data):
		return Result{Type: TypeGIF, MIME: "image/gif"}, nil
	case isWEBP(data):
		return Result{Type: TypeWEBP, MIME: "image/webp"}, nil
	}
	return Result{}, ErrUnsupportedType
}

func isJPEG(head []byte) bool {
	return len(head) > 3 && head[0] == 0xff && head[1] == 0xd8 && head[2] == 0xff
}

func isPNG(head []byte) bool {
	return len(head) >= len(pngMagic) && bytes.Equal(head[:len(pngMagic)], pngMagic)
}

func isGIF(head []byte) bool {
	return len(head) >= 6 && (bytes.Equal(head[:6], []byte("GIF87a")) || bytes.Equal(head[:6], []byte("GIF89a")))
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("WEBP"))
}

// DeclaredMIME extracts the bare media type from a multipart part header,
// empty when none was declared.
func DeclaredMIME(header textproto.MIMEHeader) string {
	contentType := header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(contentType)
}
