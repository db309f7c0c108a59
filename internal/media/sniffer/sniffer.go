package sniffer

import (
	"bytes"
	"errors"
	"strings"
)

type MediaType string

const (
	TypePNG  MediaType = "png"
	TypeJPEG MediaType = "jpeg"
	TypeGIF  MediaType = "gif"
	TypeWEBP MediaType = "webp"
	TypeAVIF MediaType = "avif"
	TypeSVG  MediaType = "svg"
	TypeMP4  MediaType = "mp4"
	TypeAVI  MediaType = "avi"
)

var ErrUnknownType = errors.New("unknown media type")

type Result struct {
	Type MediaType
	MIME string
}

func (r Result) IsVideo() bool {
	return r.Type == TypeMP4 || r.Type == TypeAVI
}

// Detect identifies the actual container of a media buffer from its leading
// bytes, independent of any declared file name or content type.
func Detect(data []byte) (Result, error) {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}

	switch {
	case isPNG(head):
		return Result{Type: TypePNG, MIME: "image/png"}, nil
	case isMP4(head):
		return Result{Type: TypeMP4, MIME: "video/mp4"}, nil
	case isAVI(head):
		return Result{Type: TypeAVI, MIME: "video/avi"}, nil
	case isJPEG(head):
		return Result{Type: TypeJPEG, MIME: "image/jpeg"}, nil
	case isGIF(head):
		return Result{Type: TypeGIF, MIME: "image/gif"}, nil
	case isWEBP(head):
		return Result{Type: TypeWEBP, MIME: "image/webp"}, nil
	case isAVIF(head):
		return Result{Type: TypeAVIF, MIME: "image/avif"}, nil
	case isSVG(head):
		return Result{Type: TypeSVG, MIME: "image/svg+xml"}, nil
	}

	return Result{}, ErrUnknownType
}

func isPNG(head []byte) bool {
	magic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return len(head) >= len(magic) && bytes.Equal(head[:len(magic)], magic)
}

// MP4-family containers start with a size-prefixed "ftyp" box.
func isMP4(head []byte) bool {
	if len(head) < 12 || !bytes.Equal(head[4:8], []byte("ftyp")) {
		return false
	}
	brand := string(head[8:12])
	return brand != "avif" && brand != "avis"
}

func isAVI(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("AVI "))
}

func isJPEG(head []byte) bool {
	return len(head) > 3 && head[0] == 0xff && head[1] == 0xd8 && head[2] == 0xff
}

func isGIF(head []byte) bool {
	return len(head) >= 6 && (bytes.Equal(head[:6], []byte("GIF87a")) || bytes.Equal(head[:6], []byte("GIF89a")))
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("WEBP"))
}

func isAVIF(head []byte) bool {
	if len(head) < 12 {
		return false
	}
	return bytes.Equal(head[4:8], []byte("ftyp")) && bytes.Contains(head[8:], []byte("avif"))
}

func isSVG(head []byte) bool {
	trimmed := strings.TrimSpace(string(head))
	return strings.HasPrefix(trimmed, "<svg") || strings.HasPrefix(trimmed, "<?xml")
}
