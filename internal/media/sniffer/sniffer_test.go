package sniffer

import (
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want MediaType
	}{
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}, TypePNG},
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0}, TypeJPEG},
		{"gif", []byte("GIF89a......"), TypeGIF},
		{"webp", append([]byte("RIFF\x00\x00\x00\x00"), []byte("WEBPVP8 ")...), TypeWEBP},
		{"avi", append([]byte("RIFF\x00\x00\x00\x00"), []byte("AVI LIST")...), TypeAVI},
		{"mp4", []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0, 0, 0, 0}, TypeMP4},
		{"avif", []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'a', 'v', 'i', 'f', 0, 0, 0, 0}, TypeAVIF},
		{"svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`), TypeSVG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Detect(tt.data)
			if err != nil {
				t.Fatalf("Detect(%s): %v", tt.name, err)
			}
			if result.Type != tt.want {
				t.Errorf("Detect(%s) = %s, want %s", tt.name, result.Type, tt.want)
			}
		})
	}
}

func TestDetectUnknown(t *testing.T) {
	if _, err := Detect([]byte("not a media file at all")); err == nil {
		t.Error("expected error for unknown container")
	}
	if _, err := Detect(nil); err == nil {
		t.Error("expected error for empty buffer")
	}
}

func TestIsVideo(t *testing.T) {
	if !(Result{Type: TypeMP4}).IsVideo() || !(Result{Type: TypeAVI}).IsVideo() {
		t.Error("mp4 and avi are video containers")
	}
	if (Result{Type: TypePNG}).IsVideo() {
		t.Error("png is not a video container")
	}
}
