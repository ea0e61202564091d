package attachment_test

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nmirabets/gen-ui-app/attachment"
)

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("disk fault")
}

func TestEncode(t *testing.T) {
	enc, err := attachment.Encode(attachment.File{
		Name:      "photo.png",
		MediaType: "image/png",
		Reader:    strings.NewReader("raw-bytes"),
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(enc.Base64)
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	if string(decoded) != "raw-bytes" {
		t.Errorf("got payload %q, want %q", decoded, "raw-bytes")
	}
	if enc.Extension != "png" {
		t.Errorf("got extension %q, want %q", enc.Extension, "png")
	}
}

func TestEncode_ZeroLengthFile(t *testing.T) {
	enc, err := attachment.Encode(attachment.File{
		Name:      "empty.txt",
		MediaType: "text/plain",
		Reader:    strings.NewReader(""),
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if enc.Base64 != "" {
		t.Errorf("got payload %q, want empty", enc.Base64)
	}
	if enc.Extension != "plain" {
		t.Errorf("got extension %q, want %q", enc.Extension, "plain")
	}
}

func TestEncode_ReadFailure(t *testing.T) {
	_, err := attachment.Encode(attachment.File{
		Name:   "broken.bin",
		Reader: failingReader{},
	})
	if !errors.Is(err, attachment.ErrUnreadable) {
		t.Errorf("got error %v, want ErrUnreadable", err)
	}
}

func TestEncode_FormatHint(t *testing.T) {
	tests := []struct {
		name      string
		fileName  string
		mediaType string
		want      string
	}{
		{"subtype", "a.png", "image/png", "png"},
		{"media type with params", "a.txt", "text/plain; charset=utf-8", "plain"},
		{"fallback to file extension", "report.pdf", "", "pdf"},
		{"no hint at all", "README", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := attachment.Encode(attachment.File{
				Name:      tt.fileName,
				MediaType: tt.mediaType,
				Reader:    strings.NewReader("x"),
			})
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if enc.Extension != tt.want {
				t.Errorf("got extension %q, want %q", enc.Extension, tt.want)
			}
		})
	}
}

func TestFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "upload.json")
	if err := os.WriteFile(path, []byte(`{"k":"v"}`), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	f, err := attachment.FromPath(path)
	if err != nil {
		t.Fatalf("FromPath failed: %v", err)
	}

	if f.Name != "upload.json" {
		t.Errorf("got name %q, want %q", f.Name, "upload.json")
	}

	enc, err := attachment.Encode(f)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if enc.Extension != "json" {
		t.Errorf("got extension %q, want %q", enc.Extension, "json")
	}
}

func TestFromPath_Missing(t *testing.T) {
	_, err := attachment.FromPath("/nonexistent/upload.bin")
	if !errors.Is(err, attachment.ErrUnreadable) {
		t.Errorf("got error %v, want ErrUnreadable", err)
	}
}
