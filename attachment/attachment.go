// Package attachment converts binary uploads into the transport encoding the
// agent gateway expects. Encoding is pure from the caller's perspective: no
// shared state, safe to run concurrently for independent files.
package attachment

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/nmirabets/gen-ui-app/core/protocol"
)

// File is an attachment to encode. MediaType is the declared media type
// (e.g. "image/png"); it drives the format hint. Reader supplies the raw
// bytes. A zero-length file is valid and encodes to an empty payload.
type File struct {
	Name      string
	MediaType string
	Reader    io.Reader
}

// Encode reads the file's full contents and produces the base64 payload plus
// a format hint. Returns ErrUnreadable if the underlying read fails.
func Encode(f File) (protocol.Attachment, error) {
	data, err := io.ReadAll(f.Reader)
	if err != nil {
		return protocol.Attachment{}, fmt.Errorf("%w: %s: %s", ErrUnreadable, f.Name, err)
	}
	return protocol.Attachment{
		Base64:    base64.StdEncoding.EncodeToString(data),
		Extension: formatHint(f),
	}, nil
}

// FromPath loads a file from disk into a File, inferring the media type from
// the path's extension. The contents are read eagerly so the returned File
// holds no open handle.
func FromPath(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("%w: %s: %s", ErrUnreadable, path, err)
	}
	return File{
		Name:      filepath.Base(path),
		MediaType: mime.TypeByExtension(filepath.Ext(path)),
		Reader:    bytes.NewReader(data),
	}, nil
}

// formatHint derives the extension hint from the declared media type,
// taking the subtype ("image/png" -> "png"). Falls back to the file name's
// extension when no media type is declared.
func formatHint(f File) string {
	mediaType := f.MediaType
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	if i := strings.IndexByte(mediaType, '/'); i >= 0 {
		if sub := strings.TrimSpace(mediaType[i+1:]); sub != "" {
			return sub
		}
	}
	return strings.TrimPrefix(filepath.Ext(f.Name), ".")
}
