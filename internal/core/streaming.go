package core

// streaming.go prepares the raw export for the CSV reader without loading it
// into memory:
//
//   - A UTF-8 (or UTF-16) BOM written by Excel is dropped
//   - Invalid UTF-8 is replaced with U+FFFD instead of failing the run
//   - windows-1252 exports are transcoded to UTF-8
//   - CountingReader tracks bytes read for progress logging

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Supported source encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

// decoderFor returns the fallback decoder for a named encoding.
func decoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EncodingUTF8, "utf8":
		return unicode.UTF8.NewDecoder(), nil
	case EncodingWindows1252, "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported source encoding %q", name)
	}
}

// WrapSource returns a reader yielding clean UTF-8 from r. A leading BOM
// overrides the configured encoding.
func WrapSource(r io.Reader, encodingName string) (io.Reader, error) {
	dec, err := decoderFor(encodingName)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, unicode.BOMOverride(dec)), nil
}

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Total     int64 // 0 if unknown
}

// NewCountingReader creates a counting reader with optional total size.
func NewCountingReader(r io.Reader, total int64) *CountingReader {
	return &CountingReader{
		reader: r,
		Total:  total,
	}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// Progress returns the read progress as a percentage (0-100).
// Returns 0 if total is unknown.
func (r *CountingReader) Progress() int {
	if r.Total <= 0 {
		return 0
	}
	return int(r.BytesRead * 100 / r.Total)
}
