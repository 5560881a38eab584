package telemetry

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
)

// gzipMagic is the two-byte header every gzip stream starts with.
var gzipMagic = []byte{0x1f, 0x8b}

// Decode reads a telemetry document (a single JSON array of event objects)
// and returns the decoded events. A structurally malformed document is a
// fatal error; per-event oddities (missing characters, null teams, null
// locations) decode into nil pointers and are dealt with downstream.
func Decode(r io.Reader) ([]Event, error) {
	var events []Event
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode telemetry: %w", err)
	}
	return events, nil
}

// DecodeRaw decodes telemetry from an in-memory buffer, transparently
// decompressing when the buffer is gzip'd. Telemetry CDN responses and
// cached objects both arrive this way.
func DecodeRaw(data []byte) ([]Event, error) {
	if IsGzip(data) {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open gzip telemetry: %w", err)
		}
		defer gz.Close()
		return Decode(gz)
	}
	return Decode(bytes.NewReader(data))
}

// IsGzip reports whether data starts with the gzip magic bytes.
func IsGzip(data []byte) bool {
	return len(data) >= 2 && bytes.Equal(data[:2], gzipMagic)
}

// Gunzip decompresses a gzip'd buffer into a fresh slice.
func Gunzip(data []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return io.ReadAll(gz)
}

// Gzip compresses a buffer at BestSpeed. Telemetry documents are large and
// highly repetitive, so even the fastest level shrinks them dramatically.
func Gzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := gz.Write(data); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
