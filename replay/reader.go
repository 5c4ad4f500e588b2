package replay

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"github.com/lixenwraith/vignettes/event"
)

// Frame is one decoded snapshot frame
type Frame struct {
	Step       uint64
	CapturedAt time.Time
	Payload    json.RawMessage
}

// ReadManifest loads the bundle manifest
func ReadManifest(dir string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}

// ReadEvents decodes every record in the bundle's event log
func ReadEvents(dir string) ([]event.Record, error) {
	m, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(dir, m.EventsPath))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []event.Record
	scanner := bufio.NewScanner(snappy.NewReader(f))
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec event.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return out, fmt.Errorf("decode event %d: %w", len(out), err)
		}
		out = append(out, rec)
	}
	return out, scanner.Err()
}

// ReadFrames decodes every length-prefixed frame in the bundle
func ReadFrames(dir string) ([]Frame, error) {
	m, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(dir, m.FramesPath))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []Frame
	header := make([]byte, frameHeaderSize)
	for {
		if _, err := io.ReadFull(dec, header); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, fmt.Errorf("frame %d header: %w", len(out), err)
		}
		size := binary.LittleEndian.Uint32(header[16:20])
		payload := make([]byte, size)
		if _, err := io.ReadFull(dec, payload); err != nil {
			return out, fmt.Errorf("frame %d payload: %w", len(out), err)
		}
		out = append(out, Frame{
			Step:       binary.LittleEndian.Uint64(header[0:8]),
			CapturedAt: time.Unix(0, int64(binary.LittleEndian.Uint64(header[8:16]))).UTC(),
			Payload:    payload,
		})
	}
}
