// Package replay records interaction events and periodic session snapshots to a
// compressed directory bundle
package replay

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"github.com/lixenwraith/vignettes/event"
)

const (
	ManifestName = "manifest.json"
	EventsName   = "events.jsonl.sz"
	FramesName   = "frames.bin.zst"

	// DefaultFrameInterval is the minimum spacing between recorded snapshots
	DefaultFrameInterval = 200 * time.Millisecond

	manifestVersion = 1
	frameHeaderSize = 8 + 8 + 4
)

var labelCleaner = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Manifest describes the bundle layout
type Manifest struct {
	Version         int    `json:"version"`
	CreatedAt       string `json:"created_at"`
	FrameIntervalMs int    `json:"frame_interval_ms"`
	EventsPath      string `json:"events_path"`
	FramesPath      string `json:"frames_path"`
}

// Recorder streams records and snapshots into a bundle directory
type Recorder struct {
	mu          sync.Mutex
	dir         string
	now         func() time.Time
	interval    time.Duration
	eventFile   *os.File
	eventStream *snappy.Writer
	frameFile   *os.File
	frameStream *zstd.Encoder
	lastFrame   time.Time
	events      int
	frames      int
	closed      bool
}

// NewRecorder creates root/<label>-<timestamp> and opens the compressed sinks
func NewRecorder(root, label string, clock func() time.Time, interval time.Duration) (*Recorder, Manifest, error) {
	if root == "" {
		return nil, Manifest{}, fmt.Errorf("replay root must be provided")
	}
	if clock == nil {
		clock = time.Now
	}
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	cleaned := labelCleaner.ReplaceAllString(label, "")
	if cleaned == "" {
		cleaned = "session"
	}
	created := clock().UTC()
	dir := filepath.Join(root, fmt.Sprintf("%s-%s", cleaned, created.Format("20060102T150405Z")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, Manifest{}, err
	}

	eventFile, err := os.Create(filepath.Join(dir, EventsName))
	if err != nil {
		return nil, Manifest{}, err
	}
	frameFile, err := os.Create(filepath.Join(dir, FramesName))
	if err != nil {
		eventFile.Close()
		return nil, Manifest{}, err
	}
	frameStream, err := zstd.NewWriter(frameFile)
	if err != nil {
		eventFile.Close()
		frameFile.Close()
		return nil, Manifest{}, err
	}
	eventStream := snappy.NewBufferedWriter(eventFile)

	manifest := Manifest{
		Version:         manifestVersion,
		CreatedAt:       created.Format(time.RFC3339Nano),
		FrameIntervalMs: int(interval / time.Millisecond),
		EventsPath:      EventsName,
		FramesPath:      FramesName,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err == nil {
		err = os.WriteFile(filepath.Join(dir, ManifestName), data, 0o644)
	}
	if err != nil {
		frameStream.Close()
		frameFile.Close()
		eventStream.Close()
		eventFile.Close()
		return nil, Manifest{}, err
	}

	return &Recorder{
		dir:         dir,
		now:         clock,
		interval:    interval,
		eventFile:   eventFile,
		eventStream: eventStream,
		frameFile:   frameFile,
		frameStream: frameStream,
	}, manifest, nil
}

// Directory returns the bundle directory
func (r *Recorder) Directory() string {
	return r.dir
}

// AppendEvent writes one JSON line to the event log
func (r *Recorder) AppendEvent(rec event.Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return os.ErrClosed
	}
	if _, err := r.eventStream.Write(append(line, '\n')); err != nil {
		return err
	}
	r.events++
	return r.eventStream.Flush()
}

// Record implements event.Sink; write failures are logged
func (r *Recorder) Record(rec event.Record) {
	if err := r.AppendEvent(rec); err != nil {
		log.Printf("replay: event write failed: %v", err)
	}
}

// AppendFrame writes v as a length-prefixed JSON frame unless the previous frame
// is younger than the interval; it reports whether the frame was written
func (r *Recorder) AppendFrame(step uint64, v any) (bool, error) {
	captured := r.now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false, os.ErrClosed
	}
	if !r.lastFrame.IsZero() && captured.Sub(r.lastFrame) < r.interval {
		return false, nil
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return false, err
	}

	header := make([]byte, frameHeaderSize)
	binary.LittleEndian.PutUint64(header[0:8], step)
	binary.LittleEndian.PutUint64(header[8:16], uint64(captured.UnixNano()))
	binary.LittleEndian.PutUint32(header[16:20], uint32(len(payload)))
	if _, err := r.frameStream.Write(header); err != nil {
		return false, err
	}
	if _, err := r.frameStream.Write(payload); err != nil {
		return false, err
	}

	r.lastFrame = captured
	r.frames++
	return true, nil
}

// Counts returns how many events and frames were written
func (r *Recorder) Counts() (events, frames int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events, r.frames
}

// Close flushes and releases every sink, returning the first failure
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	keep(r.eventStream.Close())
	keep(r.eventFile.Close())
	keep(r.frameStream.Close())
	keep(r.frameFile.Close())
	return firstErr
}
