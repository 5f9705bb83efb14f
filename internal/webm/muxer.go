// Package webm writes encoded VP8/VP9 packets into a WebM file using
// github.com/at-wat/ebml-go.
package webm

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/at-wat/ebml-go/mkvcore"
	"github.com/at-wat/ebml-go/webm"

	"github.com/smazurov/imgtowebm/internal/logging"
	"github.com/smazurov/imgtowebm/internal/pipeline"
	"github.com/smazurov/imgtowebm/internal/types"
)

// TimecodeScale is the segment tick, in nanoseconds. Block timestamps are
// written in milliseconds.
const TimecodeScale = 1_000_000

const (
	videoTrackNumber = 1
	trackTypeVideo   = 1
	closeTimeout     = 5 * time.Second
)

var codecIDs = map[types.Codec]string{
	types.CodecVP8: "V_VP8",
	types.CodecVP9: "V_VP9",
}

// CodecID returns the Matroska codec ID of codec.
func CodecID(codec types.Codec) (string, error) {
	id, ok := codecIDs[codec]
	if !ok {
		return "", fmt.Errorf("codec %q cannot be stored in webm", codec)
	}
	return id, nil
}

// Options configures a Muxer.
type Options struct {
	// WritingApp is stored in the segment info, e.g. "imgtowebm 1.2.0".
	WritingApp string
	Logger     logging.Logger
}

// Muxer implements pipeline.Muxer for a single video track.
type Muxer struct {
	sink   *sinkCloser
	info   *webm.Info
	logger logging.Logger

	track     *Track
	writer    webm.BlockWriteCloser
	finalized bool

	mu    sync.Mutex
	fatal error
}

// NewMuxer creates a Muxer writing to sink. The sink is closed by Finalize.
func NewMuxer(sink io.WriteCloser, opts Options) *Muxer {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	app := opts.WritingApp
	if app == "" {
		app = "imgtowebm"
	}
	return &Muxer{
		sink: newSinkCloser(sink),
		info: &webm.Info{
			TimecodeScale: TimecodeScale,
			MuxingApp:     "imgtowebm",
			WritingApp:    app,
		},
		logger: logger,
	}
}

// AddVideoTrack declares the only track of the file. The container header is
// written together with the first frame.
func (m *Muxer) AddVideoTrack(width, height int, codec types.Codec) (pipeline.Track, error) {
	if m.track != nil {
		return nil, errors.New("video track already added")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid track size %dx%d", width, height)
	}
	codecID, err := CodecID(codec)
	if err != nil {
		return nil, err
	}

	m.track = &Track{
		muxer: m,
		entry: webm.TrackEntry{
			Name:        "Video",
			TrackNumber: videoTrackNumber,
			TrackUID:    videoTrackNumber,
			CodecID:     codecID,
			TrackType:   trackTypeVideo,
			Video: &webm.Video{
				PixelWidth:  uint64(width),
				PixelHeight: uint64(height),
			},
		},
	}
	m.logger.Debug("Video track added", "codec", codecID, "width", width, "height", height)
	return m.track, nil
}

// Finalize flushes the last cluster and closes the sink. A file without
// frames still gets a header and an empty track list entry.
func (m *Muxer) Finalize() error {
	if m.finalized {
		return nil
	}
	m.finalized = true

	if m.track == nil {
		return m.sink.Close()
	}
	if m.writer == nil {
		if err := m.open(); err != nil {
			_ = m.sink.Close()
			return err
		}
	}

	if err := m.writer.Close(); err != nil {
		_ = m.sink.Close()
		return fmt.Errorf("failed to close webm writer: %w", err)
	}

	select {
	case <-m.sink.done:
	case <-time.After(closeTimeout):
		_ = m.sink.Close()
		return errors.New("timed out flushing webm output")
	}

	if err := m.fatalErr(); err != nil {
		return err
	}
	return m.sink.err
}

// open writes the EBML header, segment info and tracks.
func (m *Muxer) open() error {
	writers, err := webm.NewSimpleBlockWriter(m.sink, []webm.TrackEntry{m.track.entry},
		mkvcore.WithSegmentInfo(m.info),
		mkvcore.WithOnErrorHandler(func(err error) {
			m.logger.Warn("WebM writer error", "error", err)
		}),
		mkvcore.WithOnFatalHandler(func(err error) {
			m.logger.Error("WebM writer failed", "error", err)
			m.mu.Lock()
			if m.fatal == nil {
				m.fatal = err
			}
			m.mu.Unlock()
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create webm writer: %w", err)
	}
	m.writer = writers[0]
	return nil
}

func (m *Muxer) fatalErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fatal != nil {
		return fmt.Errorf("webm write failed: %w", m.fatal)
	}
	return nil
}

// Track is the video track of a Muxer.
type Track struct {
	muxer  *Muxer
	entry  webm.TrackEntry
	frames int
}

// AddFrame writes one packet. timestampNs is truncated to the segment's
// millisecond timecodes. The block writer shifts all timecodes so that the
// first frame of the file is at 0; the pipeline always starts at 0 ms, so
// its timestamps are stored unchanged.
func (t *Track) AddFrame(data []byte, timestampNs uint64, keyframe bool) error {
	m := t.muxer
	if m.finalized {
		return errors.New("muxer already finalized")
	}
	if err := m.fatalErr(); err != nil {
		return err
	}
	if m.writer == nil {
		if err := m.open(); err != nil {
			return err
		}
	}

	timecode := int64(timestampNs / TimecodeScale)
	if _, err := m.writer.Write(keyframe, timecode, data); err != nil {
		return fmt.Errorf("failed to write frame at %d ms: %w", timecode, err)
	}
	t.frames++
	return nil
}

// Frames returns how many frames were written to the track.
func (t *Track) Frames() int {
	return t.frames
}

// sinkCloser reports when the block writer has closed the output, which
// happens on its own goroutine after the last cluster is written.
type sinkCloser struct {
	w    io.WriteCloser
	once sync.Once
	done chan struct{}
	err  error
}

func newSinkCloser(w io.WriteCloser) *sinkCloser {
	return &sinkCloser{w: w, done: make(chan struct{})}
}

func (s *sinkCloser) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *sinkCloser) Close() error {
	s.once.Do(func() {
		s.err = s.w.Close()
		close(s.done)
	})
	return s.err
}
