package encoders

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/pion/webrtc/v4/pkg/media/ivfreader"

	"github.com/smazurov/imgtowebm/internal/ffmpeg"
	"github.com/smazurov/imgtowebm/internal/logging"
	"github.com/smazurov/imgtowebm/internal/pipeline"
	"github.com/smazurov/imgtowebm/internal/process"
)

// Options configures the ffmpeg encoders built by NewFactory.
type Options struct {
	Threads int
	Encoder []ffmpeg.OptionType

	Logger       logging.Logger // encoder lifecycle
	FFmpegLogger logging.Logger // ffmpeg stderr lines
}

// VPX encodes raw YUV420 frames to VP8 or VP9 by piping them through an
// ffmpeg subprocess that writes an IVF stream to stdout.
//
// A reader goroutine parses IVF frames as they arrive. Submit hands back
// whatever packets the encoder has emitted so far, so libvpx lookahead shows
// up as Submit calls that return nothing. Finish closes ffmpeg's input and
// returns the remainder.
type VPX struct {
	cfg       pipeline.EncoderConfig
	frameSize int
	proc      *process.Process
	logger    logging.Logger

	mu        sync.Mutex
	ready     []pipeline.Packet
	submitted []int64 // presentation time of each submitted frame, in order
	next      int     // index into submitted following the last packet
	fps       int
	readErr   error

	readDone chan struct{}
	finished bool
	closed   bool
}

// NewFactory returns a pipeline.EncoderFactory building VPX encoders.
func NewFactory(opts Options) pipeline.EncoderFactory {
	return func(cfg pipeline.EncoderConfig) (pipeline.Encoder, error) {
		return NewVPX(cfg, opts)
	}
}

// NewVPX validates cfg and starts ffmpeg.
func NewVPX(cfg pipeline.EncoderConfig, opts Options) (*VPX, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Bitrate <= 0 {
		return nil, fmt.Errorf("invalid bitrate %d", cfg.Bitrate)
	}
	if cfg.FPS <= 0 {
		return nil, fmt.Errorf("invalid frame rate %d", cfg.FPS)
	}
	encoderName, err := FFmpegEncoderName(cfg.Codec)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	ffmpegLogger := opts.FFmpegLogger
	if ffmpegLogger == nil {
		ffmpegLogger = logger
	}

	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg is not installed or not in PATH: %w", err)
	}

	command, err := ffmpeg.BuildEncodeCommand(&ffmpeg.EncodeParams{
		Width:   cfg.Width,
		Height:  cfg.Height,
		FPS:     cfg.FPS,
		Encoder: encoderName,
		Bitrate: cfg.Bitrate,
		Threads: opts.Threads,
		Options: opts.Encoder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build encode command: %w", err)
	}

	proc := process.NewProcess(encoderName, command, logger)
	proc.SetLogParser(ffmpegLogger, ffmpeg.ParseLogLevel)
	if err := proc.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	e := &VPX{
		cfg:       cfg,
		frameSize: cfg.Width * cfg.Height * 3 / 2,
		proc:      proc,
		logger:    logger,
		fps:       cfg.FPS,
		readDone:  make(chan struct{}),
	}
	go e.readLoop(proc.Stdout())

	logger.Debug("Encoder started", "encoder", encoderName, "width", cfg.Width, "height", cfg.Height, "bitrate_kbps", cfg.Bitrate)
	return e, nil
}

// Submit writes one frame to ffmpeg and returns the packets emitted so far.
func (e *VPX) Submit(ptsMs int64, yuv []byte) ([]pipeline.Packet, error) {
	if e.finished || e.closed {
		return nil, errors.New("encoder already finished")
	}
	if len(yuv) < e.frameSize {
		return nil, fmt.Errorf("frame is %d bytes, want %d", len(yuv), e.frameSize)
	}

	e.mu.Lock()
	readErr := e.readErr
	e.submitted = append(e.submitted, ptsMs)
	e.mu.Unlock()
	if readErr != nil {
		return nil, e.fail(readErr)
	}

	if _, err := e.proc.Stdin().Write(e.rawFrame(yuv)); err != nil {
		return nil, e.fail(fmt.Errorf("write frame at %d ms: %w", ptsMs, err))
	}

	return e.takeReady(), nil
}

// Finish signals end of input and returns all remaining packets once ffmpeg
// has exited.
func (e *VPX) Finish() ([]pipeline.Packet, error) {
	if e.finished || e.closed {
		return nil, errors.New("encoder already finished")
	}
	e.finished = true

	if err := e.proc.CloseStdin(); err != nil {
		return nil, e.fail(fmt.Errorf("close encoder input: %w", err))
	}
	<-e.readDone

	if _, err := e.proc.Wait(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	readErr := e.readErr
	e.mu.Unlock()
	if readErr != nil {
		return nil, readErr
	}

	return e.takeReady(), nil
}

// Close stops ffmpeg if the encode did not run to completion.
func (e *VPX) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if e.finished {
		return nil
	}
	e.proc.Stop()
	<-e.readDone
	return nil
}

// fail stops ffmpeg and returns cause, preferring ffmpeg's own exit error
// since it carries the diagnostic from stderr.
func (e *VPX) fail(cause error) error {
	e.closed = true
	e.proc.Stop()
	<-e.readDone
	if _, err := e.proc.Wait(); err != nil {
		return fmt.Errorf("%w: %w", cause, err)
	}
	return cause
}

// rawFrame lays out yuv the way ffmpeg's yuv420p rawvideo demuxer reads it.
// For even dimensions that is the buffer itself. For odd ones ffmpeg expects
// chroma planes of ceil(w/2)*ceil(h/2) bytes; the available chroma bytes are
// copied and the remainder is neutral grey.
func (e *VPX) rawFrame(yuv []byte) []byte {
	w, h := e.cfg.Width, e.cfg.Height
	luma := w * h
	quarter := luma / 4
	chroma := ((w + 1) / 2) * ((h + 1) / 2)
	if chroma == quarter {
		return yuv[:e.frameSize]
	}

	out := make([]byte, luma+2*chroma)
	copy(out, yuv[:luma])
	u := out[luma : luma+chroma]
	v := out[luma+chroma:]
	fillNeutral(u[copy(u, yuv[luma:luma+quarter]):])
	fillNeutral(v[copy(v, yuv[luma+quarter:e.frameSize]):])
	return out
}

func fillNeutral(b []byte) {
	for i := range b {
		b[i] = 128
	}
}

func (e *VPX) takeReady() []pipeline.Packet {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.ready
	e.ready = nil
	return out
}

// readLoop parses ffmpeg's IVF output until EOF.
func (e *VPX) readLoop(r io.Reader) {
	defer close(e.readDone)
	// Whatever happens, keep ffmpeg from blocking on a full stdout pipe.
	defer func() { _, _ = io.Copy(io.Discard, r) }()

	reader, header, err := ivfreader.NewWith(r)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, process.ErrStopped) {
			return
		}
		e.setReadErr(fmt.Errorf("read ivf header: %w", err))
		return
	}
	e.logger.Debug("IVF stream opened", "fourcc", header.FourCC, "width", header.Width, "height", header.Height,
		"timebase", fmt.Sprintf("%d/%d", header.TimebaseNumerator, header.TimebaseDenominator))

	for {
		frame, frameHeader, err := reader.ParseNextFrame()
		if errors.Is(err, io.EOF) || errors.Is(err, process.ErrStopped) {
			return
		}
		if err != nil {
			e.setReadErr(fmt.Errorf("read ivf frame: %w", err))
			return
		}
		e.enqueue(frame, frameIndex(frameHeader.Timestamp, header, e.fps))
	}
}

// enqueue records a packet, giving it the presentation time of the frame it
// was encoded from.
func (e *VPX) enqueue(frame []byte, index int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// A timestamp past the submitted frames takes the next one in order.
	if index >= len(e.submitted) {
		index = e.next
	}
	var pts int64
	if index < len(e.submitted) {
		pts = e.submitted[index]
	} else {
		pts = pipeline.FrameTimestamp(e.fps, index)
	}
	e.next = index + 1

	e.ready = append(e.ready, pipeline.Packet{
		Data:     frame,
		PTS:      pts,
		Keyframe: IsKeyframe(e.cfg.Codec, frame),
	})
}

func (e *VPX) setReadErr(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.readErr == nil {
		e.readErr = err
	}
}

// frameIndex converts an IVF timestamp to the index of the submitted frame.
// ivfreader rejects headers with a zero time base, so den is never zero here;
// ffmpeg writes 1/fps or 1/1000 depending on the muxer version.
func frameIndex(timestamp uint64, header *ivfreader.IVFFileHeader, fps int) int {
	num, den := uint64(header.TimebaseNumerator), uint64(header.TimebaseDenominator)
	// timestamp * num / den seconds, times fps, rounded to the nearest frame.
	return int((timestamp*num*uint64(fps) + den/2) / den)
}
