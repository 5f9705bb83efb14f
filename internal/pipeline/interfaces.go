package pipeline

import (
	"image"

	"github.com/smazurov/imgtowebm/internal/types"
)

// Packet is one compressed frame produced by an Encoder.
type Packet struct {
	Data     []byte
	PTS      int64 // milliseconds
	Keyframe bool
}

// EncoderConfig is what an Encoder is constructed with.
type EncoderConfig struct {
	Width    int
	Height   int
	Timebase [2]int // numerator, denominator
	Bitrate  int    // kbit/s
	Codec    types.Codec
	FPS      int
}

// Encoder compresses planar YUV420 frames. Submit may return no packets while
// the encoder buffers input; Finish returns everything still buffered, in
// presentation order.
type Encoder interface {
	Submit(ptsMs int64, yuv []byte) ([]Packet, error)
	Finish() ([]Packet, error)
}

// EncoderFactory constructs the Encoder once the output dimensions are known.
type EncoderFactory func(cfg EncoderConfig) (Encoder, error)

// Muxer writes packets into an output container.
type Muxer interface {
	AddVideoTrack(width, height int, codec types.Codec) (Track, error)
	Finalize() error
}

// Track receives the packets of one stream.
type Track interface {
	AddFrame(data []byte, timestampNs uint64, keyframe bool) error
}

// Resampler resizes decoded images with the configured filter.
type Resampler interface {
	// Fit scales img to fit inside width x height, preserving aspect ratio.
	Fit(img image.Image, width, height int, alg types.ScaleAlgorithm) image.Image
	// Stretch scales img to exactly width x height.
	Stretch(img image.Image, width, height int, alg types.ScaleAlgorithm) image.Image
}

// Observer is notified as the run progresses.
type Observer interface {
	FrameEncoded(index, total, packets int)
	PacketMuxed(p Packet)
}
