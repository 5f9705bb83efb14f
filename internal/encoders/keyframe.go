package encoders

import (
	"github.com/pion/rtp/codecs/vp9"

	"github.com/smazurov/imgtowebm/internal/types"
)

// vp8StartCode follows the 3-byte frame tag of every VP8 key frame.
var vp8StartCode = [3]byte{0x9d, 0x01, 0x2a}

// IsKeyframe reports whether the compressed frame is a key frame of codec.
func IsKeyframe(codec types.Codec, frame []byte) bool {
	switch codec {
	case types.CodecVP8:
		return isVP8Keyframe(frame)
	case types.CodecVP9:
		return isVP9Keyframe(frame)
	default:
		return false
	}
}

// isVP8Keyframe reads the frame tag: bit 0 is the inverted key frame flag.
// pion/rtp's vp8 package only parses RTP payload descriptors, so the three
// tag bytes are checked here.
func isVP8Keyframe(frame []byte) bool {
	if len(frame) < 6 {
		return false
	}
	if frame[0]&0x01 != 0 {
		return false
	}
	return frame[3] == vp8StartCode[0] && frame[4] == vp8StartCode[1] && frame[5] == vp8StartCode[2]
}

// isVP9Keyframe parses the uncompressed frame header. A header that does not
// parse is never a key frame.
func isVP9Keyframe(frame []byte) bool {
	var h vp9.Header
	if err := h.Unmarshal(frame); err != nil {
		return false
	}
	return !h.ShowExistingFrame && !h.NonKeyFrame
}
