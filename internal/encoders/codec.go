package encoders

import (
	"fmt"

	"github.com/smazurov/imgtowebm/internal/types"
)

// ffmpegEncoders maps each codec to the ffmpeg encoder that produces it.
var ffmpegEncoders = map[types.Codec]string{
	types.CodecVP8: "libvpx",
	types.CodecVP9: "libvpx-vp9",
}

// FFmpegEncoderName returns the ffmpeg encoder used for codec.
func FFmpegEncoderName(codec types.Codec) (string, error) {
	name, ok := ffmpegEncoders[codec]
	if !ok {
		return "", fmt.Errorf("no ffmpeg encoder for codec %q", codec)
	}
	return name, nil
}

// CodecForEncoder is the reverse of FFmpegEncoderName.
func CodecForEncoder(encoderName string) (types.Codec, bool) {
	for codec, name := range ffmpegEncoders {
		if name == encoderName {
			return codec, true
		}
	}
	return 0, false
}
