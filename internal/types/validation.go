package types

// ValidationResults records which VP8/VP9 encoders worked on this machine.
type ValidationResults struct {
	Timestamp      string          `toml:"timestamp" json:"timestamp"`
	FFmpegVersion  string          `toml:"ffmpeg_version" json:"ffmpeg_version"`
	TestResolution string          `toml:"test_resolution" json:"test_resolution"`
	VP8            CodecValidation `toml:"vp8" json:"vp8"`
	VP9            CodecValidation `toml:"vp9" json:"vp9"`
}

// CodecValidation represents validation results for a specific codec
type CodecValidation struct {
	Working []string `toml:"working" json:"working"`
	Failed  []string `toml:"failed" json:"failed"`
}

// For returns the validation bucket of the given codec.
func (r *ValidationResults) For(c Codec) *CodecValidation {
	if c == CodecVP8 {
		return &r.VP8
	}
	return &r.VP9
}
