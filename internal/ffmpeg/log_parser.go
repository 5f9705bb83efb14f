package ffmpeg

import "strings"

// defaultLogLevel is reported for lines that carry no level tag, such as the
// progress lines ffmpeg prints without a prefix.
const defaultLogLevel = "info"

var logLevels = map[string]bool{
	"quiet": true, "panic": true, "fatal": true, "error": true, "warning": true,
	"info": true, "verbose": true, "debug": true, "trace": true,
}

// ParseLogLevel splits a line written with -loglevel level+<lvl> into its level
// and message. Both "[error] msg" and "[libvpx @ 0x..] [error] msg" are
// recognised; the component prefix stays in the returned message.
func ParseLogLevel(line string) (level, msg string) {
	tag, rest, ok := leadingTag(line)
	if !ok {
		return defaultLogLevel, line
	}
	if logLevels[tag] {
		return tag, rest
	}

	if next, after, ok := leadingTag(rest); ok && logLevels[next] {
		return next, line[:len(line)-len(rest)] + after
	}
	return defaultLogLevel, line
}

// leadingTag returns the text of a "[tag] " prefix and what follows it.
func leadingTag(s string) (tag, rest string, ok bool) {
	if !strings.HasPrefix(s, "[") {
		return "", s, false
	}
	tag, rest, ok = strings.Cut(s[1:], "] ")
	if !ok || tag == "" {
		return "", s, false
	}
	return tag, rest, true
}
