// Package process runs a single subprocess with its stdin and stdout attached
// to the caller.
//
// Process wraps os/exec for pipe-driven tools such as ffmpeg:
//   - stdin is exposed as a writer; closing it signals end of input
//   - stdout is exposed as a reader that stays valid until drained, even
//     after the subprocess has exited
//   - stderr is logged line by line through a pluggable LogParser and the
//     last lines are kept for error reports
//   - Stop closes input, sends SIGINT and force kills after a timeout
//
// Example usage:
//
//	p := process.NewProcess("encoder", "ffmpeg -i pipe:0 -f ivf pipe:1", logger)
//	p.SetLogParser(ffmpegLogger, ffmpeg.ParseLogLevel)
//	if err := p.Start(); err != nil {
//	    return err
//	}
//	go consume(p.Stdout())
//	p.Stdin().Write(frame)
//	p.CloseStdin()
//	if _, err := p.Wait(); err != nil {
//	    return err
//	}
package process
