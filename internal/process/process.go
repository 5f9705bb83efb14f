package process

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/smazurov/imgtowebm/internal/logging"
)

// LogParser parses a log line and returns the log level and message.
// Used to extract structured log info from process output (ffmpeg, gstreamer, etc.)
type LogParser func(line string) (level, msg string)

// ErrStopped is returned by Stdout reads after Stop was called.
var ErrStopped = errors.New("process stopped")

// defaultTailLines is how many stderr lines are kept for error reports.
const defaultTailLines = 20

// Process manages one subprocess with piped stdin and stdout.
type Process struct {
	id              string
	command         string
	cmd             *exec.Cmd
	logger          logging.Logger
	processLogger   logging.Logger // logger for process output (nil = use logger)
	logParser       LogParser      // parses process output for log level (nil = no parsing)
	stdin           io.WriteCloser
	stdout          *io.PipeReader
	tail            *lineTail
	done            chan struct{} // closed once the process exited and stderr is drained
	exitErr         error
	stopOnce        sync.Once
	gracefulTimeout time.Duration // timeout for graceful shutdown before force kill
	killTimeout     time.Duration // timeout after Kill() before giving up
}

// NewProcess creates a new process. The command is parsed on Start.
func NewProcess(id, command string, logger logging.Logger) *Process {
	return &Process{
		id:              id,
		command:         command,
		logger:          logger,
		tail:            newLineTail(defaultTailLines),
		done:            make(chan struct{}),
		gracefulTimeout: 5 * time.Second,
		killTimeout:     5 * time.Second,
	}
}

// Command returns the command string.
func (p *Process) Command() string {
	return p.command
}

// SetLogParser sets a custom logger and log parser for process output.
// The logger is used for process output (e.g., module="ffmpeg").
// The parser extracts log level from process-specific output formats.
func (p *Process) SetLogParser(logger logging.Logger, parser LogParser) {
	p.processLogger = logger
	p.logParser = parser
}

// Start parses the command and starts the subprocess.
func (p *Process) Start() error {
	if p.cmd != nil {
		return fmt.Errorf("process %s already started", p.id)
	}

	args, err := parseCommand(p.command)
	if err != nil {
		p.logger.Error("Failed to parse command", "error", err)
		return err
	}

	if len(args) == 0 {
		p.logger.Error("Empty command")
		return fmt.Errorf("empty command")
	}

	cmd := exec.Command(args[0], args[1:]...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		p.logger.Error("Failed to create stdin pipe", "error", err)
		return err
	}

	// io.Pipe instead of StdoutPipe: Wait may only return after the reader
	// consumed everything, so no output is lost when the process exits first.
	stdoutReader, stdoutWriter := io.Pipe()
	stderrReader, stderrWriter := io.Pipe()
	cmd.Stdout = stdoutWriter
	cmd.Stderr = stderrWriter

	if err := cmd.Start(); err != nil {
		p.logger.Error("Failed to start process", "error", err, "command", p.command)
		stdoutWriter.Close()
		stderrWriter.Close()
		return err
	}

	p.cmd = cmd
	p.stdin = stdin
	p.stdout = stdoutReader

	p.logger.Info("Process started", "id", p.id, "pid", cmd.Process.Pid, "command", p.command)

	outputDone := make(chan struct{})
	go func() {
		p.streamOutput(stderrReader, "stderr")
		close(outputDone)
	}()

	go func() {
		err := cmd.Wait()
		stdoutWriter.Close()
		stderrWriter.Close()
		<-outputDone
		p.exitErr = err
		close(p.done)
	}()

	return nil
}

// Stdin returns the subprocess input. Nil before Start.
func (p *Process) Stdin() io.Writer {
	return p.stdin
}

// Stdout returns the subprocess output. It reports io.EOF once the process
// exited and everything written was read.
func (p *Process) Stdout() io.Reader {
	return p.stdout
}

// CloseStdin signals end of input to the subprocess.
func (p *Process) CloseStdin() error {
	if p.stdin == nil {
		return nil
	}
	err := p.stdin.Close()
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}

// Wait blocks until the subprocess exited and its stderr was drained.
// Stdout must be read to EOF concurrently or Wait never returns.
// A non-zero exit is returned as an error that includes the stderr tail.
func (p *Process) Wait() (int, error) {
	if p.cmd == nil {
		return 1, fmt.Errorf("process %s not started", p.id)
	}
	<-p.done
	return p.handleProcessExit(p.exitErr)
}

// Done is closed once the subprocess exited and stderr was drained.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Stop closes stdin, sends SIGINT and force kills the process if it does not
// exit within the graceful timeout. Safe to call more than once.
func (p *Process) Stop() int {
	if p.cmd == nil {
		return 0
	}
	exitCode := 0
	p.stopOnce.Do(func() {
		_ = p.CloseStdin()
		p.sendStopSignal()
		// Unblocks the copy goroutine when nobody drains stdout anymore.
		p.stdout.CloseWithError(ErrStopped)
		exitCode = p.waitForExit(p.gracefulTimeout)
	})
	return exitCode
}

// StderrTail returns the last lines the subprocess wrote to stderr.
func (p *Process) StderrTail() []string {
	return p.tail.lines()
}

// exitCodeFromError extracts exit code from process error.
// Returns 0 for nil error, the exit code for ExitError, or 1 for other errors.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

// handleProcessExit turns the wait result into an exit code and an error
// carrying the tail of stderr.
func (p *Process) handleProcessExit(processErr error) (int, error) {
	exitCode := exitCodeFromError(processErr)
	if processErr == nil {
		p.logger.Debug("Process exited", "id", p.id, "exit_code", exitCode)
		return 0, nil
	}

	p.logger.Debug("Process exited with error", "id", p.id, "exit_code", exitCode, "error", processErr)
	if tail := p.tail.lines(); len(tail) > 0 {
		return exitCode, fmt.Errorf("%s exited with code %d: %w: %s", p.id, exitCode, processErr, strings.Join(tail, "; "))
	}
	return exitCode, fmt.Errorf("%s exited with code %d: %w", p.id, exitCode, processErr)
}

// sendStopSignal sends SIGINT to the subprocess without waiting.
func (p *Process) sendStopSignal() {
	if p.cmd == nil || p.cmd.Process == nil {
		return
	}
	select {
	case <-p.done:
		return
	default:
	}
	p.logger.Debug("Sending SIGINT to process", "pid", p.cmd.Process.Pid)
	if err := p.cmd.Process.Signal(syscall.SIGINT); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Warn("Failed to send SIGINT", "error", err)
	}
}

// waitForExit waits for the process to exit with a timeout, force-killing if needed.
func (p *Process) waitForExit(timeout time.Duration) int {
	select {
	case <-p.done:
		return exitCodeFromError(p.exitErr)
	case <-time.After(timeout):
		p.logger.Warn("Graceful shutdown timeout, forcing kill", "timeout", timeout)
		if err := p.cmd.Process.Kill(); err != nil {
			// "os: process already finished" is OK - process exited between timeout and kill
			if !errors.Is(err, os.ErrProcessDone) {
				p.logger.Error("Failed to kill process", "error", err)
			}
		}
		// Wait for process to exit with a secondary timeout to prevent hanging
		select {
		case <-p.done:
		case <-time.After(p.killTimeout):
			p.logger.Error("Process did not exit after kill signal")
		}
		return 137
	}
}

// streamOutput logs output from the subprocess and records it in the tail.
// Uses the configured processLogger (or falls back to default logger).
// Uses the configured LogParser to extract log levels from process output.
func (p *Process) streamOutput(reader io.Reader, source string) {
	scanner := bufio.NewScanner(reader)

	// Use process logger if configured, otherwise fall back to default logger
	logger := p.processLogger
	if logger == nil {
		logger = p.logger
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		// Use configured parser or default to info level
		level, msg := "info", line
		if p.logParser != nil {
			level, msg = p.logParser(line)
		}

		switch level {
		case "panic", "fatal", "error":
			p.tail.add(msg)
			logger.Error(msg)
		case "warning":
			p.tail.add(msg)
			logger.Warn(msg)
		case "debug", "trace", "verbose":
			logger.Debug(msg)
		default:
			p.tail.add(msg)
			logger.Info(msg)
		}
	}

	if err := scanner.Err(); err != nil {
		p.logger.Warn("Error reading output", "source", source, "error", err)
	}
	// Keep the writer side unblocked if scanning stopped early.
	_, _ = io.Copy(io.Discard, reader)
}

// lineTail keeps the last n lines written to it.
type lineTail struct {
	mu    sync.Mutex
	max   int
	items []string
}

func newLineTail(n int) *lineTail {
	return &lineTail{max: n}
}

func (t *lineTail) add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, line)
	if len(t.items) > t.max {
		t.items = t.items[len(t.items)-t.max:]
	}
}

func (t *lineTail) lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.items...)
}

// parseCommand parses a command string into arguments
// Handles quoted strings and basic escaping.
func parseCommand(command string) ([]string, error) {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := rune(0)

	command = strings.TrimSpace(command)
	runes := []rune(command)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"' || r == '\'':
			switch {
			case !inQuote:
				inQuote = true
				quoteChar = r
			case r == quoteChar:
				inQuote = false
				quoteChar = 0
			default:
				current.WriteRune(r)
			}
		case r == ' ' && !inQuote:
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		case r == '\\' && i+1 < len(runes):
			i++
			current.WriteRune(runes[i])
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}

	if inQuote {
		return nil, fmt.Errorf("unclosed quote in command")
	}

	return args, nil
}
