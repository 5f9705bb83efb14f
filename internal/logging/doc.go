// Package logging provides structured logging with per-module log levels.
//
// A Provider is built once from Config at startup and passed down explicitly;
// there is no package level logger state.
//
//	logs := logging.New(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"ffmpeg": "warn",
//		},
//	})
//	logger := logs.Logger("pipeline")
//	logger.Info("Encoding images", "progress", 50.0)
//
// Records go to stderr as text or JSON. With Config.Journal set they are also
// sent to the systemd journal (SYSLOG_IDENTIFIER=imgtowebm) when journald is
// reachable:
//
//	journalctl -t imgtowebm MODULE=pipeline
//
// Levels: debug, info, warn, error. "trace" is accepted as debug and "off" as
// error, matching the verbosity names of the command line.
package logging
