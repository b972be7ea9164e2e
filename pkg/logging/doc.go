// Package logging provides structured logging configuration for interceptd.
//
// This package wraps log/slog so every component logs the same way.
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelDebug,
//	    Format: logging.FormatJSON,
//	})
//	logger.Info("session installed", "routes", 3)
//
// Components accept a *slog.Logger through an option and fall back to
// Nop() when none is given. Inside go test, NewTestLogger routes records to
// t.Log so they appear only for failing or verbose tests.
package logging
