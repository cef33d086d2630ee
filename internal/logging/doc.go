// Package logging provides dual-tag structured logging.
//
// Every event carries two independent classification axes: a feature tag
// naming the user-facing capability ("user_authentication") and a module
// tag naming the internal component that emitted it ("database"). Entries
// are kept in a bounded in-memory [Storage] indexed by both tags and are
// fanned out to [Handler] sinks.
//
// # Features
//
//   - Five totally ordered levels (DEBUG, INFO, WARNING, ERROR, CRITICAL)
//   - A single admission gate: events below the minimum level never become entries
//   - Bounded storage with oldest-first eviction and feature/module indexes
//   - Console and JSON-lines file handlers, with size-based rotation
//   - Optional pruning and gzip compression of rotated files
//   - Export to JSON, CSV, or text; reading handler files back with [ReadEntries]
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. [Storage] guards
// its sequence and both indexes with one mutex. Handlers run after the
// storage insert returns, so a slow file write never blocks other
// goroutines' inserts. [RotatingWriter] has its own mutex, independent of
// storage.
//
// # Basic Usage
//
//	logger := logging.New(
//	    logging.WithMinLevel(logging.LevelInfo),
//	    logging.WithHandlers(logging.NewConsoleHandler(nil, nil)),
//	)
//	defer logger.Close()
//
//	logger.Info("auth", "auth_module", "login", "ok", logging.Params{"username": "a"})
//	logger.Error("auth", "db", "login", "fail", logging.Params{"username": "b"})
//
//	authLogs := logger.LogsByFeature("auth")
//
// Console output uses [Entry.FormattedString]:
//
//	[2024-05-01T10:30:00.123456] [INFO] [Feature: auth] [Module: auth_module] [login] ok | Params: {"username":"a"}
//
// # Handler Failures
//
// A handler that returns an error or panics is reported on the diagnostics
// stream (see package diag) and the remaining handlers still run. The
// caller's Log call always returns normally.
//
// # Process-wide Logger
//
// [Default] lazily builds a logger with a console handler. [Configure]
// replaces it with a freshly built one, discarding earlier history. Code
// that can take a *Logger explicitly should do so; the global exists for
// call sites that cannot.
//
// # Log Rotation
//
// [FileHandler] writes through a [RotatingWriter]. Before a write, if the
// file is larger than RotationConfig.RotateSize, it is renamed to
// <stem>_<YYYYMMDD_HHMMSS><suffix> and a fresh file is started:
//
//	app.log                     (active)
//	app_20240501_103000.log     (rotated)
//	app_20240501_103000-1.log   (rotated in the same second)
package logging
