//go:build go1.22

package main

import "log/slog"

func setDebugLogLevel() {
	slog.SetLogLoggerLevel(slog.LevelDebug)
}
