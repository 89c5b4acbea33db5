//go:build !go1.22

package main

// slog.SetLogLoggerLevel does not exist before Go 1.22; the default
// handler's level cannot be changed on older toolchains, so verbose
// mode cannot lower it below Info there.
func setDebugLogLevel() {}
