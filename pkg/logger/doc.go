// Package logger provides shared slog attribute helpers so that log
// output stays consistent across the authentication packages.
package logger
