// Package logger provides leveled, coloured logging for trove commands.
//
// Logging is controlled by two flags:
//
//   - --verbose: shows info messages
//   - --debug: shows info and debug messages
//
// Warnings and errors are always written to stderr.
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Added %d documents", count)
//
// The repository core does not log. Workflows and commands do.
package logger
