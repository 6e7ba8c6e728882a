// Package utils provides shared utility functions for trove.
//
// # System Utilities
//
//   - GetUsername: returns the current system username
//   - GetHostname: returns the system hostname
//
// # String Utilities
//
//   - FormatPaths: formats file paths for human-readable output
//   - FormatSize: renders byte counts in KiB/MiB
//
// # I/O Utilities
//
//   - ReadStdin: reads piped document content from standard input
//
// # Terminal Utilities
//
//   - ReadPassphrase: reads a password with echo disabled, falling back to
//     the controlling terminal when stdin is piped
//   - IsTerminal, IsTTYAvailable: terminal detection
package utils
