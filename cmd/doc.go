// Package cmd wires the trove command tree. Commands parse flags, resolve
// settings and the password source, call into internal/workflows and render
// the results.
package cmd
