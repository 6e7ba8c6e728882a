// Package workflows implements the repository operations behind the trove
// CLI: setup, check, add, read, delete and list.
//
// Each workflow takes a context and an options struct embedding
// RepoOptions, builds the encrypted repository from explicit settings and a
// password source, closes it before returning and records the operation in
// the audit log. Workflows return structured results; presentation is left
// to the cmd package.
package workflows
