// Package audit records repository operations in a JSON Lines log.
//
// The log lives next to the repository config:
//
//	<data-root>/text-repo/audit.jsonl
//
// Each entry has an ID, a UTC timestamp, the local user and host, the
// operation name, and operation details such as the collection and the
// handles involved. Document content and passwords are never logged.
//
//	entry := audit.NewEntry("add")
//	entry.Collection = "pages"
//	entry.Handles = []string{string(h)}
//	if err := audit.Log(r.Folder(), entry); err != nil {
//	    log.Warnf("audit log unavailable: %v", err)
//	}
//
// Logging is best-effort. Callers warn on failure and carry on.
// ReadEntries skips malformed lines, which can appear after a partial write.
package audit
