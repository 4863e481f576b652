// Package index models the extension repository package index. Entries are
// kept as raw JSON objects so that unknown keys and key order survive a merge;
// the package provides loading, the deletion-aware merge, versionId
// minification, and the pretty and compact encodings written to disk.
package index
