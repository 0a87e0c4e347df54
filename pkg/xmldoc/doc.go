// Package xmldoc owns the lifecycle of one XML document bound to one file
// path: loading with backup fallback and corruption recovery, staleness
// detection, and crash-safe saving. The save protocol is backup, write,
// fsync, confirm; the backup is the recovery path for a crash mid-write.
//
// A File is not safe for concurrent use. Two Files bound to the same path
// are not coordinated; the design assumes a single writer per path.
package xmldoc
