// Package filesystem abstracts the filesystem operations the document
// store needs, so the save and recovery protocols can be exercised
// against fault-injecting implementations in tests.
package filesystem
