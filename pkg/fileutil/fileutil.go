// Package fileutil provides file-related constants shared by the packages
// that write files.
package fileutil

// Standard file permission constants.
const (
	// ReadWriteUserReadOthers represents read/write for owner, read for others (0644 in octal)
	ReadWriteUserReadOthers = 0o644
)
