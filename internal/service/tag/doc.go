// Package tag writes metadata tags to extracted audio files.
// Tagging is best-effort: a failure never fails the download that
// produced the file.
package tag
