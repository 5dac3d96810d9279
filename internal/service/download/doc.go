// Package download orchestrates the download pipeline: URL expansion,
// the rights gate, request construction, engine execution, audio tagging,
// and the final summary.
package download
