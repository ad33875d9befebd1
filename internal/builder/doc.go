// Package builder coordinates one end-to-end pack build: preflight checks,
// opening the video, running the frame pipeline, packaging the archive, and
// recording the pack identity.
//
// Only one build runs at a time per state directory; a file lock guards the
// registry and output writes. Every build is stamped with a run ID that
// appears in each log line it produces.
package builder
