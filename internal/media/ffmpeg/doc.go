// Package ffmpeg implements a frame source backed by the ffmpeg and ffprobe
// command-line tools.
//
// Open probes the video with a bounded wait to learn its duration. FrameAt
// then runs one ffmpeg process per capture, seeking to the requested offset
// and decoding a single frame scaled to the configured output size as raw
// RGBA. Each capture is a blocking call; callers sequence them.
package ffmpeg
