// Package pipeline turns a video source into a sprite sheet and its flip-book
// descriptor.
//
// Run decides how much of the video to capture, samples frames in time order,
// places each frame on the sheet as it arrives, blackens the closing tile for
// non-looping playback, and builds the matching descriptor. Any failure
// abandons the run and no artifacts are returned.
package pipeline
