// Package framesample extracts still frames from a video source at fixed time
// offsets.
//
// Frame i is captured at i/frameRate seconds. Captures are strictly
// sequential: the seek for frame i+1 starts only after frame i has been
// returned by the source, so decoders that track a single playhead behave
// deterministically. Each streams frames to a callback as they arrive; Sample
// collects them into a slice.
//
// The sampler does not clamp offsets against the source duration. Callers
// decide the frame count before sampling.
package framesample
