// Package services defines shared utilities consumed by the build pipeline and
// its external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and pack names for
//     logging.
//   - Structured error markers plus the Wrap helper so every failure carries
//     one of the pipeline's error kinds (source unavailable, seek failure,
//     invalid frame count, encoding failure, and so on).
//
// Use these helpers when wiring new stage logic so error reporting and
// observability stay uniform across the pipeline.
package services
