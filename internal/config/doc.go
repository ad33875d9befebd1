// Package config loads, normalizes, and validates mcmovie configuration data.
//
// It supplies repository defaults (854x480 frames sampled at 10 fps, a one
// second capture cap and a one hour hold for non-looping packs), expands user
// paths including tilde shortcuts, reads TOML files, and honours environment
// fallbacks such as FFMPEG_BINARY. The Config type centralizes every knob the
// CLI and the build pipeline need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
