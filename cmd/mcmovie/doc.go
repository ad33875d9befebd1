// Package main hosts the mcmovie CLI entrypoint and command graph.
//
// The Cobra-based command tree turns a video into a resource pack (build),
// reports what a build would capture (probe), lists and prunes the pack
// registry (history), checks external tools (doctor), and scaffolds
// configuration (config). It centralizes configuration resolution and logger
// setup so subcommands can focus on output.
//
// Keep this package lean: add functionality to the internal packages first,
// then surface it through dedicated commands or flags here.
package main
