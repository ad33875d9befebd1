// Package flipbook builds the flip-book animation descriptor that drives a
// sprite sheet in the game's JSON UI.
//
// Build is pure: the same Params always produce the same Descriptor and the
// same JSON bytes. Every entry lasts one sampling interval; when the
// animation does not loop the final entry is held for HoldSeconds so the
// black closing tile stays on screen.
package flipbook
