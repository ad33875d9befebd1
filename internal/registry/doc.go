// Package registry persists the manifest identity of every pack mcmovie has
// built, backed by SQLite.
//
// The game replaces an installed resource pack only when the new archive
// carries the same header UUID with a higher version. Reserve hands out that
// identity: the stored UUIDs with the patch version bumped for a known pack
// name, or fresh UUIDs for a new one. Record stores the outcome of a build so
// the history command can list it.
package registry
