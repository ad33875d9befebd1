// Package preflight provides readiness checks for the external tools and
// filesystem paths mcmovie depends on.
//
// These checks run in two contexts:
//   - The builder calls RunAll before opening a video. If a required check
//     fails, the build stops before any frame is decoded.
//   - The CLI "mcmovie doctor" command renders every result as a table.
package preflight
