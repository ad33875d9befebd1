// Package pack assembles the resource-pack archive that ships a sprite sheet
// and its flip-book descriptor to the game.
//
// The archive carries four entries: the sheet texture and its animation
// descriptor under movie/textures/ui, the server form layout that binds the
// flip book under movie/ui, and manifest.json at the root. Manifests keep a
// stable Identity so rebuilt packs replace the installed copy.
package pack
