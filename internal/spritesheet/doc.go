// Package spritesheet composites equal-sized frames into a single wide raster.
//
// Frame i occupies the tile [i*W, (i+1)*W) x [0, H). The raster starts solid
// opaque black, frames are drawn unscaled and clipped to their tile, and an
// optional terminal overwrite blackens the final tile. Once encoded the sheet
// rejects further writes.
package spritesheet
