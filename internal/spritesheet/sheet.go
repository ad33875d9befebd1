package spritesheet

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strings"

	"golang.org/x/image/draw"

	"mcmovie/internal/framesample"
	"mcmovie/internal/services"
)

const stageName = "composing"

// MaxRasterBytes bounds the RGBA allocation of one sheet.
const MaxRasterBytes int64 = 1 << 30

var black = image.NewUniform(color.RGBA{A: 0xff})

// Sheet is a horizontal strip of frame tiles.
type Sheet struct {
	frameWidth  int
	frameHeight int
	frameCount  int
	canvas      *image.RGBA
	blackened   bool
	sealed      bool
}

// New allocates a black raster sized for frameCount tiles of frameWidth x frameHeight.
func New(frameWidth, frameHeight, frameCount int) (*Sheet, error) {
	if frameCount < 1 {
		return nil, services.Wrap(services.ErrInvalidFrameCount, stageName, "allocate", fmt.Sprintf("frame count %d", frameCount), nil)
	}
	if frameWidth <= 0 || frameHeight <= 0 {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "allocate", fmt.Sprintf("frame size %dx%d", frameWidth, frameHeight), nil)
	}
	if err := CheckSize(frameWidth, frameHeight, frameCount); err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, frameWidth*frameCount, frameHeight))
	draw.Draw(canvas, canvas.Bounds(), black, image.Point{}, draw.Src)
	return &Sheet{
		frameWidth:  frameWidth,
		frameHeight: frameHeight,
		frameCount:  frameCount,
		canvas:      canvas,
	}, nil
}

// RasterBytes returns the RGBA allocation size of a sheet holding frameCount
// tiles of frameWidth x frameHeight.
func RasterBytes(frameWidth, frameHeight, frameCount int) int64 {
	return int64(frameWidth) * int64(frameCount) * int64(frameHeight) * 4
}

// CheckSize reports ErrEncodingFailure when the sheet would be wider than
// MaxInt32 pixels or its raster would exceed MaxRasterBytes.
func CheckSize(frameWidth, frameHeight, frameCount int) error {
	width := int64(frameWidth) * int64(frameCount)
	if width > math.MaxInt32 {
		return services.Wrap(services.ErrEncodingFailure, stageName, "allocate", fmt.Sprintf("sheet width %d exceeds raster limits", width), nil)
	}
	if size := RasterBytes(frameWidth, frameHeight, frameCount); size > MaxRasterBytes {
		return services.Wrap(services.ErrEncodingFailure, stageName, "allocate",
			fmt.Sprintf("sheet %dx%d needs %d bytes, limit %d", width, frameHeight, size, MaxRasterBytes), nil)
	}
	return nil
}

// Compose builds a sheet from frames in index order and optionally blackens
// the final tile.
func Compose(frames []framesample.Frame, frameWidth, frameHeight int, blackenLast bool) (*Sheet, error) {
	sheet, err := New(frameWidth, frameHeight, len(frames))
	if err != nil {
		return nil, err
	}
	for i, frame := range frames {
		if err := sheet.Place(i, frame.Image); err != nil {
			return nil, err
		}
	}
	if blackenLast {
		if err := sheet.BlackenLast(); err != nil {
			return nil, err
		}
	}
	return sheet, nil
}

// Place copies img into tile index, replacing the tile's pixels. The image is
// not scaled; anything beyond the tile is clipped and any uncovered area stays
// black.
func (s *Sheet) Place(index int, img image.Image) error {
	if err := s.writable("place"); err != nil {
		return err
	}
	if index < 0 || index >= s.frameCount {
		return services.Wrap(services.ErrEncodingFailure, stageName, "place", fmt.Sprintf("tile %d outside 0..%d", index, s.frameCount-1), nil)
	}
	if img == nil {
		return services.Wrap(services.ErrEncodingFailure, stageName, "place", fmt.Sprintf("tile %d has no image", index), nil)
	}
	src := img.Bounds()
	clip := image.Rect(src.Min.X, src.Min.Y, src.Min.X+s.frameWidth, src.Min.Y+s.frameHeight).Intersect(src)
	draw.Copy(s.canvas, image.Pt(index*s.frameWidth, 0), img, clip, draw.Src, nil)
	return nil
}

// BlackenLast overwrites the final tile with solid black. It is the terminal
// write; Place fails afterwards.
func (s *Sheet) BlackenLast() error {
	if err := s.writable("blacken"); err != nil {
		return err
	}
	draw.Draw(s.canvas, s.TileRect(s.frameCount-1), black, image.Point{}, draw.Src)
	s.blackened = true
	return nil
}

// TileRect returns the raster rectangle occupied by tile index.
func (s *Sheet) TileRect(index int) image.Rectangle {
	x := index * s.frameWidth
	return image.Rect(x, 0, x+s.frameWidth, s.frameHeight)
}

// Bounds returns the raster dimensions.
func (s *Sheet) Bounds() image.Rectangle {
	return s.canvas.Bounds()
}

// Image exposes the raster for reading.
func (s *Sheet) Image() image.Image {
	return s.canvas
}

// FrameCount returns the number of tiles.
func (s *Sheet) FrameCount() int { return s.frameCount }

// FrameSize returns the tile width and height.
func (s *Sheet) FrameSize() (int, int) { return s.frameWidth, s.frameHeight }

// EncodePNG writes the raster as a lossless RGBA PNG and seals the sheet.
func (s *Sheet) EncodePNG(w io.Writer, level png.CompressionLevel) error {
	encoder := png.Encoder{CompressionLevel: level}
	if err := encoder.Encode(w, s.canvas); err != nil {
		return services.Wrap(services.ErrEncodingFailure, stageName, "encode png", "", err)
	}
	s.sealed = true
	return nil
}

func (s *Sheet) writable(op string) error {
	switch {
	case s.sealed:
		return services.Wrap(services.ErrEncodingFailure, stageName, op, "sheet already encoded", nil)
	case s.blackened:
		return services.Wrap(services.ErrEncodingFailure, stageName, op, "final tile already blackened", nil)
	}
	return nil
}

// CompressionLevel maps a config value to a PNG compression level. Unknown
// values use the encoder default.
func CompressionLevel(name string) png.CompressionLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none":
		return png.NoCompression
	case "speed":
		return png.BestSpeed
	case "best":
		return png.BestCompression
	default:
		return png.DefaultCompression
	}
}
