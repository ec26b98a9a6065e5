package geoio

import (
	"math/rand"

	"github.com/jkoenig1013/geoio/internal/utils"
)

// Shape is the size of a raster in gdal order (bands, x, y)
type Shape struct {
	Bands int
	SizeX int
	SizeY int
}

// Pixels returns the number of pixels of one band
func (s Shape) Pixels() int {
	return s.SizeX * s.SizeY
}

// Window is a rectangular pixel-space region of a raster.
// It may describe a region partially or fully outside the raster bounds.
type Window struct {
	X0, Y0       int
	SizeX, SizeY int
}

// PadOffsets is the per-side number of pixels clipped from a window by
// ResolveWindow. They become zero-pad widths when re-expanding a clipped
// read back to the requested size.
type PadOffsets struct {
	Left, Right, Top, Bottom int
}

// IsZero returns true when no side was clipped
func (p PadOffsets) IsZero() bool {
	return p == PadOffsets{}
}

// WindowFromShape returns the window covering the full raster
func WindowFromShape(s Shape) Window {
	return Window{0, 0, s.SizeX, s.SizeY}
}

// Buffered expands the window symmetrically by (bx, by) pixels on every side
func (w Window) Buffered(bx, by int) Window {
	return Window{w.X0 - bx, w.Y0 - by, w.SizeX + 2*bx, w.SizeY + 2*by}
}

// broadcastBuffer validates a 1- or 2-element non-negative buffer and
// broadcasts it to (bx, by)
func broadcastBuffer(buffer []int) (int, int, error) {
	var bx, by int
	switch len(buffer) {
	case 0:
		return 0, 0, nil
	case 1:
		bx, by = buffer[0], buffer[0]
	case 2:
		bx, by = buffer[0], buffer[1]
	default:
		return 0, 0, NewValidationError("buffer must be either length one or two, got %d", len(buffer))
	}
	if bx < 0 || by < 0 {
		return 0, 0, NewValidationError("buffer values must be non-negative, got %v", buffer)
	}
	return bx, by, nil
}

// ResolveWindow clips the (possibly buffered) window to the raster bounds.
// It returns the in-bounds window and the per-side pad widths needed to
// re-expand a clipped read back to the requested (buffered) size.
// A window already fully inside bounds is returned unchanged with zero pads.
// ResolveWindow fails with an OverlapError when the clipped window is empty.
func ResolveWindow(shape Shape, w Window, buffer []int) (Window, PadOffsets, error) {
	bx, by, err := broadcastBuffer(buffer)
	if err != nil {
		return Window{}, PadOffsets{}, err
	}
	w = w.Buffered(bx, by)

	var pads PadOffsets
	if w.X0 < 0 {
		pads.Left = -w.X0
		w.SizeX += w.X0
		w.X0 = 0
	}
	if w.Y0 < 0 {
		pads.Top = -w.Y0
		w.SizeY += w.Y0
		w.Y0 = 0
	}
	if over := w.X0 + w.SizeX - shape.SizeX; over > 0 {
		pads.Right = utils.MinI(over, w.SizeX)
		w.SizeX -= pads.Right
	}
	if over := w.Y0 + w.SizeY - shape.SizeY; over > 0 {
		pads.Bottom = utils.MinI(over, w.SizeY)
		w.SizeY -= pads.Bottom
	}

	if w.SizeX <= 0 || w.SizeY <= 0 || w.X0 >= shape.SizeX || w.Y0 >= shape.SizeY {
		return Window{}, PadOffsets{}, NewOverlapError(
			"the requested data window has no content: window does not overlap the %dx%d raster", shape.SizeX, shape.SizeY)
	}
	return w, pads, nil
}

// TilePlan emits the windows of a tiling of the raster, in raster-major
// order (x varies fastest), as an explicit state machine. The start offset
// centers the leftover margin of a non-divisible dimension.
type TilePlan struct {
	sizeX, sizeY     int
	strideX, strideY int
	limX, limY       int
	x0, y0           int
	x, y             int
	done             bool
}

// NewTilePlan creates a plan of adjoining tiles of size (sizeX, sizeY)
func NewTilePlan(shape Shape, sizeX, sizeY int) (*TilePlan, error) {
	return NewStridedPlan(shape, sizeX, sizeY, sizeX, sizeY)
}

// NewStridedPlan creates a plan of tiles of size (sizeX, sizeY) stepped by
// (strideX, strideY)
func NewStridedPlan(shape Shape, sizeX, sizeY, strideX, strideY int) (*TilePlan, error) {
	if sizeX <= 0 || sizeY <= 0 {
		return nil, NewValidationError("no value in win_size can be equal to or less than zero, got (%d, %d)", sizeX, sizeY)
	}
	if strideX <= 0 || strideY <= 0 {
		return nil, NewValidationError("no value in stride can be equal to or less than zero, got (%d, %d)", strideX, strideY)
	}
	// Split the pixels that don't fit in the size/stride between the two
	// ends of the image, using floor to reduce fractions.
	x0 := utils.MaxI(((shape.SizeX-sizeX)%strideX)/2, 0)
	y0 := utils.MaxI(((shape.SizeY-sizeY)%strideY)/2, 0)
	return &TilePlan{
		sizeX: sizeX, sizeY: sizeY,
		strideX: strideX, strideY: strideY,
		limX: shape.SizeX, limY: shape.SizeY,
		x0: x0, y0: y0,
		x: x0, y: y0,
	}, nil
}

// Next returns the following window of the plan, and false when the plan is
// exhausted
func (p *TilePlan) Next() (Window, bool) {
	if p.done || p.y >= p.limY {
		p.done = true
		return Window{}, false
	}
	w := Window{p.x, p.y, p.sizeX, p.sizeY}
	p.x += p.strideX
	if p.x >= p.limX {
		p.x = p.x0
		p.y += p.strideY
	}
	return w, true
}

// Count returns the total number of windows the plan emits
func (p *TilePlan) Count() int {
	nx := (p.limX - 1 - p.x0) / p.strideX
	ny := (p.limY - 1 - p.y0) / p.strideY
	return (nx + 1) * (ny + 1)
}

// RandomPlan emits n windows of size (sizeX, sizeY) at uniform random
// offsets within the raster bounds
type RandomPlan struct {
	sizeX, sizeY int
	maxX, maxY   int
	left         int
	rng          *rand.Rand
}

// NewRandomPlan creates a plan of n randomly placed tiles.
// rng may be nil, in which case a time-seeded source is used.
func NewRandomPlan(shape Shape, sizeX, sizeY, n int, rng *rand.Rand) (*RandomPlan, error) {
	if sizeX <= 0 || sizeY <= 0 {
		return nil, NewValidationError("no value in win_size can be equal to or less than zero, got (%d, %d)", sizeX, sizeY)
	}
	if sizeX > shape.SizeX || sizeY > shape.SizeY {
		return nil, NewValidationError("win_size (%d, %d) exceeds the raster size (%d, %d)", sizeX, sizeY, shape.SizeX, shape.SizeY)
	}
	if n <= 0 {
		return nil, NewValidationError("the number of windows must be positive, got %d", n)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &RandomPlan{
		sizeX: sizeX, sizeY: sizeY,
		maxX: shape.SizeX - sizeX, maxY: shape.SizeY - sizeY,
		left: n,
		rng:  rng,
	}, nil
}

// Next returns the following window of the plan, and false when the n draws
// are exhausted
func (p *RandomPlan) Next() (Window, bool) {
	if p.left <= 0 {
		return Window{}, false
	}
	p.left--
	return Window{p.rng.Intn(p.maxX + 1), p.rng.Intn(p.maxY + 1), p.sizeX, p.sizeY}, true
}
