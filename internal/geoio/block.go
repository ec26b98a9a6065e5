package geoio

import (
	"math"

	"github.com/jkoenig1013/geoio/internal/utils"
)

// PixelBlock is a 3-D pixel array (band, row, col) read from or written to a
// raster. Pixels of one band are contiguous in Bytes, rows in raster order.
// Mask, when not nil, holds one element per pixel of the full block (band
// major, same layout as Bytes); true means the element is excluded.
// A PixelBlock is produced fresh per read, nothing is cached across reads.
type PixelBlock struct {
	Bands        int
	SizeX, SizeY int
	DType        DType
	Bytes        []byte
	Mask         []bool
}

// NewPixelBlock allocates a zeroed block of the given shape and dtype
func NewPixelBlock(bands, sizeX, sizeY int, dtype DType) *PixelBlock {
	return &PixelBlock{
		Bands: bands,
		SizeX: sizeX,
		SizeY: sizeY,
		DType: dtype,
		Bytes: make([]byte, bands*sizeX*sizeY*dtype.Size()),
	}
}

// NewPixelBlockFromBytes wraps data as a block of the given dimensions. dims
// is (sizeY, sizeX) for a single band, promoted to one band, or
// (bands, sizeY, sizeX); anything else is a DimensionError.
func NewPixelBlockFromBytes(dtype DType, dims []int, data []byte) (*PixelBlock, error) {
	var bands, sizeX, sizeY int
	switch len(dims) {
	case 2:
		bands, sizeY, sizeX = 1, dims[0], dims[1]
	case 3:
		bands, sizeY, sizeX = dims[0], dims[1], dims[2]
	default:
		return nil, NewDimensionError("arrays must have 2 or 3 dimensions, got %d", len(dims))
	}
	if len(data) != bands*sizeX*sizeY*dtype.Size() {
		return nil, NewValidationError("%d bytes of data for a %dx%dx%d %s block", len(data), bands, sizeY, sizeX, dtype)
	}
	return &PixelBlock{Bands: bands, SizeX: sizeX, SizeY: sizeY, DType: dtype, Bytes: data}, nil
}

// Shape returns the shape of the block
func (b *PixelBlock) Shape() Shape {
	return Shape{b.Bands, b.SizeX, b.SizeY}
}

// BandBytes returns the raw bytes of one band (0-based)
func (b *PixelBlock) BandBytes(i int) []byte {
	n := b.SizeX * b.SizeY * b.DType.Size()
	return b.Bytes[i*n : (i+1)*n]
}

// ValueAt returns the pixel value at (band, row, col), 0-based, as a float64
func (b *PixelBlock) ValueAt(band, row, col int) float64 {
	i := (band*b.SizeY+row)*b.SizeX + col
	switch b.DType {
	case DTypeUINT8:
		return float64(b.Bytes[i])
	case DTypeUINT16:
		return float64(utils.SliceByteToGeneric[uint16](b.Bytes)[i])
	case DTypeUINT32:
		return float64(utils.SliceByteToGeneric[uint32](b.Bytes)[i])
	case DTypeINT8:
		return float64(utils.SliceByteToGeneric[int8](b.Bytes)[i])
	case DTypeINT16:
		return float64(utils.SliceByteToGeneric[int16](b.Bytes)[i])
	case DTypeINT32:
		return float64(utils.SliceByteToGeneric[int32](b.Bytes)[i])
	case DTypeFLOAT32:
		return float64(utils.SliceByteToGeneric[float32](b.Bytes)[i])
	case DTypeFLOAT64:
		return utils.SliceByteToGeneric[float64](b.Bytes)[i]
	}
	panic("Unknown type")
}

// SetValueAt sets the pixel value at (band, row, col), 0-based
func (b *PixelBlock) SetValueAt(band, row, col int, v float64) {
	i := (band*b.SizeY+row)*b.SizeX + col
	switch b.DType {
	case DTypeUINT8:
		b.Bytes[i] = uint8(v)
	case DTypeUINT16:
		utils.SliceByteToGeneric[uint16](b.Bytes)[i] = uint16(v)
	case DTypeUINT32:
		utils.SliceByteToGeneric[uint32](b.Bytes)[i] = uint32(v)
	case DTypeINT8:
		utils.SliceByteToGeneric[int8](b.Bytes)[i] = int8(v)
	case DTypeINT16:
		utils.SliceByteToGeneric[int16](b.Bytes)[i] = int16(v)
	case DTypeINT32:
		utils.SliceByteToGeneric[int32](b.Bytes)[i] = int32(v)
	case DTypeFLOAT32:
		utils.SliceByteToGeneric[float32](b.Bytes)[i] = float32(v)
	case DTypeFLOAT64:
		utils.SliceByteToGeneric[float64](b.Bytes)[i] = v
	default:
		panic("Unknown type")
	}
}

// MaskedAt returns true when the element at (band, row, col) is excluded
func (b *PixelBlock) MaskedAt(band, row, col int) bool {
	if b.Mask == nil {
		return false
	}
	return b.Mask[(band*b.SizeY+row)*b.SizeX+col]
}

// EnsureMask allocates an all-included mask if the block has none
func (b *PixelBlock) EnsureMask() {
	if b.Mask == nil {
		b.Mask = make([]bool, b.Bands*b.SizeX*b.SizeY)
	}
}

// ApplyMask2D excludes the elements of every band whose per-pixel mask entry
// is true. The 2-D mask is laid out row major with the shape of one band.
func (b *PixelBlock) ApplyMask2D(excluded []bool) {
	b.EnsureMask()
	n := b.SizeX * b.SizeY
	for band := 0; band < b.Bands; band++ {
		for i := 0; i < n; i++ {
			if excluded[i] {
				b.Mask[band*n+i] = true
			}
		}
	}
}

// MaskZeroes excludes every element whose raw pixel value is zero.
// Warning: this conflates "no data" with legitimate zero-valued pixels.
func (b *PixelBlock) MaskZeroes() {
	b.EnsureMask()
	for band := 0; band < b.Bands; band++ {
		for row := 0; row < b.SizeY; row++ {
			for col := 0; col < b.SizeX; col++ {
				if b.ValueAt(band, row, col) == 0 {
					b.Mask[(band*b.SizeY+row)*b.SizeX+col] = true
				}
			}
		}
	}
}

// Pad re-expands a clipped block to its originally requested size. The pad
// regions are zero filled and, when the block carries a mask, always excluded.
func (b *PixelBlock) Pad(pads PadOffsets) *PixelBlock {
	if pads.IsZero() {
		return b
	}
	sizeX := b.SizeX + pads.Left + pads.Right
	sizeY := b.SizeY + pads.Top + pads.Bottom
	out := NewPixelBlock(b.Bands, sizeX, sizeY, b.DType)
	if b.Mask != nil {
		// pads are excluded whatever the masking mode
		out.Mask = make([]bool, b.Bands*sizeX*sizeY)
		for i := range out.Mask {
			out.Mask[i] = true
		}
	}
	esize := b.DType.Size()
	for band := 0; band < b.Bands; band++ {
		src := b.BandBytes(band)
		dst := out.BandBytes(band)
		for row := 0; row < b.SizeY; row++ {
			srcOff := row * b.SizeX * esize
			dstOff := ((row+pads.Top)*sizeX + pads.Left) * esize
			copy(dst[dstOff:dstOff+b.SizeX*esize], src[srcOff:srcOff+b.SizeX*esize])
			if b.Mask != nil {
				for col := 0; col < b.SizeX; col++ {
					out.Mask[(band*sizeY+row+pads.Top)*sizeX+pads.Left+col] = b.Mask[(band*b.SizeY+row)*b.SizeX+col]
				}
			}
		}
	}
	return out
}

// ScrubNonFinite replaces every NaN or infinite value with nodata.
// It is a no-op for integer dtypes, which cannot hold non-finite values.
func (b *PixelBlock) ScrubNonFinite(nodata float64) {
	if !b.DType.IsFloatingPointFormat() {
		return
	}
	switch b.DType {
	case DTypeFLOAT32:
		pix := utils.SliceByteToGeneric[float32](b.Bytes)
		for i, v := range pix {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				pix[i] = float32(nodata)
			}
		}
	case DTypeFLOAT64:
		pix := utils.SliceByteToGeneric[float64](b.Bytes)
		for i, v := range pix {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				pix[i] = nodata
			}
		}
	}
}
