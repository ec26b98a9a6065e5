package raster

import (
	"context"

	"github.com/jkoenig1013/geoio/internal/geoio"
)

// Library is the capability surface consumed from the raster/vector decoding
// collaborator. A Library is process-wide and must be initialized exactly once.
type Library interface {
	// Open opens the raster at path in read-only mode
	// Raise ConfigurationError (missing/unreadable file)
	Open(ctx context.Context, path string) (Source, error)
	// OpenUpdate opens the raster at path in update mode.
	// A path must not be open in read and update mode at the same time.
	OpenUpdate(ctx context.Context, path string) (Source, error)
	// Create creates a new raster of the given shape and dtype with the named driver
	// Raise WriteFailure
	Create(ctx context.Context, path, driver string, shape geoio.Shape, dtype geoio.DType, options []string) (Source, error)
	// DriverCreationDTypes returns the pixel types the driver advertises for creation
	DriverCreationDTypes(driver string) ([]geoio.DType, error)
	// BuildMosaic assembles the given files into an in-memory virtual mosaic
	BuildMosaic(ctx context.Context, paths []string) (Source, error)
	// RasterizeMask burns the wkb geometry (in the projection implied by
	// geoTransform) into a (sizeX, sizeY) byte raster: 1 inside, 0 outside
	RasterizeMask(ctx context.Context, wkbGeom []byte, geoTransform [6]float64, sizeX, sizeY int, allTouched bool) ([]byte, error)
	// OpenVector opens the vector source at path, reprojecting every feature
	// geometry to targetProjection (no reprojection when empty)
	OpenVector(ctx context.Context, path, targetProjection string) (VectorSource, error)
}

// Source is one open raster handle
type Source interface {
	// Shape returns (bands, sizeX, sizeY)
	Shape() geoio.Shape
	// DType returns the pixel type of the given band (1-based)
	DType(band int) geoio.DType
	// NoData returns the no-data value of the given band (1-based), if set
	NoData(band int) (float64, bool)
	// GeoTransform returns the 6 affine coefficients
	GeoTransform() ([6]float64, error)
	// Projection returns the projection in WKT form (possibly empty)
	Projection() string
	// DriverName returns the short name of the decoding driver
	DriverName() string
	// Files returns every file backing the raster, the dataset file first
	Files() []string
	// BlockSize returns the natural I/O block size of the first band
	BlockSize() (int, int)
	// ReadBand reads the window of the given band (1-based) into buffer,
	// which must hold exactly window.SizeX*window.SizeY pixels of the band's dtype
	// Raise ReadFailure
	ReadBand(ctx context.Context, band int, window geoio.Window, buffer []byte) error
	// WriteBand writes the whole band (1-based) from buffer
	// Raise WriteFailure
	WriteBand(ctx context.Context, band int, buffer []byte) error
	// SetNoData sets the no-data marker of the given band (1-based)
	SetNoData(band int, nodata float64) error
	// SetGeoTransform sets the 6 affine coefficients
	SetGeoTransform(transform [6]float64) error
	// SetProjection sets the projection from its WKT form
	SetProjection(wkt string) error
	// MinMax computes the (optionally approximate) min/max of the band (1-based)
	MinMax(ctx context.Context, band int, approximate bool) (float64, float64, error)
	// Histogram counts the pixels of the band (1-based) in buckets regular
	// intervals of [min, max]
	Histogram(ctx context.Context, band int, min, max float64, buckets int, approximate bool) ([]uint64, error)
	// Close releases the handle. The handle must not be used afterwards.
	Close() error
}

// VectorSource is an open cursor over the features of a vector layer
type VectorSource interface {
	// Next returns the following feature, or nil when the cursor is exhausted
	Next(ctx context.Context) (*Feature, error)
	// Close releases the cursor
	Close() error
}

// Feature is one vector feature with its geometry encoded as WKB
type Feature struct {
	Geometry   []byte
	Properties map[string]interface{}
}
