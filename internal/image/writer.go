package image

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jkoenig1013/geoio/interface/raster"
	"github.com/jkoenig1013/geoio/internal/geoio"
	"github.com/jkoenig1013/geoio/internal/log"
	"github.com/jkoenig1013/geoio/internal/utils"
)

// WriteOption parameterizes one write operation
type WriteOption func(*writeOptions)

type writeOptions struct {
	nodata          *float64
	creationOptions []string
	fallbackDriver  string
}

// NoData sets the per-band no-data marker of the output. NaN and infinite
// values are replaced by it before writing.
func NoData(nodata float64) WriteOption {
	return func(o *writeOptions) { o.nodata = &nodata }
}

// CreationOptions passes driver-specific creation options, as KEY=VALUE pairs
func CreationOptions(options ...string) WriteOption {
	return func(o *writeOptions) { o.creationOptions = options }
}

// FallbackDriver sets the concrete driver a virtual-mosaic output is
// redirected to. Defaults to GTiff.
func FallbackDriver(driver string) WriteOption {
	return func(o *writeOptions) { o.fallbackDriver = driver }
}

// driverExtensions rewrites the output extension when a virtual-mosaic
// request is redirected to a concrete driver
var driverExtensions = map[string]string{
	"GTiff": ".tif",
	"HFA":   ".img",
	"ENVI":  "",
}

// Write creates the raster at path from block
// Raise ValidationError, UnsupportedDType, WriteFailure
func Write(ctx context.Context, lib raster.Library, path string, block *geoio.PixelBlock, driver string, geoTransform [6]float64, projection string, opts ...WriteOption) error {
	var o writeOptions
	for _, opt := range opts {
		opt(&o)
	}
	if block == nil || block.Bands < 1 || block.SizeX < 1 || block.SizeY < 1 {
		return geoio.NewValidationError("empty pixel block")
	}

	// a virtual format cannot own a coherent pixel array of its own
	if strings.EqualFold(driver, "VRT") {
		fallback := o.fallbackDriver
		if fallback == "" {
			fallback = "GTiff"
		}
		if ext, ok := driverExtensions[fallback]; ok {
			path = strings.TrimSuffix(path, filepath.Ext(path)) + ext
		}
		log.Logger(ctx).Sugar().Debugf("redirecting VRT output to %s (%s)", fallback, path)
		driver = fallback
	}

	supported, err := lib.DriverCreationDTypes(driver)
	if err != nil {
		return fmt.Errorf("Write.%w", err)
	}
	if !containsDType(supported, block.DType) {
		return geoio.NewUnsupportedDType("driver %s cannot create %s rasters", driver, block.DType)
	}

	if o.nodata != nil {
		block.ScrubNonFinite(*o.nodata)
	}

	dst, err := lib.Create(ctx, path, driver, block.Shape(), block.DType, o.creationOptions)
	if err != nil {
		return fmt.Errorf("Write.%w", err)
	}
	defer dst.Close()

	if err := dst.SetGeoTransform(geoTransform); err != nil {
		return fmt.Errorf("Write.%w", err)
	}
	if projection != "" {
		if err := dst.SetProjection(projection); err != nil {
			return fmt.Errorf("Write.%w", err)
		}
	}
	for b := 1; b <= block.Bands; b++ {
		if err := dst.WriteBand(ctx, b, block.BandBytes(b-1)); err != nil {
			return fmt.Errorf("Write.%w", err)
		}
		if o.nodata != nil {
			if err := dst.SetNoData(b, *o.nodata); err != nil {
				return fmt.Errorf("Write.%w", err)
			}
		}
	}
	return nil
}

// WriteArray creates the raster at path from a raw pixel array. dims is
// (sizeY, sizeX), promoted to a single band, or (bands, sizeY, sizeX).
// Raise DimensionError, ValidationError, UnsupportedDType, WriteFailure
func WriteArray(ctx context.Context, lib raster.Library, path string, dtype geoio.DType, dims []int, data []byte, driver string, geoTransform [6]float64, projection string, opts ...WriteOption) error {
	block, err := geoio.NewPixelBlockFromBytes(dtype, dims, data)
	if err != nil {
		return err
	}
	return Write(ctx, lib, path, block, driver, geoTransform, projection, opts...)
}

// WriteLikeThis creates the raster at path from block, reusing the driver,
// georeferencing and no-data value of the open raster. WriteOptions override
// the inherited values. A bare filename is placed in the derived-output
// directory of the raster.
func (g *GeoImage) WriteLikeThis(ctx context.Context, path string, block *geoio.PixelBlock, opts ...WriteOption) error {
	if g.meta.HasNoData[0] {
		opts = append([]WriteOption{NoData(g.meta.NoData[0])}, opts...)
	}
	return Write(ctx, g.lib, g.derivedPath(path), block, g.meta.Driver, g.meta.GeoTransform, g.meta.Projection, opts...)
}

// derivedPath places a bare output filename in the derived-output directory,
// the directory of the raster itself unless DerivedDir overrode it. A path
// carrying a directory component is kept as given.
func (g *GeoImage) derivedPath(path string) string {
	if filepath.Dir(path) != "." {
		return path
	}
	dir := g.derivedDir
	if dir == "" {
		dir = filepath.Dir(g.meta.Path)
	}
	return filepath.Join(dir, path)
}

// ReplaceData rewrites the pixels of the open raster in place. The block
// shape and dtype must match the raster exactly. The read handle is closed
// for the duration of the write and reopened afterwards, a handle cannot be
// open in read and update mode at the same time.
func (g *GeoImage) ReplaceData(ctx context.Context, block *geoio.PixelBlock) error {
	if block.Shape() != g.meta.Shape {
		return geoio.NewValidationError("block shape %v does not match the raster shape %v", block.Shape(), g.meta.Shape)
	}
	if block.DType != g.meta.DTypes[0] {
		return geoio.NewValidationError("block dtype %s does not match the raster dtype %s", block.DType, g.meta.DTypes[0])
	}
	if g.meta.HasNoData[0] {
		block.ScrubNonFinite(g.meta.NoData[0])
	}

	if err := g.src.Close(); err != nil {
		return geoio.NewWriteFailure(err, "cannot close %s before update", g.meta.Path)
	}
	g.src = nil

	dst, err := g.lib.OpenUpdate(ctx, g.meta.Path)
	if err != nil {
		return fmt.Errorf("ReplaceData.%w", err)
	}
	for b := 1; b <= block.Bands; b++ {
		if werr := dst.WriteBand(ctx, b, block.BandBytes(b-1)); werr != nil {
			err = werr
			break
		}
	}
	if err = utils.MergeErrors(true, err, dst.Close()); err != nil {
		return fmt.Errorf("ReplaceData.%w", err)
	}

	if g.src, err = g.lib.Open(ctx, g.meta.Path); err != nil {
		return fmt.Errorf("ReplaceData.%w", err)
	}
	return nil
}

func containsDType(dtypes []geoio.DType, dtype geoio.DType) bool {
	for _, d := range dtypes {
		if d == dtype {
			return true
		}
	}
	return false
}
