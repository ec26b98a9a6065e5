package gdal

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/google/uuid"
	"github.com/jkoenig1013/geoio/interface/raster"
	"github.com/jkoenig1013/geoio/internal/geoio"
	"github.com/jkoenig1013/geoio/internal/utils"
)

var ErrLogger = godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
	if ec <= godal.CE_Warning {
		return nil
	}
	return fmt.Errorf("GDAL %d: %s", code, msg)
})

var registerOnce sync.Once

type library struct{}

// Library returns the process-wide godal-backed raster library.
// The first call registers the GDAL drivers.
func Library() raster.Library {
	registerOnce.Do(godal.RegisterAll)
	return library{}
}

func (l library) Open(ctx context.Context, path string) (raster.Source, error) {
	// a TIL descriptor is opened as a virtual mosaic of its component files
	if strings.EqualFold(filepath.Ext(path), ".til") {
		if components := tilComponents(path); len(components) > 0 {
			src, err := l.BuildMosaic(ctx, components)
			if err != nil {
				return nil, err
			}
			src.(*source).path = path
			return src, nil
		}
	}
	ds, err := godal.Open(path, ErrLogger)
	if err != nil {
		return nil, geoio.NewConfigurationError("cannot open %s: %v", path, err)
	}
	return &source{ds: ds, path: path}, nil
}

func (library) OpenUpdate(ctx context.Context, path string) (raster.Source, error) {
	ds, err := godal.Open(path, godal.Update(), ErrLogger)
	if err != nil {
		return nil, geoio.NewConfigurationError("cannot open %s for update: %v", path, err)
	}
	return &source{ds: ds, path: path}, nil
}

func (library) Create(ctx context.Context, path, driver string, shape geoio.Shape, dtype geoio.DType, options []string) (raster.Source, error) {
	ds, err := godal.Create(godal.DriverName(driver), path, shape.Bands, toGDAL(dtype), shape.SizeX, shape.SizeY, godal.CreationOption(options...), ErrLogger)
	if err != nil {
		return nil, geoio.NewWriteFailure(err, "cannot create %s (driver %s)", path, driver)
	}
	return &source{ds: ds, path: path}, nil
}

func (library) DriverCreationDTypes(driver string) ([]geoio.DType, error) {
	drv, ok := godal.RasterDriver(godal.DriverName(driver))
	if !ok {
		return nil, geoio.NewValidationError("unknown driver: %s", driver)
	}
	var dtypes []geoio.DType
	for _, name := range strings.Fields(drv.Metadata("DMD_CREATIONDATATYPES")) {
		if dtype := geoio.DTypeFromString(name); dtype != geoio.DTypeUNDEFINED {
			dtypes = append(dtypes, dtype)
		}
	}
	return dtypes, nil
}

func (library) BuildMosaic(ctx context.Context, paths []string) (raster.Source, error) {
	virtualname := fmt.Sprintf("/vsimem/%s.vrt", uuid.New().String())
	ds, err := godal.BuildVRT(virtualname, paths, nil, ErrLogger)
	if err != nil {
		return nil, geoio.NewReadFailure(err, "cannot assemble mosaic of %d files", len(paths))
	}
	return &source{ds: ds, path: paths[0], unlink: virtualname}, nil
}

func (library) RasterizeMask(ctx context.Context, wkbGeom []byte, geoTransform [6]float64, sizeX, sizeY int, allTouched bool) ([]byte, error) {
	g, err := godal.NewGeometryFromWKB(wkbGeom, nil)
	if err != nil {
		return nil, geoio.NewValidationError("cannot decode geometry: %v", err)
	}
	defer g.Close()

	ds, err := godal.Create(godal.Memory, "", 1, godal.Byte, sizeX, sizeY, ErrLogger)
	if err != nil {
		return nil, geoio.NewReadFailure(err, "cannot create mask raster")
	}
	defer ds.Close()
	if err := ds.SetGeoTransform(geoTransform); err != nil {
		return nil, geoio.NewReadFailure(err, "cannot georeference mask raster")
	}

	opts := []godal.RasterizeGeometryOption{godal.Values(1)}
	if allTouched {
		opts = append(opts, godal.AllTouched())
	}
	if err := ds.RasterizeGeometry(g, opts...); err != nil {
		return nil, geoio.NewReadFailure(err, "cannot rasterize geometry")
	}

	mask := make([]byte, sizeX*sizeY)
	if err := ds.Bands()[0].Read(0, 0, mask, sizeX, sizeY, ErrLogger); err != nil {
		return nil, geoio.NewReadFailure(err, "cannot read mask raster")
	}
	return mask, nil
}

type source struct {
	ds     *godal.Dataset
	path   string
	unlink string
}

func (s *source) Shape() geoio.Shape {
	st := s.ds.Structure()
	return geoio.Shape{Bands: st.NBands, SizeX: st.SizeX, SizeY: st.SizeY}
}

func (s *source) DType(band int) geoio.DType {
	return fromGDAL(s.ds.Bands()[band-1].Structure().DataType)
}

func (s *source) NoData(band int) (float64, bool) {
	return s.ds.Bands()[band-1].NoData()
}

func (s *source) GeoTransform() ([6]float64, error) {
	return s.ds.GeoTransform()
}

func (s *source) Projection() string {
	return s.ds.Projection()
}

func (s *source) DriverName() string {
	return driverName(s.path)
}

func (s *source) BlockSize() (int, int) {
	st := s.ds.Structure()
	return st.BlockSizeX, st.BlockSizeY
}

func (s *source) ReadBand(ctx context.Context, band int, window geoio.Window, buffer []byte) error {
	dtype := s.DType(band)
	if len(buffer) != window.SizeX*window.SizeY*dtype.Size() {
		return geoio.NewValidationError("buffer of %d bytes for a %dx%d %s window", len(buffer), window.SizeX, window.SizeY, dtype)
	}
	if err := s.ds.Bands()[band-1].Read(window.X0, window.Y0, typedBuffer(dtype, buffer), window.SizeX, window.SizeY, ErrLogger); err != nil {
		return geoio.NewReadFailure(err, "cannot read band %d of %s", band, s.path)
	}
	return nil
}

func (s *source) WriteBand(ctx context.Context, band int, buffer []byte) error {
	st := s.ds.Structure()
	dtype := s.DType(band)
	if len(buffer) != st.SizeX*st.SizeY*dtype.Size() {
		return geoio.NewValidationError("buffer of %d bytes for a %dx%d %s band", len(buffer), st.SizeX, st.SizeY, dtype)
	}
	if err := s.ds.Bands()[band-1].Write(0, 0, typedBuffer(dtype, buffer), st.SizeX, st.SizeY, ErrLogger); err != nil {
		return geoio.NewWriteFailure(err, "cannot write band %d of %s", band, s.path)
	}
	return nil
}

func (s *source) SetNoData(band int, nodata float64) error {
	if err := s.ds.Bands()[band-1].SetNoData(nodata); err != nil {
		return geoio.NewWriteFailure(err, "cannot set the no-data value of band %d of %s", band, s.path)
	}
	return nil
}

func (s *source) SetGeoTransform(transform [6]float64) error {
	if err := s.ds.SetGeoTransform(transform); err != nil {
		return geoio.NewWriteFailure(err, "cannot georeference %s", s.path)
	}
	return nil
}

func (s *source) SetProjection(wkt string) error {
	if err := s.ds.SetProjection(wkt); err != nil {
		return geoio.NewWriteFailure(err, "cannot set the projection of %s", s.path)
	}
	return nil
}

func (s *source) MinMax(ctx context.Context, band int, approximate bool) (float64, float64, error) {
	var opts []godal.HistogramOption
	if approximate {
		opts = append(opts, godal.Approximate())
	}
	h, err := s.ds.Bands()[band-1].Histogram(opts...)
	if err != nil {
		return 0, 0, geoio.NewReadFailure(err, "cannot compute the min/max of band %d of %s", band, s.path)
	}
	if h.Len() == 0 {
		return 0, 0, geoio.NewReadFailure(nil, "empty histogram for band %d of %s", band, s.path)
	}
	return h.Bucket(0).Min, h.Bucket(h.Len() - 1).Max, nil
}

func (s *source) Histogram(ctx context.Context, band int, min, max float64, buckets int, approximate bool) ([]uint64, error) {
	opts := []godal.HistogramOption{godal.Intervals(buckets, min, max), godal.IncludeOutOfRange()}
	if approximate {
		opts = append(opts, godal.Approximate())
	}
	h, err := s.ds.Bands()[band-1].Histogram(opts...)
	if err != nil {
		return nil, geoio.NewReadFailure(err, "cannot compute the histogram of band %d of %s", band, s.path)
	}
	counts := make([]uint64, h.Len())
	for i := range counts {
		counts[i] = h.Bucket(i).Count
	}
	return counts, nil
}

func (s *source) Close() error {
	err := s.ds.Close()
	if s.unlink != "" {
		err = utils.MergeErrors(true, err, godal.VSIUnlink(s.unlink))
	}
	return err
}

func toGDAL(dtype geoio.DType) godal.DataType {
	switch dtype {
	case geoio.DTypeUINT8, geoio.DTypeINT8:
		return godal.Byte
	case geoio.DTypeUINT16:
		return godal.UInt16
	case geoio.DTypeUINT32:
		return godal.UInt32
	case geoio.DTypeINT16:
		return godal.Int16
	case geoio.DTypeINT32:
		return godal.Int32
	case geoio.DTypeFLOAT32:
		return godal.Float32
	case geoio.DTypeFLOAT64:
		return godal.Float64
	}
	return godal.Unknown
}

func fromGDAL(dtype godal.DataType) geoio.DType {
	switch dtype {
	case godal.Byte:
		return geoio.DTypeUINT8
	case godal.UInt16:
		return geoio.DTypeUINT16
	case godal.UInt32:
		return geoio.DTypeUINT32
	case godal.Int16:
		return geoio.DTypeINT16
	case godal.Int32:
		return geoio.DTypeINT32
	case godal.Float32:
		return geoio.DTypeFLOAT32
	case godal.Float64:
		return geoio.DTypeFLOAT64
	}
	return geoio.DTypeUNDEFINED
}

func typedBuffer(dtype geoio.DType, buffer []byte) interface{} {
	switch dtype {
	case geoio.DTypeUINT8, geoio.DTypeINT8:
		return buffer
	case geoio.DTypeUINT16:
		return utils.SliceByteToGeneric[uint16](buffer)
	case geoio.DTypeUINT32:
		return utils.SliceByteToGeneric[uint32](buffer)
	case geoio.DTypeINT16:
		return utils.SliceByteToGeneric[int16](buffer)
	case geoio.DTypeINT32:
		return utils.SliceByteToGeneric[int32](buffer)
	case geoio.DTypeFLOAT32:
		return utils.SliceByteToGeneric[float32](buffer)
	case geoio.DTypeFLOAT64:
		return utils.SliceByteToGeneric[float64](buffer)
	}
	panic("Unknown type")
}
