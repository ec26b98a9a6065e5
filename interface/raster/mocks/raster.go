package mocks

import (
	"context"

	"github.com/jkoenig1013/geoio/interface/raster"
	"github.com/jkoenig1013/geoio/internal/geoio"
	"github.com/stretchr/testify/mock"
)

type Library struct {
	mock.Mock
}

func (_m *Library) Open(ctx context.Context, path string) (raster.Source, error) {
	ret := _m.Called(ctx, path)

	var r0 raster.Source
	if rf, ok := ret.Get(0).(func(context.Context, string) raster.Source); ok {
		r0 = rf(ctx, path)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(raster.Source)
	}

	return r0, ret.Error(1)
}

func (_m *Library) OpenUpdate(ctx context.Context, path string) (raster.Source, error) {
	ret := _m.Called(ctx, path)

	var r0 raster.Source
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(raster.Source)
	}

	return r0, ret.Error(1)
}

func (_m *Library) Create(ctx context.Context, path, driver string, shape geoio.Shape, dtype geoio.DType, options []string) (raster.Source, error) {
	ret := _m.Called(ctx, path, driver, shape, dtype, options)

	var r0 raster.Source
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(raster.Source)
	}

	return r0, ret.Error(1)
}

func (_m *Library) DriverCreationDTypes(driver string) ([]geoio.DType, error) {
	ret := _m.Called(driver)

	var r0 []geoio.DType
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]geoio.DType)
	}

	return r0, ret.Error(1)
}

func (_m *Library) BuildMosaic(ctx context.Context, paths []string) (raster.Source, error) {
	ret := _m.Called(ctx, paths)

	var r0 raster.Source
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(raster.Source)
	}

	return r0, ret.Error(1)
}

func (_m *Library) RasterizeMask(ctx context.Context, wkbGeom []byte, geoTransform [6]float64, sizeX, sizeY int, allTouched bool) ([]byte, error) {
	ret := _m.Called(ctx, wkbGeom, geoTransform, sizeX, sizeY, allTouched)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(context.Context, []byte, [6]float64, int, int, bool) []byte); ok {
		r0 = rf(ctx, wkbGeom, geoTransform, sizeX, sizeY, allTouched)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	return r0, ret.Error(1)
}

func (_m *Library) OpenVector(ctx context.Context, path, targetProjection string) (raster.VectorSource, error) {
	ret := _m.Called(ctx, path, targetProjection)

	var r0 raster.VectorSource
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(raster.VectorSource)
	}

	return r0, ret.Error(1)
}

type Source struct {
	mock.Mock
}

func (_m *Source) Shape() geoio.Shape {
	ret := _m.Called()
	return ret.Get(0).(geoio.Shape)
}

func (_m *Source) DType(band int) geoio.DType {
	ret := _m.Called(band)
	return ret.Get(0).(geoio.DType)
}

func (_m *Source) NoData(band int) (float64, bool) {
	ret := _m.Called(band)
	return ret.Get(0).(float64), ret.Get(1).(bool)
}

func (_m *Source) GeoTransform() ([6]float64, error) {
	ret := _m.Called()
	return ret.Get(0).([6]float64), ret.Error(1)
}

func (_m *Source) Projection() string {
	ret := _m.Called()
	return ret.Get(0).(string)
}

func (_m *Source) DriverName() string {
	ret := _m.Called()
	return ret.Get(0).(string)
}

func (_m *Source) Files() []string {
	ret := _m.Called()

	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}

	return r0
}

func (_m *Source) BlockSize() (int, int) {
	ret := _m.Called()
	return ret.Get(0).(int), ret.Get(1).(int)
}

func (_m *Source) ReadBand(ctx context.Context, band int, window geoio.Window, buffer []byte) error {
	ret := _m.Called(ctx, band, window, buffer)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int, geoio.Window, []byte) error); ok {
		r0 = rf(ctx, band, window, buffer)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *Source) WriteBand(ctx context.Context, band int, buffer []byte) error {
	ret := _m.Called(ctx, band, buffer)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int, []byte) error); ok {
		r0 = rf(ctx, band, buffer)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *Source) SetNoData(band int, nodata float64) error {
	ret := _m.Called(band, nodata)
	return ret.Error(0)
}

func (_m *Source) SetGeoTransform(transform [6]float64) error {
	ret := _m.Called(transform)
	return ret.Error(0)
}

func (_m *Source) SetProjection(wkt string) error {
	ret := _m.Called(wkt)
	return ret.Error(0)
}

func (_m *Source) MinMax(ctx context.Context, band int, approximate bool) (float64, float64, error) {
	ret := _m.Called(ctx, band, approximate)
	return ret.Get(0).(float64), ret.Get(1).(float64), ret.Error(2)
}

func (_m *Source) Histogram(ctx context.Context, band int, min, max float64, buckets int, approximate bool) ([]uint64, error) {
	ret := _m.Called(ctx, band, min, max, buckets, approximate)

	var r0 []uint64
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]uint64)
	}

	return r0, ret.Error(1)
}

func (_m *Source) Close() error {
	ret := _m.Called()
	return ret.Error(0)
}

type VectorSource struct {
	mock.Mock
}

func (_m *VectorSource) Next(ctx context.Context) (*raster.Feature, error) {
	ret := _m.Called(ctx)

	var r0 *raster.Feature
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*raster.Feature)
	}

	return r0, ret.Error(1)
}

func (_m *VectorSource) Close() error {
	ret := _m.Called()
	return ret.Error(0)
}
