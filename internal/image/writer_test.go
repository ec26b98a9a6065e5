package image_test

import (
	"context"
	"math"
	"os"
	"path/filepath"

	"github.com/jkoenig1013/geoio/interface/raster/mocks"
	"github.com/jkoenig1013/geoio/internal/geoio"
	"github.com/jkoenig1013/geoio/internal/image"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"
)

var _ = Describe("Write", func() {

	var (
		ctx           = context.Background()
		lib           *mocks.Library
		dst           *mocks.Source
		block         *geoio.PixelBlock
		returnedError error
	)

	BeforeEach(func() {
		lib = new(mocks.Library)
		dst = new(mocks.Source)
		dst.On("SetGeoTransform", identityGT).Return(nil)
		dst.On("SetProjection", mock.Anything).Return(nil)
		dst.On("WriteBand", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		dst.On("SetNoData", mock.Anything, mock.Anything).Return(nil)
		dst.On("Close").Return(nil)
		block = geoio.NewPixelBlock(2, 4, 4, geoio.DTypeUINT8)
	})

	Context("regular driver", func() {
		JustBeforeEach(func() {
			lib.On("DriverCreationDTypes", "GTiff").Return([]geoio.DType{geoio.DTypeUINT8, geoio.DTypeUINT16}, nil)
			lib.On("Create", mock.Anything, "/out/result.tif", "GTiff", block.Shape(), geoio.DTypeUINT8, mock.Anything).Return(dst, nil)
			returnedError = image.Write(ctx, lib, "/out/result.tif", block, "GTiff", identityGT, "")
		})

		It("should not return an error", func() {
			Expect(returnedError).To(BeNil())
		})
		It("should write one band at a time", func() {
			dst.AssertNumberOfCalls(GinkgoT(), "WriteBand", 2)
		})
	})

	Context("virtual-mosaic driver", func() {
		JustBeforeEach(func() {
			lib.On("DriverCreationDTypes", "GTiff").Return([]geoio.DType{geoio.DTypeUINT8}, nil)
			lib.On("Create", mock.Anything, "/out/result.tif", "GTiff", block.Shape(), geoio.DTypeUINT8, mock.Anything).Return(dst, nil)
			returnedError = image.Write(ctx, lib, "/out/result.vrt", block, "VRT", identityGT, "")
		})

		It("should redirect to the fallback driver and rewrite the extension", func() {
			Expect(returnedError).To(BeNil())
			lib.AssertCalled(GinkgoT(), "Create", mock.Anything, "/out/result.tif", "GTiff", block.Shape(), geoio.DTypeUINT8, mock.Anything)
		})
	})

	Context("dtype not advertised by the driver", func() {
		JustBeforeEach(func() {
			lib.On("DriverCreationDTypes", "PNG").Return([]geoio.DType{geoio.DTypeUINT8}, nil)
			f32 := geoio.NewPixelBlock(1, 4, 4, geoio.DTypeFLOAT32)
			returnedError = image.Write(ctx, lib, "/out/result.png", f32, "PNG", identityGT, "")
		})

		It("should return an UnsupportedDType error", func() {
			Expect(geoio.IsError(returnedError, geoio.UnsupportedDType)).To(BeTrue())
		})
	})

	Context("no-data value set", func() {
		JustBeforeEach(func() {
			f64 := geoio.NewPixelBlock(1, 2, 1, geoio.DTypeFLOAT64)
			f64.SetValueAt(0, 0, 0, math.NaN())
			f64.SetValueAt(0, 0, 1, 5)
			block = f64
			lib.On("DriverCreationDTypes", "GTiff").Return([]geoio.DType{geoio.DTypeFLOAT64}, nil)
			lib.On("Create", mock.Anything, "/out/result.tif", "GTiff", block.Shape(), geoio.DTypeFLOAT64, mock.Anything).Return(dst, nil)
			returnedError = image.Write(ctx, lib, "/out/result.tif", block, "GTiff", identityGT, "", image.NoData(-9999))
		})

		It("should replace non-finite values before writing", func() {
			Expect(returnedError).To(BeNil())
			Expect(block.ValueAt(0, 0, 0)).To(Equal(-9999.0))
			Expect(block.ValueAt(0, 0, 1)).To(Equal(5.0))
		})
		It("should set the per-band no-data marker", func() {
			dst.AssertCalled(GinkgoT(), "SetNoData", 1, -9999.0)
		})
	})
})

var _ = Describe("WriteArray", func() {

	var (
		ctx = context.Background()
		lib *mocks.Library
		dst *mocks.Source
	)

	BeforeEach(func() {
		lib = new(mocks.Library)
		dst = new(mocks.Source)
		dst.On("SetGeoTransform", identityGT).Return(nil)
		dst.On("WriteBand", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		dst.On("Close").Return(nil)
	})

	It("should promote a 2-D array to a single band", func() {
		want := geoio.Shape{Bands: 1, SizeX: 3, SizeY: 2}
		lib.On("DriverCreationDTypes", "GTiff").Return([]geoio.DType{geoio.DTypeUINT8}, nil)
		lib.On("Create", mock.Anything, "/out/flat.tif", "GTiff", want, geoio.DTypeUINT8, mock.Anything).Return(dst, nil)

		err := image.WriteArray(ctx, lib, "/out/flat.tif", geoio.DTypeUINT8, []int{2, 3}, make([]byte, 6), "GTiff", identityGT, "")
		Expect(err).To(BeNil())
		lib.AssertCalled(GinkgoT(), "Create", mock.Anything, "/out/flat.tif", "GTiff", want, geoio.DTypeUINT8, mock.Anything)
	})

	It("should reject more than 3 dimensions", func() {
		err := image.WriteArray(ctx, lib, "/out/flat.tif", geoio.DTypeUINT8, []int{2, 2, 2, 2}, make([]byte, 16), "GTiff", identityGT, "")
		Expect(geoio.IsError(err, geoio.DimensionError)).To(BeTrue())
	})
})

var _ = Describe("WriteLikeThis", func() {

	var (
		ctx = context.Background()
		src *mocks.Source
		dst *mocks.Source
		lib *mocks.Library
	)

	BeforeEach(func() {
		src = newMockSource(geoio.Shape{Bands: 1, SizeX: 4, SizeY: 4}, geoio.DTypeUINT8, identityGT)
		dst = new(mocks.Source)
		dst.On("SetGeoTransform", identityGT).Return(nil)
		dst.On("WriteBand", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		dst.On("Close").Return(nil)
	})

	It("should place a bare filename in the derived dir", func() {
		dir, err := os.MkdirTemp("", "derived")
		Expect(err).To(BeNil())
		defer os.RemoveAll(dir)

		var g *image.GeoImage
		g, lib = newMockImage(ctx, src, image.DerivedDir(dir))

		out := filepath.Join(dir, "ndvi.tif")
		lib.On("DriverCreationDTypes", "GTiff").Return([]geoio.DType{geoio.DTypeUINT8}, nil)
		lib.On("Create", mock.Anything, out, "GTiff", mock.Anything, geoio.DTypeUINT8, mock.Anything).Return(dst, nil)

		Expect(g.WriteLikeThis(ctx, "ndvi.tif", geoio.NewPixelBlock(1, 4, 4, geoio.DTypeUINT8))).To(BeNil())
		lib.AssertCalled(GinkgoT(), "Create", mock.Anything, out, "GTiff", mock.Anything, geoio.DTypeUINT8, mock.Anything)
	})

	It("should keep an explicit output path as given", func() {
		var g *image.GeoImage
		g, lib = newMockImage(ctx, src)

		lib.On("DriverCreationDTypes", "GTiff").Return([]geoio.DType{geoio.DTypeUINT8}, nil)
		lib.On("Create", mock.Anything, "/out/ndvi.tif", "GTiff", mock.Anything, geoio.DTypeUINT8, mock.Anything).Return(dst, nil)

		Expect(g.WriteLikeThis(ctx, "/out/ndvi.tif", geoio.NewPixelBlock(1, 4, 4, geoio.DTypeUINT8))).To(BeNil())
		lib.AssertCalled(GinkgoT(), "Create", mock.Anything, "/out/ndvi.tif", "GTiff", mock.Anything, geoio.DTypeUINT8, mock.Anything)
	})
})

var _ = Describe("ReplaceData", func() {

	var (
		ctx           = context.Background()
		src, upd      *mocks.Source
		lib           *mocks.Library
		g             *image.GeoImage
		returnedError error
	)

	BeforeEach(func() {
		src = newMockSource(geoio.Shape{Bands: 1, SizeX: 4, SizeY: 4}, geoio.DTypeUINT8, identityGT)
		g, lib = newMockImage(ctx, src)

		upd = new(mocks.Source)
		upd.On("WriteBand", mock.Anything, 1, mock.Anything).Return(nil)
		upd.On("Close").Return(nil)
		lib.On("OpenUpdate", mock.Anything, "/data/test.tif").Return(upd, nil)
	})

	Context("matching block", func() {
		JustBeforeEach(func() {
			returnedError = g.ReplaceData(ctx, geoio.NewPixelBlock(1, 4, 4, geoio.DTypeUINT8))
		})

		It("should close the read handle before updating, and reopen it after", func() {
			Expect(returnedError).To(BeNil())
			src.AssertCalled(GinkgoT(), "Close")
			lib.AssertCalled(GinkgoT(), "OpenUpdate", mock.Anything, "/data/test.tif")
			upd.AssertCalled(GinkgoT(), "Close")
			lib.AssertNumberOfCalls(GinkgoT(), "Open", 2)
		})
	})

	Context("shape mismatch", func() {
		JustBeforeEach(func() {
			returnedError = g.ReplaceData(ctx, geoio.NewPixelBlock(1, 8, 8, geoio.DTypeUINT8))
		})

		It("should return a ValidationError", func() {
			Expect(geoio.IsError(returnedError, geoio.ValidationError)).To(BeTrue())
		})
	})
})
