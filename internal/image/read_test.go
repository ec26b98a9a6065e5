package image_test

import (
	"context"

	"github.com/jkoenig1013/geoio/interface/raster"
	"github.com/jkoenig1013/geoio/interface/raster/mocks"
	"github.com/jkoenig1013/geoio/internal/geoio"
	"github.com/jkoenig1013/geoio/internal/image"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"
)

// identityGT maps pixel (x, y) to projected (x, y)
var identityGT = [6]float64{0, 1, 0, 0, 0, 1}

func newMockSource(shape geoio.Shape, dtype geoio.DType, gt [6]float64) *mocks.Source {
	src := new(mocks.Source)
	src.On("Shape").Return(shape)
	src.On("GeoTransform").Return(gt, nil)
	src.On("Projection").Return("")
	src.On("DriverName").Return("GTiff")
	src.On("Files").Return([]string{"/data/test.tif"})
	for b := 1; b <= shape.Bands; b++ {
		src.On("DType", b).Return(dtype)
		src.On("NoData", b).Return(0.0, false)
	}
	src.On("Close").Return(nil)
	return src
}

func newMockImage(ctx context.Context, src *mocks.Source, opts ...image.Option) (*image.GeoImage, *mocks.Library) {
	lib := new(mocks.Library)
	lib.On("Open", mock.Anything, "/data/test.tif").Return(src, nil)
	g, err := image.New(ctx, lib, "/data/test.tif", opts...)
	Expect(err).To(BeNil())
	return g, lib
}

// fillValue returns a ReadBand stub that fills the buffer with value
func fillValue(value byte) func(context.Context, int, geoio.Window, []byte) error {
	return func(ctx context.Context, band int, window geoio.Window, buffer []byte) error {
		for i := range buffer {
			buffer[i] = value
		}
		return nil
	}
}

var _ = Describe("Read", func() {

	var (
		ctx           = context.Background()
		src           *mocks.Source
		g             *image.GeoImage
		returnedRes   *image.Result
		returnedError error
	)

	BeforeEach(func() {
		src = newMockSource(geoio.Shape{Bands: 1, SizeX: 1000, SizeY: 1000}, geoio.DTypeUINT8, identityGT)
		g, _ = newMockImage(ctx, src)
	})

	Context("window fully inside the raster", func() {
		JustBeforeEach(func() {
			src.On("ReadBand", mock.Anything, 1, geoio.Window{X0: 10, Y0: 20, SizeX: 30, SizeY: 40}, mock.Anything).
				Return(fillValue(7))
			returnedRes, returnedError = g.Read(ctx, image.Window(10, 20, 30, 40))
		})

		It("should not return an error", func() {
			Expect(returnedError).To(BeNil())
		})
		It("should return a block of the requested shape", func() {
			Expect(returnedRes.Block.Shape()).To(Equal(geoio.Shape{Bands: 1, SizeX: 30, SizeY: 40}))
		})
		It("should return the pixels of the raster", func() {
			Expect(returnedRes.Block.ValueAt(0, 0, 0)).To(Equal(7.0))
			Expect(returnedRes.Block.ValueAt(0, 39, 29)).To(Equal(7.0))
		})
	})

	Context("window over the top-left corner", func() {
		JustBeforeEach(func() {
			src.On("ReadBand", mock.Anything, 1, geoio.Window{X0: 0, Y0: 0, SizeX: 15, SizeY: 15}, mock.Anything).
				Return(fillValue(9))
			returnedRes, returnedError = g.Read(ctx, image.Window(-5, -5, 20, 20), image.ReturnLocation())
		})

		It("should not return an error", func() {
			Expect(returnedError).To(BeNil())
		})
		It("should pad the block back to the requested shape", func() {
			Expect(returnedRes.Block.Shape()).To(Equal(geoio.Shape{Bands: 1, SizeX: 20, SizeY: 20}))
		})
		It("should zero the left columns and top rows", func() {
			for i := 0; i < 20; i++ {
				for j := 0; j < 5; j++ {
					Expect(returnedRes.Block.ValueAt(0, i, j)).To(Equal(0.0))
					Expect(returnedRes.Block.ValueAt(0, j, i)).To(Equal(0.0))
				}
			}
		})
		It("should keep the pixels read from the raster", func() {
			Expect(returnedRes.Block.ValueAt(0, 5, 5)).To(Equal(9.0))
			Expect(returnedRes.Block.ValueAt(0, 19, 19)).To(Equal(9.0))
		})
		It("should locate the block at the requested origin", func() {
			Expect(*returnedRes.Location).To(Equal(geoio.Window{X0: -5, Y0: -5, SizeX: 20, SizeY: 20}))
		})
	})

	Context("geometry entirely outside the raster", func() {
		JustBeforeEach(func() {
			geom := geoio.GeomInput{WKT: "POLYGON ((-30 10, -10 10, -10 30, -30 30, -30 10))"}
			returnedRes, returnedError = g.Read(ctx, image.Geom(geom))
		})

		It("should return an OverlapError", func() {
			Expect(geoio.IsError(returnedError, geoio.OverlapError)).To(BeTrue())
		})
	})

	Context("window and geometry supplied together", func() {
		JustBeforeEach(func() {
			returnedRes, returnedError = g.Read(ctx, image.Window(0, 0, 10, 10), image.Geom(geoio.GeomInput{WKT: "POINT (1 1)"}))
		})

		It("should return a ValidationError", func() {
			Expect(geoio.IsError(returnedError, geoio.ValidationError)).To(BeTrue())
		})
	})

	Context("band 0 requested", func() {
		JustBeforeEach(func() {
			returnedRes, returnedError = g.Read(ctx, image.Bands(0))
		})

		It("should return an InvalidBand error", func() {
			Expect(geoio.IsError(returnedError, geoio.InvalidBand)).To(BeTrue())
		})
	})

	Context("mask without a geometry", func() {
		JustBeforeEach(func() {
			src.On("ReadBand", mock.Anything, 1, geoio.Window{X0: 0, Y0: 0, SizeX: 2, SizeY: 2}, mock.Anything).
				Return(func(ctx context.Context, band int, window geoio.Window, buffer []byte) error {
					copy(buffer, []byte{0, 3, 5, 0})
					return nil
				})
			returnedRes, returnedError = g.Read(ctx, image.Window(0, 0, 2, 2), image.Mask())
		})

		It("should exclude the zero-valued elements", func() {
			Expect(returnedError).To(BeNil())
			Expect(returnedRes.Block.MaskedAt(0, 0, 0)).To(BeTrue())
			Expect(returnedRes.Block.MaskedAt(0, 0, 1)).To(BeFalse())
			Expect(returnedRes.Block.MaskedAt(0, 1, 0)).To(BeFalse())
			Expect(returnedRes.Block.MaskedAt(0, 1, 1)).To(BeTrue())
		})
	})
})

var _ = Describe("Read with a geometry mask", func() {

	var (
		ctx           = context.Background()
		src           *mocks.Source
		lib           *mocks.Library
		g             *image.GeoImage
		returnedRes   *image.Result
		returnedError error
	)

	BeforeEach(func() {
		src = newMockSource(geoio.Shape{Bands: 1, SizeX: 100, SizeY: 100}, geoio.DTypeUINT8, identityGT)
		g, lib = newMockImage(ctx, src)
	})

	JustBeforeEach(func() {
		// the envelope of the triangle covers pixels (10,10)-(14,14)
		geom := geoio.GeomInput{WKT: "POLYGON ((10 10, 14 10, 10 14, 10 10))"}
		src.On("ReadBand", mock.Anything, 1, geoio.Window{X0: 10, Y0: 10, SizeX: 4, SizeY: 4}, mock.Anything).
			Return(fillValue(1))
		lib.On("RasterizeMask", mock.Anything, mock.Anything, [6]float64{10, 1, 0, 10, 0, 1}, 4, 4, false).
			Return(func(ctx context.Context, wkbGeom []byte, gt [6]float64, sizeX, sizeY int, allTouched bool) []byte {
				return []byte{
					1, 1, 1, 1,
					1, 1, 1, 0,
					1, 1, 0, 0,
					1, 0, 0, 0,
				}
			}, nil)
		returnedRes, returnedError = g.Read(ctx, image.Geom(geom), image.Mask())
	})

	It("should not return an error", func() {
		Expect(returnedError).To(BeNil())
	})
	It("should align the mask to the window origin", func() {
		lib.AssertCalled(GinkgoT(), "RasterizeMask", mock.Anything, mock.Anything, [6]float64{10, 1, 0, 10, 0, 1}, 4, 4, false)
	})
	It("should exclude the elements outside the geometry", func() {
		Expect(returnedRes.Block.MaskedAt(0, 0, 0)).To(BeFalse())
		Expect(returnedRes.Block.MaskedAt(0, 1, 3)).To(BeTrue())
		Expect(returnedRes.Block.MaskedAt(0, 3, 1)).To(BeTrue())
	})
})

var _ = Describe("Read from a component", func() {

	var (
		ctx           = context.Background()
		src, comp     *mocks.Source
		lib           *mocks.Library
		g             *image.GeoImage
		returnedRes   *image.Result
		returnedError error
	)

	BeforeEach(func() {
		src = new(mocks.Source)
		src.On("Shape").Return(geoio.Shape{Bands: 1, SizeX: 200, SizeY: 100})
		src.On("GeoTransform").Return(identityGT, nil)
		src.On("Projection").Return("")
		src.On("DriverName").Return("TIL")
		src.On("Files").Return([]string{"/data/scene.TIL", "/data/scene_R1C1.TIF", "/data/scene_R1C2.TIF"})
		src.On("DType", 1).Return(geoio.DTypeUINT8)
		src.On("NoData", 1).Return(0.0, false)

		comp = newMockSource(geoio.Shape{Bands: 1, SizeX: 100, SizeY: 100}, geoio.DTypeUINT8, identityGT)

		lib = new(mocks.Library)
		lib.On("Open", mock.Anything, "/data/scene.TIL").Return(src, nil)
		lib.On("Open", mock.Anything, "/data/scene_R1C2.TIF").Return(comp, nil)

		var err error
		g, err = image.New(ctx, lib, "/data/scene.TIL")
		Expect(err).To(BeNil())
	})

	Context("valid component", func() {
		JustBeforeEach(func() {
			comp.On("ReadBand", mock.Anything, 1, geoio.Window{X0: 0, Y0: 0, SizeX: 100, SizeY: 100}, mock.Anything).
				Return(fillValue(3))
			returnedRes, returnedError = g.Read(ctx, image.Component(2))
		})

		It("should read the whole component on its own grid", func() {
			Expect(returnedError).To(BeNil())
			Expect(returnedRes.Block.Shape()).To(Equal(geoio.Shape{Bands: 1, SizeX: 100, SizeY: 100}))
		})
		It("should open and close the component independently", func() {
			lib.AssertCalled(GinkgoT(), "Open", mock.Anything, "/data/scene_R1C2.TIF")
			comp.AssertCalled(GinkgoT(), "Close")
		})
	})

	Context("component out of range", func() {
		JustBeforeEach(func() {
			returnedRes, returnedError = g.Read(ctx, image.Component(3))
		})

		It("should return an InvalidComponent error", func() {
			Expect(geoio.IsError(returnedError, geoio.InvalidComponent)).To(BeTrue())
		})
	})

	Context("component 0", func() {
		JustBeforeEach(func() {
			// component 0 is not an index, it means "no component"
			src.On("ReadBand", mock.Anything, 1, mock.Anything, mock.Anything).Return(fillValue(1))
			returnedRes, returnedError = g.Read(ctx)
		})

		It("should read the assembled raster", func() {
			Expect(returnedError).To(BeNil())
			Expect(returnedRes.Block.Shape()).To(Equal(geoio.Shape{Bands: 1, SizeX: 200, SizeY: 100}))
		})
	})
})

var _ = Describe("ReadVecExtent", func() {

	var (
		ctx           = context.Background()
		src           *mocks.Source
		lib           *mocks.Library
		vs            *mocks.VectorSource
		g             *image.GeoImage
		returnedRes   *image.Result
		returnedError error
	)

	BeforeEach(func() {
		src = newMockSource(geoio.Shape{Bands: 1, SizeX: 100, SizeY: 100}, geoio.DTypeUINT8, identityGT)
		g, lib = newMockImage(ctx, src)

		vs = new(mocks.VectorSource)
		lib.On("OpenVector", mock.Anything, "/data/parcels.shp", "").Return(vs, nil)

		featureA, err := (geoio.GeomInput{WKT: "POLYGON ((10 10, 20 10, 20 20, 10 20, 10 10))"}).ToWKB()
		Expect(err).To(BeNil())
		featureB, err := (geoio.GeomInput{WKT: "POLYGON ((30 15, 40 15, 40 25, 30 25, 30 15))"}).ToWKB()
		Expect(err).To(BeNil())
		vs.On("Next", mock.Anything).Return(&raster.Feature{Geometry: featureA}, nil).Once()
		vs.On("Next", mock.Anything).Return(&raster.Feature{Geometry: featureB}, nil).Once()
		vs.On("Next", mock.Anything).Return(nil, nil).Once()
		vs.On("Close").Return(nil)

		src.On("ReadBand", mock.Anything, 1, geoio.Window{X0: 10, Y0: 10, SizeX: 30, SizeY: 15}, mock.Anything).
			Return(fillValue(2))
	})

	JustBeforeEach(func() {
		returnedRes, returnedError = g.ReadVecExtent(ctx, "/data/parcels.shp")
	})

	It("should read the union envelope of every feature", func() {
		Expect(returnedError).To(BeNil())
		Expect(returnedRes.Block.Shape()).To(Equal(geoio.Shape{Bands: 1, SizeX: 30, SizeY: 15}))
	})

	Context("mask requested", func() {
		JustBeforeEach(func() {
			returnedRes, returnedError = g.ReadVecExtent(ctx, "/data/parcels.shp", image.Mask())
		})

		It("should return a ValidationError", func() {
			Expect(geoio.IsError(returnedError, geoio.ValidationError)).To(BeTrue())
		})
	})

	Context("window requested", func() {
		JustBeforeEach(func() {
			returnedRes, returnedError = g.ReadVecExtent(ctx, "/data/parcels.shp", image.Window(0, 0, 10, 10))
		})

		It("should return a ValidationError", func() {
			Expect(geoio.IsError(returnedError, geoio.ValidationError)).To(BeTrue())
		})
	})
})
