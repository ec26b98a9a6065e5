package image

import (
	"context"
	"math/rand"

	"github.com/jkoenig1013/geoio/interface/raster"
	"github.com/jkoenig1013/geoio/internal/geoio"
)

// WindowIter reads the raster window by window. Each call to Next performs
// one read; a nil result signals exhaustion. An abandoned iterator is not
// restartable, a fresh one must be created.
type WindowIter struct {
	g    *GeoImage
	plan windowPlan
	opts []ReadOption
}

type windowPlan interface {
	Next() (geoio.Window, bool)
}

// IterWindow iterates over adjoining tiles of winSize, or tiles of winSize
// stepped by stride. winSize and stride take 1 or 2 values, broadcast to both
// axes. A nil winSize defaults to the natural I/O block size of the raster;
// a stride without a winSize is rejected.
// Raise ValidationError
func (g *GeoImage) IterWindow(winSize, stride []int, opts ...ReadOption) (*WindowIter, error) {
	if winSize == nil && stride != nil {
		return nil, geoio.NewValidationError("a stride without a win_size has no default")
	}
	var sizeX, sizeY int
	if winSize == nil {
		sizeX, sizeY = g.src.BlockSize()
	} else {
		var err error
		if sizeX, sizeY, err = broadcastPair(winSize, "win_size"); err != nil {
			return nil, err
		}
	}

	var plan *geoio.TilePlan
	var err error
	if stride == nil {
		plan, err = geoio.NewTilePlan(g.meta.Shape, sizeX, sizeY)
	} else {
		var strideX, strideY int
		if strideX, strideY, err = broadcastPair(stride, "stride"); err != nil {
			return nil, err
		}
		plan, err = geoio.NewStridedPlan(g.meta.Shape, sizeX, sizeY, strideX, strideY)
	}
	if err != nil {
		return nil, err
	}
	return &WindowIter{g: g, plan: plan, opts: opts}, nil
}

// IterWindowRandom iterates over n windows of winSize at uniform random
// offsets within the raster
// Raise ValidationError
func (g *GeoImage) IterWindowRandom(winSize []int, n int, opts ...ReadOption) (*WindowIter, error) {
	sizeX, sizeY, err := broadcastPair(winSize, "win_size")
	if err != nil {
		return nil, err
	}
	plan, err := geoio.NewRandomPlan(g.meta.Shape, sizeX, sizeY, n, rand.New(rand.NewSource(rand.Int63())))
	if err != nil {
		return nil, err
	}
	return &WindowIter{g: g, plan: plan, opts: opts}, nil
}

// Next reads the following window, or returns nil when the iteration is done
func (it *WindowIter) Next(ctx context.Context) (*Result, error) {
	w, ok := it.plan.Next()
	if !ok {
		return nil, nil
	}
	opts := append([]ReadOption{Window(w.X0, w.Y0, w.SizeX, w.SizeY)}, it.opts...)
	res, err := it.g.Read(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ComponentIter reads each raw sub-file of a tiled raster in turn
type ComponentIter struct {
	g    *GeoImage
	next int
	opts []ReadOption
}

// IterComponents iterates over the components of the raster, whole-component
// reads on each component's own grid
func (g *GeoImage) IterComponents(opts ...ReadOption) *ComponentIter {
	return &ComponentIter{g: g, next: 1, opts: opts}
}

// Next reads the following component, or returns nil when they are exhausted
func (it *ComponentIter) Next(ctx context.Context) (*Result, error) {
	if it.next > len(it.g.meta.Components) {
		return nil, nil
	}
	opts := append([]ReadOption{Component(it.next)}, it.opts...)
	it.next++
	return it.g.Read(ctx, opts...)
}

// VectorOption parameterizes a per-feature iteration
type VectorOption func(*vectorOptions)

type vectorOptions struct {
	properties []string
	filter     map[string]interface{}
}

// Properties restricts the attributes attached to each result to the given keys
func Properties(keys ...string) VectorOption {
	return func(o *vectorOptions) { o.properties = keys }
}

// Filter suppresses the features whose attributes do not match every given
// key/value pair. Suppressed features still yield a placeholder result so the
// sequence length matches the feature count of the source.
func Filter(filter map[string]interface{}) VectorOption {
	return func(o *vectorOptions) { o.filter = filter }
}

// VectorResult is the outcome of reading one vector feature. Block is nil
// when the feature was filtered out or does not overlap the raster.
type VectorResult struct {
	Block      *geoio.PixelBlock
	Location   *geoio.Window
	Properties map[string]interface{}
}

// VectorIter reads the raster once per feature of a vector source
type VectorIter struct {
	g        *GeoImage
	features FeatureSource
	vopts    vectorOptions
	opts     []ReadOption
}

// FeatureSource is the feature cursor consumed by a per-feature iteration
type FeatureSource interface {
	Next(ctx context.Context) (Feature, bool, error)
}

// Feature is one vector feature in projected raster coordinates
type Feature struct {
	Geom       geoio.GeomInput
	Properties map[string]interface{}
}

// IterVector iterates over the features of the vector file at path, reading
// the pixel envelope of each feature geometry. Feature geometries are
// reprojected to the raster's own coordinate reference before use. The window
// and geom options do not apply, each feature selects its own window.
// Raise ConfigurationError, ValidationError
func (g *GeoImage) IterVector(ctx context.Context, path string, vopts []VectorOption, opts ...ReadOption) (*VectorIter, error) {
	vs, err := g.lib.OpenVector(ctx, path, g.meta.Projection)
	if err != nil {
		return nil, err
	}
	it, err := g.IterFeatures(&rasterFeatureSource{vs: vs}, vopts, opts...)
	if err != nil {
		vs.Close()
		return nil, err
	}
	return it, nil
}

// IterFeatures is IterVector over an already open feature source
// Raise ValidationError
func (g *GeoImage) IterFeatures(features FeatureSource, vopts []VectorOption, opts ...ReadOption) (*VectorIter, error) {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.window != nil || !o.geom.IsEmpty() {
		return nil, geoio.NewValidationError("window and geom do not apply to a per-feature iteration")
	}

	it := &VectorIter{g: g, features: features, opts: opts}
	for _, opt := range vopts {
		opt(&it.vopts)
	}
	return it, nil
}

// Next reads the following feature, or returns nil when the cursor is
// exhausted. A feature that is filtered out or does not overlap the raster
// yields a placeholder result with a nil Block.
func (it *VectorIter) Next(ctx context.Context) (*VectorResult, error) {
	feature, ok, err := it.features.Next(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	res := &VectorResult{Properties: it.selectProperties(feature.Properties)}
	if !it.match(feature.Properties) || feature.Geom.IsEmpty() {
		return res, nil
	}

	opts := append([]ReadOption{Geom(feature.Geom)}, it.opts...)
	rres, err := it.g.Read(ctx, opts...)
	switch {
	case geoio.IsError(err, geoio.OverlapError):
		// an edge feature outside the raster yields a placeholder
		return res, nil
	case err != nil:
		return nil, err
	}
	res.Block, res.Location = rres.Block, rres.Location
	return res, nil
}

func (it *VectorIter) match(properties map[string]interface{}) bool {
	for key, want := range it.vopts.filter {
		if got, ok := properties[key]; !ok || got != want {
			return false
		}
	}
	return true
}

func (it *VectorIter) selectProperties(properties map[string]interface{}) map[string]interface{} {
	if it.vopts.properties == nil {
		return properties
	}
	selected := make(map[string]interface{}, len(it.vopts.properties))
	for _, key := range it.vopts.properties {
		if v, ok := properties[key]; ok {
			selected[key] = v
		}
	}
	return selected
}

// Close releases the underlying feature cursor, when it owns one
func (it *VectorIter) Close() error {
	if closer, ok := it.features.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

type rasterFeatureSource struct {
	vs raster.VectorSource
}

func (s *rasterFeatureSource) Next(ctx context.Context) (Feature, bool, error) {
	f, err := s.vs.Next(ctx)
	if err != nil || f == nil {
		return Feature{}, false, err
	}
	return Feature{Geom: geoio.GeomInput{WKB: f.Geometry}, Properties: f.Properties}, true, nil
}

func (s *rasterFeatureSource) Close() error {
	return s.vs.Close()
}

func broadcastPair(values []int, name string) (int, int, error) {
	switch len(values) {
	case 1:
		return values[0], values[0], nil
	case 2:
		return values[0], values[1], nil
	}
	return 0, 0, geoio.NewValidationError("%s takes 1 or 2 values, got %d", name, len(values))
}
