package gdal

import (
	"context"

	"github.com/airbusgeo/godal"
	"github.com/jkoenig1013/geoio/interface/raster"
	"github.com/jkoenig1013/geoio/internal/geoio"
)

func (library) OpenVector(ctx context.Context, path, targetProjection string) (raster.VectorSource, error) {
	ds, err := godal.Open(path, godal.VectorOnly(), ErrLogger)
	if err != nil {
		return nil, geoio.NewConfigurationError("cannot open vector source %s: %v", path, err)
	}
	layers := ds.Layers()
	if len(layers) == 0 {
		ds.Close()
		return nil, geoio.NewConfigurationError("vector source %s has no layer", path)
	}
	var target *godal.SpatialRef
	if targetProjection != "" {
		if target, err = crsFromUserInput(targetProjection); err != nil {
			ds.Close()
			return nil, err
		}
	}
	return &vectorSource{ds: ds, layer: layers[0], target: target, path: path}, nil
}

type vectorSource struct {
	ds     *godal.Dataset
	layer  godal.Layer
	target *godal.SpatialRef
	path   string
}

func (v *vectorSource) Next(ctx context.Context) (*raster.Feature, error) {
	f := v.layer.NextFeature()
	if f == nil {
		return nil, nil
	}
	defer f.Close()

	feature := &raster.Feature{}
	if g := f.Geometry(); g != nil {
		if v.target != nil {
			if err := g.Reproject(v.target); err != nil {
				return nil, geoio.NewReadFailure(err, "cannot reproject a feature of %s", v.path)
			}
		}
		wkbGeom, err := g.WKB()
		if err != nil {
			return nil, geoio.NewReadFailure(err, "cannot encode a feature of %s", v.path)
		}
		feature.Geometry = wkbGeom
	}

	fields := f.Fields()
	if len(fields) > 0 {
		feature.Properties = make(map[string]interface{}, len(fields))
		for name, field := range fields {
			switch field.Type() {
			case godal.FTInt, godal.FTInt64:
				feature.Properties[name] = field.Int()
			case godal.FTReal:
				feature.Properties[name] = field.Float()
			default:
				feature.Properties[name] = field.String()
			}
		}
	}
	return feature, nil
}

func (v *vectorSource) Close() error {
	if v.target != nil {
		v.target.Close()
	}
	return v.ds.Close()
}
