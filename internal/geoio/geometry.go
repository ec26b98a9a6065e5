package geoio

import (
	"encoding/json"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// GeomInput carries one vector geometry in whichever encoding the caller has
// at hand. Exactly one field must be set; when several are, the first non-nil
// one in declaration order wins. The decoded geometry is copied per use, so a
// caller may keep and reuse the same GeomInput across reads.
type GeomInput struct {
	Geom    geom.T
	WKT     string
	WKB     []byte
	GeoJSON []byte
}

// Decode converts the input to a go-geom geometry, trying each encoding in
// declaration order
func (g GeomInput) Decode() (geom.T, error) {
	switch {
	case g.Geom != nil:
		return g.Geom, nil
	case g.WKT != "":
		gm, err := wkt.Unmarshal(g.WKT)
		if err != nil {
			return nil, NewValidationError("invalid wkt geometry: %v", err)
		}
		return gm, nil
	case g.WKB != nil:
		gm, err := wkb.Unmarshal(g.WKB)
		if err != nil {
			return nil, NewValidationError("invalid wkb geometry: %v", err)
		}
		return gm, nil
	case g.GeoJSON != nil:
		var gg geojson.Geometry
		if err := json.Unmarshal(g.GeoJSON, &gg); err != nil {
			return nil, NewValidationError("invalid geojson geometry: %v", err)
		}
		gm, err := gg.Decode()
		if err != nil {
			return nil, NewValidationError("invalid geojson geometry: %v", err)
		}
		return gm, nil
	}
	return nil, NewValidationError("empty geometry")
}

// IsEmpty returns true when no encoding is set
func (g GeomInput) IsEmpty() bool {
	return g.Geom == nil && g.WKT == "" && g.WKB == nil && g.GeoJSON == nil
}

// ToWKB decodes the input and re-encodes it as little-endian WKB. The result
// is an independent copy, never a buffer shared with the caller.
func (g GeomInput) ToWKB() ([]byte, error) {
	gm, err := g.Decode()
	if err != nil {
		return nil, err
	}
	b, err := wkb.Marshal(gm, wkb.NDR)
	if err != nil {
		return nil, NewValidationError("cannot encode geometry: %v", err)
	}
	return b, nil
}

// Envelope returns the bounding box of the geometry as (minX, minY, maxX, maxY)
func (g GeomInput) Envelope() (float64, float64, float64, float64, error) {
	gm, err := g.Decode()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	b := gm.Bounds()
	return b.Min(0), b.Min(1), b.Max(0), b.Max(1), nil
}
