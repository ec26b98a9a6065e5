package gdal

import (
	"strconv"
	"strings"

	"github.com/airbusgeo/godal"
	"github.com/jkoenig1013/geoio/internal/geoio"
)

// crsFromUserInput initializes a crs from an epsg code, a proj4 string or a
// Wkt description. The caller releases the crs.
func crsFromUserInput(input string) (*godal.SpatialRef, error) {
	var crs *godal.SpatialRef
	var err error
	switch {
	case isDigits(input):
		epsg, _ := strconv.Atoi(input)
		crs, err = godal.NewSpatialRefFromEPSG(epsg)
	case strings.HasPrefix(strings.ToLower(input), "epsg:"):
		epsg, aerr := strconv.Atoi(input[5:])
		if aerr != nil {
			return nil, geoio.NewValidationError("invalid epsg code: %s", input)
		}
		crs, err = godal.NewSpatialRefFromEPSG(epsg)
	case strings.HasPrefix(input, "+"):
		crs, err = godal.NewSpatialRefFromProj4(input)
	default:
		crs, err = godal.NewSpatialRefFromWKT(input)
	}
	if err != nil {
		return nil, geoio.NewValidationError("invalid coordinate reference %q: %v", input, err)
	}
	return crs, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
