package gdal

import (
	"bufio"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
)

// driverName derives the decoding driver from the dataset path. GDAL knows
// better, but godal does not expose the driver of an open dataset.
func driverName(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".til":
		return "TIL"
	case ".vrt":
		return "VRT"
	case ".tif", ".tiff":
		return "GTiff"
	case ".jp2":
		return "JP2OpenJPEG"
	case ".ntf", ".nitf":
		return "NITF"
	case ".img":
		return "HFA"
	case "":
		return "ENVI"
	}
	return ""
}

// Files returns the files backing the raster, the dataset file first. TIL and
// VRT datasets reference their pixel data in component files, which are listed
// after the dataset file itself, in declaration order.
func (s *source) Files() []string {
	files := []string{s.path}
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".til":
		files = append(files, tilComponents(s.path)...)
	case ".vrt":
		files = append(files, vrtComponents(s.path)...)
	}
	return files
}

// tilComponents parses the `filename = "...";` entries of a TIL descriptor.
// Component paths are relative to the descriptor.
func tilComponents(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	dir := filepath.Dir(path)
	var components []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, found := strings.Cut(scanner.Text(), "=")
		if !found || strings.TrimSpace(key) != "filename" {
			continue
		}
		value = strings.Trim(strings.TrimSuffix(strings.TrimSpace(value), ";"), `"`)
		if value != "" {
			components = append(components, filepath.Join(dir, value))
		}
	}
	return components
}

type vrtBand struct {
	Simple  []vrtFile `xml:"SimpleSource>SourceFilename"`
	Complex []vrtFile `xml:"ComplexSource>SourceFilename"`
}

type vrtFile struct {
	Relative int    `xml:"relativeToVRT,attr"`
	Path     string `xml:",chardata"`
}

type vrtRoot struct {
	Bands []vrtBand `xml:"VRTRasterBand"`
}

// vrtComponents parses the SourceFilename entries of a VRT dataset,
// deduplicated in declaration order
func vrtComponents(path string) []string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var root vrtRoot
	if err := xml.Unmarshal(raw, &root); err != nil {
		return nil
	}

	dir := filepath.Dir(path)
	seen := map[string]bool{}
	var components []string
	for _, band := range root.Bands {
		for _, src := range append(band.Simple, band.Complex...) {
			p := strings.TrimSpace(src.Path)
			if p == "" {
				continue
			}
			if src.Relative == 1 {
				p = filepath.Join(dir, p)
			}
			if !seen[p] {
				seen[p] = true
				components = append(components, p)
			}
		}
	}
	return components
}
