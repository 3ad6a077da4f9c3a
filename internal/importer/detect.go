package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"waymark/shared/go/models"
)

// Parse picks a parser for the uploaded file. The filename extension is
// the primary hint (.csv for tabular, .json/.geojson for the feature
// collection). When the extension is missing, unknown, or the hinted
// parser rejects the envelope, content sniffing takes over: tabular
// first, then GeoJSON. The hint therefore wins only when it actually
// parses; sniffing order is fixed so behavior stays deterministic.
func Parse(filename string, data []byte) ([]models.CandidateRecord, Format, error) {
	var hintErr error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, err := ParseCSV(data)
		if err == nil {
			return records, FormatCSV, nil
		}
		hintErr = err
	case ".json", ".geojson":
		records, err := ParseGeoJSON(data)
		if err == nil {
			return records, FormatGeoJSON, nil
		}
		hintErr = err
	}

	if records, err := ParseCSV(data); err == nil {
		return records, FormatCSV, nil
	}
	if records, err := ParseGeoJSON(data); err == nil {
		return records, FormatGeoJSON, nil
	}

	if hintErr != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnrecognizedFormat, hintErr)
	}
	return nil, "", ErrUnrecognizedFormat
}
