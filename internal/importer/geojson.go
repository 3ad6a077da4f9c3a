package importer

import (
	"encoding/json"
	"fmt"

	"waymark/shared/go/models"
)

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type     string `json:"type"`
	Geometry struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Name        string `json:"name"`
		Address     string `json:"address"`
		UserComment string `json:"userComment"`
		Tags        []struct {
			Name string `json:"name"`
		} `json:"tags"`
	} `json:"properties"`
}

// ParseGeoJSON parses a feature-collection export. The envelope must
// declare a non-empty FeatureCollection; everything else degrades to
// per-feature errors.
func ParseGeoJSON(data []byte) ([]models.CandidateRecord, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("not a FeatureCollection")
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("no features found")
	}

	records := make([]models.CandidateRecord, 0, len(fc.Features))
	for i, f := range fc.Features {
		var rec models.CandidateRecord
		rec.Name = f.Properties.Name
		rec.Address = f.Properties.Address
		rec.Notes = f.Properties.UserComment
		for _, t := range f.Properties.Tags {
			// Tag entries without a name carry no information.
			if t.Name != "" {
				rec.Tags = append(rec.Tags, t.Name)
			}
		}

		switch {
		case f.Type != "Feature":
			rec.Fail(fmt.Sprintf("Feature %d: Not a valid Feature", i))
		case rec.Name == "" || rec.Address == "" || len(f.Geometry.Coordinates) != 2:
			rec.Fail(fmt.Sprintf("Feature %d: Missing required fields (name, address, or coordinates)", i))
		default:
			// GeoJSON orders coordinates [longitude, latitude].
			lng := f.Geometry.Coordinates[0]
			lat := f.Geometry.Coordinates[1]
			if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
				rec.Fail(fmt.Sprintf("Feature %d: Invalid coordinates", i))
			} else {
				rec.Latitude = lat
				rec.Longitude = lng
			}
		}

		records = append(records, rec)
	}

	return records, nil
}
