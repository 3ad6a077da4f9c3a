// Package importer turns uploaded place exports into candidate records.
//
// Parsing is best-effort at the row level: a malformed row is emitted with
// its error set so the rest of the batch survives. Only envelope problems
// (unreadable header, not a feature collection, empty feature array) fail
// the whole file.
package importer

import "errors"

// Format identifies which parser produced a batch.
type Format string

const (
	// FormatCSV is the row-oriented tabular export.
	FormatCSV Format = "csv"
	// FormatGeoJSON is the feature-collection geographic export.
	FormatGeoJSON Format = "geojson"
)

// ErrUnrecognizedFormat is returned when neither parser accepts the file.
var ErrUnrecognizedFormat = errors.New("unrecognized import format")
