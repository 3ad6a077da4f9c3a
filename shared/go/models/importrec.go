package models

// CandidateRecord is one place parsed from an import file. It is never
// persisted directly: the import pipeline annotates it (enrichment,
// duplicate flag, row-level error) and only clean records become Places.
// A non-nil Error means the record must not be written to storage.
type CandidateRecord struct {
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Notes     string   `json:"notes"`
	Phone     string   `json:"phone"`
	Website   string   `json:"website"`
	Hours     string   `json:"hours"`
	Tags      []string `json:"tags"`

	// URL is the location-reference from tabular exports; the enricher
	// mines it for a stable place identifier.
	URL string `json:"url,omitempty"`

	IsDuplicate bool    `json:"is_duplicate"`
	Error       *string `json:"error"`
}

// Failed reports whether the record carries a row-level error.
func (c *CandidateRecord) Failed() bool {
	return c.Error != nil
}

// Fail records a row-level error on the candidate.
func (c *CandidateRecord) Fail(msg string) {
	c.Error = &msg
}

// ImportSummary is the per-batch accounting returned by Confirm and
// one-shot Import. Errors keeps input order so results are reproducible.
type ImportSummary struct {
	PlacesImported int      `json:"places_imported"`
	PlacesSkipped  int      `json:"places_skipped"`
	TagsCreated    int      `json:"tags_created"`
	TagsMatched    int      `json:"tags_matched"`
	Errors         []string `json:"errors"`
}

// PreviewSummary is the read-only counterpart returned by Preview.
type PreviewSummary struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Duplicates int      `json:"duplicates"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors"`
}
