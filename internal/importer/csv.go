package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"waymark/shared/go/models"
)

// ParseCSV parses a tabular saved-places export. The header must carry a
// name column ("Title", falling back to "Name") or a "URL" column;
// otherwise the file is rejected outright. Rows missing either field are
// emitted with their error set and the batch continues.
func ParseCSV(data []byte) ([]models.CandidateRecord, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	nameIdx, hasName := columnIndex(cols, "title", "name")
	urlIdx, hasURL := columnIndex(cols, "url")
	if !hasName && !hasURL {
		return nil, fmt.Errorf("csv header has no recognized columns")
	}

	tagsIdx, _ := columnIndex(cols, "tags")
	notesIdx, _ := columnIndex(cols, "comment", "note")

	var records []models.CandidateRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var rec models.CandidateRecord
		if err != nil {
			rec.Fail("Malformed CSV row")
			records = append(records, rec)
			continue
		}

		rec.Name = strings.TrimSpace(field(row, nameIdx))
		rec.URL = strings.TrimSpace(field(row, urlIdx))
		rec.Notes = strings.TrimSpace(field(row, notesIdx))
		rec.Tags = splitTags(field(row, tagsIdx))

		if rec.Name == "" || rec.URL == "" {
			rec.Fail("Missing name or URL")
		}

		records = append(records, rec)
	}

	return records, nil
}

func columnIndex(cols map[string]int, names ...string) (int, bool) {
	for _, name := range names {
		if idx, ok := cols[name]; ok {
			return idx, true
		}
	}
	return -1, false
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	var tags []string
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
