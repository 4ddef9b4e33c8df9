package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"dwellmetrics/api/models"
)

// FileEventSource reads stored events from a JSON array of event records,
// such as an export of the tracking table. The file is read on every fetch.
type FileEventSource struct {
	path string
}

func NewFileEventSource(path string) *FileEventSource {
	return &FileEventSource{path: path}
}

func (s *FileEventSource) FetchEvents(ctx context.Context, filter models.EventFilter) ([]models.TrackingEvent, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read events file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []models.EventRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode events file %s: %w", s.path, err)
	}

	var events []models.TrackingEvent
	for _, rec := range records {
		e := rec.Event()
		if filter.Matches(e) {
			events = append(events, e)
		}
	}
	return events, nil
}
