package application

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/localpad/localpad/internal/domain"
)

const exportSchemaVersion = 1

type exportSchema struct {
	SchemaVersion int            `json:"schemaVersion"`
	App           string         `json:"app"`
	ExportedAt    time.Time      `json:"exportedAt"`
	Records       []recordSchema `json:"records"`
}

// ExportCollection writes the full collection as pretty-printed two-space
// JSON, schema version included.
func ExportCollection(w io.Writer, app string, col domain.Collection, exportedAt time.Time) error {
	payload := exportSchema{
		SchemaVersion: exportSchemaVersion,
		App:           app,
		ExportedAt:    exportedAt,
		Records:       make([]recordSchema, 0, len(col)),
	}
	for _, rec := range col {
		payload.Records = append(payload.Records, recordSchema{
			ID:        string(rec.ID),
			Fields:    rec.Fields,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		})
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// ExportFileName names an export after its pad and the current date.
func ExportFileName(app string, now time.Time) string {
	return fmt.Sprintf("%s-%s.json", app, now.Format("2006-01-02"))
}
