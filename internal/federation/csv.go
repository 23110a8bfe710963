package federation

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"fedstore/pkg/domain"
)

// ExportCSV lists with the given filter and renders the type's fixed column
// set. Fields absent from a record's origin schema render as empty cells; a
// missing column is never an error.
func (s *Store[T]) ExportCSV(ctx context.Context, filter domain.Filter) (string, error) {
	recs, err := s.List(ctx, filter)
	if err != nil {
		return "", fmt.Errorf("export %s: %w", s.typ.Name, err)
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(s.typ.Columns); err != nil {
		return "", err
	}
	for _, rec := range recs {
		row := s.typ.Row(rec)
		// Pad short rows so every record fills the fixed header.
		for len(row) < len(s.typ.Columns) {
			row = append(row, "")
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
