// Package reader parses raw comma-separated telemetry files into the
// in-memory record table the pipeline operates on.
package reader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/tidewell/aisclean/internal/domain/model"
	"github.com/tidewell/aisclean/internal/support/exception"
	"github.com/tidewell/aisclean/internal/support/logger"
)

const stageName = "reader"

// ParseCSV decodes a raw CSV byte stream into a record table. The first
// record is the header; every empty field becomes the missing marker, every
// other field stays raw text until the sanitizers coerce it.
//
// A missing header, an empty file, or a structurally corrupt record surfaces
// a malformed-input error and nothing is returned.
func ParseCSV(raw []byte) (*model.Table, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, exception.NewMalformedInputError(stageName, "input file is empty", nil)
		}
		return nil, exception.NewMalformedInputError(stageName, "failed to read header record", err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
		if columns[i] == "" {
			return nil, exception.NewMalformedInputError(stageName, "header contains an unnamed column", nil)
		}
	}

	table := model.NewTable(columns)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, exception.NewMalformedInputError(stageName, "failed to read data record", err)
		}

		cells := make(map[string]model.Cell, len(columns))
		for i, column := range columns {
			text := record[i]
			if strings.TrimSpace(text) == "" {
				cells[column] = model.NullCell()
			} else {
				cells[column] = model.RawCell(text)
			}
		}
		table.AppendRow(cells)
	}

	if table.Len() == 0 {
		return nil, exception.NewMalformedInputError(stageName, "input file contains no data rows", nil)
	}

	logger.Debugf("Parsed %d rows across %d columns.", table.Len(), len(columns))
	return table, nil
}
