package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"cardmarket_bulk_import/internal/csvfile"
)

// Reader is the subset of Client used to pull inventory values; tests
// substitute a stub.
type Reader interface {
	ReadSheet(ctx context.Context, spreadsheetID, range_ string) ([][]interface{}, error)
}

// ReadInventory converts a spreadsheet range into the same shape a CSV
// upload produces, so the rest of the import pipeline does not care where
// the inventory came from. The first row is the header; rows with no header
// above a cell drop that cell; entirely empty rows are skipped.
func ReadInventory(ctx context.Context, reader Reader, spreadsheetID, sheetRange string) (*csvfile.File, error) {
	log.Debug().
		Str("spreadsheet_id", spreadsheetID).
		Str("range", sheetRange).
		Msg("Reading inventory from spreadsheet")

	values, err := reader.ReadSheet(ctx, spreadsheetID, sheetRange)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory sheet: %w", err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("inventory sheet range %s is empty", sheetRange)
	}

	// Render back to CSV so the pipeline's loader (and its memoization)
	// treats a sheet exactly like an uploaded file.
	var sb strings.Builder
	for _, row := range values {
		cells := make([]string, len(row))
		for i, cell := range row {
			if cell != nil {
				cells[i] = fmt.Sprintf("%v", cell)
			}
		}
		if allEmpty(cells) {
			continue
		}
		sb.WriteString(encodeCSVLine(cells))
	}

	file := csvfile.NewFile(fmt.Sprintf("sheets:%s/%s", spreadsheetID, sheetRange), []byte(sb.String()))
	log.Debug().Int("rows", len(values)).Msg("Converted spreadsheet inventory")
	return file, nil
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func encodeCSVLine(cells []string) string {
	quoted := make([]string, len(cells))
	for i, cell := range cells {
		if strings.ContainsAny(cell, ",\"\n") {
			cell = "\"" + strings.ReplaceAll(cell, "\"", "\"\"") + "\""
		}
		quoted[i] = cell
	}
	return strings.Join(quoted, ",") + "\n"
}
