package sheets

import (
	"context"
	"errors"
	"testing"

	"cardmarket_bulk_import/internal/csvfile"
)

type stubReader struct {
	values [][]interface{}
	err    error
}

func (r *stubReader) ReadSheet(ctx context.Context, spreadsheetID, range_ string) ([][]interface{}, error) {
	return r.values, r.err
}

func TestReadInventoryProducesCSVShape(t *testing.T) {
	reader := &stubReader{values: [][]interface{}{
		{"Name", "Qty", "Price"},
		{"Lightning Bolt", 4, 1.5},
		{"Island", "10", "0.05"},
	}}

	file, err := ReadInventory(context.Background(), reader, "sheet-id", "Inventory!A1:C100")
	if err != nil {
		t.Fatalf("ReadInventory failed: %v", err)
	}

	data, err := csvfile.NewLoader().Load(file)
	if err != nil {
		t.Fatalf("Loading converted inventory failed: %v", err)
	}
	if len(data.Columns) != 3 || data.Columns[0] != "Name" {
		t.Errorf("Columns: got %v", data.Columns)
	}
	if len(data.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(data.Rows))
	}
	if data.Rows[0]["Name"] != "Lightning Bolt" || data.Rows[0]["Qty"] != "4" {
		t.Errorf("Row 0: got %v", data.Rows[0])
	}
}

func TestReadInventoryQuotesCommasInNames(t *testing.T) {
	reader := &stubReader{values: [][]interface{}{
		{"Name"},
		{"Ragavan, Nimble Pilferer"},
	}}

	file, err := ReadInventory(context.Background(), reader, "sheet-id", "A1:A10")
	if err != nil {
		t.Fatalf("ReadInventory failed: %v", err)
	}
	data, err := csvfile.NewLoader().Load(file)
	if err != nil {
		t.Fatalf("Loading converted inventory failed: %v", err)
	}
	if data.Rows[0]["Name"] != "Ragavan, Nimble Pilferer" {
		t.Errorf("Comma-containing name mangled: %v", data.Rows[0])
	}
}

func TestReadInventorySkipsEmptyRows(t *testing.T) {
	reader := &stubReader{values: [][]interface{}{
		{"Name"},
		{""},
		{nil},
		{"Island"},
	}}

	file, err := ReadInventory(context.Background(), reader, "sheet-id", "A1:A10")
	if err != nil {
		t.Fatalf("ReadInventory failed: %v", err)
	}
	data, err := csvfile.NewLoader().Load(file)
	if err != nil {
		t.Fatalf("Loading converted inventory failed: %v", err)
	}
	if len(data.Rows) != 1 || data.Rows[0]["Name"] != "Island" {
		t.Errorf("Expected only the Island row, got %v", data.Rows)
	}
}

func TestReadInventoryErrors(t *testing.T) {
	readErr := errors.New("permission denied")
	if _, err := ReadInventory(context.Background(), &stubReader{err: readErr}, "id", "A1"); !errors.Is(err, readErr) {
		t.Errorf("Expected wrapped read error, got %v", err)
	}
	if _, err := ReadInventory(context.Background(), &stubReader{}, "id", "A1"); err == nil {
		t.Error("Expected error for empty range")
	}
}
