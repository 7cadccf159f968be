package csvfile

import (
	"errors"
	"testing"
)

func TestLoadParsesHeaderAndRows(t *testing.T) {
	file := NewFile("inventory.csv", []byte("Name,Qty,Price\nLightning Bolt,4,1.50\nIsland,10,0.05\n"))
	loader := NewLoader()

	data, err := loader.Load(file)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	expectedCols := []string{"Name", "Qty", "Price"}
	if len(data.Columns) != len(expectedCols) {
		t.Fatalf("Expected %d columns, got %d", len(expectedCols), len(data.Columns))
	}
	for i, col := range expectedCols {
		if data.Columns[i] != col {
			t.Errorf("Column %d: expected %q, got %q", i, col, data.Columns[i])
		}
	}

	if len(data.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(data.Rows))
	}
	if data.Rows[0]["Name"] != "Lightning Bolt" || data.Rows[0]["Qty"] != "4" || data.Rows[0]["Price"] != "1.50" {
		t.Errorf("Row 0 parsed incorrectly: %v", data.Rows[0])
	}
}

func TestLoadSkipsEmptyLines(t *testing.T) {
	file := NewFile("gaps.csv", []byte("Name,Qty\nIsland,1\n\n\nForest,2\n"))
	loader := NewLoader()

	data, err := loader.Load(file)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(data.Rows) != 2 {
		t.Errorf("Expected 2 rows (empty lines skipped), got %d", len(data.Rows))
	}
}

func TestLoadShortRowsMissingFields(t *testing.T) {
	file := NewFile("short.csv", []byte("Name,Qty,Price\nIsland,3\n"))
	loader := NewLoader()

	data, err := loader.Load(file)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	row := data.Rows[0]
	if row["Name"] != "Island" || row["Qty"] != "3" {
		t.Errorf("Short row parsed incorrectly: %v", row)
	}
	if _, ok := row["Price"]; ok {
		t.Error("Missing trailing field should be absent from the record")
	}
}

func TestLoadRejectsInvalidUTF8(t *testing.T) {
	file := NewFile("binary.bin", []byte{0xff, 0xfe, 0x00, 0x01})
	loader := NewLoader()

	_, err := loader.Load(file)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected *ParseError, got %v", err)
	}
}

func TestLoadRejectsUnbalancedQuotes(t *testing.T) {
	file := NewFile("broken.csv", []byte("Name,Qty\n\"Island,3\n"))
	loader := NewLoader()

	_, err := loader.Load(file)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected *ParseError for unbalanced quotes, got %v", err)
	}
}

func TestLoadMemoizesPerFile(t *testing.T) {
	file := NewFile("memo.csv", []byte("Name\nIsland\n"))
	loader := NewLoader()

	first, err := loader.Load(file)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	second, err := loader.Load(file)
	if err != nil {
		t.Fatalf("Second load failed: %v", err)
	}
	if first != second {
		t.Error("Expected the same *Data pointer from repeated loads of one file")
	}

	cols, err := loader.Columns(file)
	if err != nil {
		t.Fatalf("Columns failed: %v", err)
	}
	if len(cols) != 1 || cols[0] != "Name" {
		t.Errorf("Columns returned %v", cols)
	}
}
