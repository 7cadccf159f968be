package csvfile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

// File represents a single user-supplied CSV upload. The same *File value is
// handed around for column discovery and the full parse, so the Loader can
// memoize per upload.
type File struct {
	Name     string
	Contents []byte
}

// NewFile wraps raw bytes as an upload.
func NewFile(name string, contents []byte) *File {
	return &File{Name: name, Contents: contents}
}

// Open reads a CSV file from disk.
func Open(path string) (*File, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv file: %w", err)
	}
	return &File{Name: path, Contents: contents}, nil
}

// Record maps column name to the raw cell value. Columns missing from a short
// row are absent from the map.
type Record map[string]string

// Data is the parsed form of one CSV file.
type Data struct {
	Columns []string
	Rows    []Record
}

// ParseError reports a CSV file that could not be decoded or parsed. Callers
// surface it to the user as an invalid file; re-uploading is the recovery.
type ParseError struct {
	FileName string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse csv file %s: %v", e.FileName, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type loadResult struct {
	data *Data
	err  error
}

// Loader parses CSV uploads, memoizing per distinct *File so that column
// discovery and the subsequent full parse share one pass.
type Loader struct {
	mu    sync.Mutex
	cache map[*File]loadResult
}

func NewLoader() *Loader {
	return &Loader{cache: make(map[*File]loadResult)}
}

// Load parses f, returning the cached result on repeated calls.
func (l *Loader) Load(f *File) (*Data, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if res, ok := l.cache[f]; ok {
		return res.data, res.err
	}

	data, err := parse(f)
	l.cache[f] = loadResult{data: data, err: err}
	if err == nil {
		log.Debug().
			Str("file", f.Name).
			Int("columns", len(data.Columns)).
			Int("rows", len(data.Rows)).
			Msg("Parsed CSV file")
	}
	return data, err
}

// Columns returns the header row of f without forcing callers to handle the
// full row set.
func (l *Loader) Columns(f *File) ([]string, error) {
	data, err := l.Load(f)
	if err != nil {
		return nil, err
	}
	return data.Columns, nil
}

func parse(f *File) (*Data, error) {
	if !utf8.Valid(f.Contents) {
		return nil, &ParseError{FileName: f.Name, Err: fmt.Errorf("file is not valid UTF-8 text")}
	}

	reader := csv.NewReader(bytes.NewReader(f.Contents))
	// Short rows are tolerated; missing trailing fields are treated as absent.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &ParseError{FileName: f.Name, Err: fmt.Errorf("file has no header row")}
	}
	if err != nil {
		return nil, &ParseError{FileName: f.Name, Err: err}
	}

	data := &Data{Columns: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{FileName: f.Name, Err: err}
		}

		row := make(Record, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		data.Rows = append(data.Rows, row)
	}
	return data, nil
}
