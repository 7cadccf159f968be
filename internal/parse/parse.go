// Package parse turns raw CSV records into reconciled rows, matching each
// against the live listing page through a per-import Session.
package parse

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"cardmarket_bulk_import/internal/csvfile"
	"cardmarket_bulk_import/internal/language"
	"cardmarket_bulk_import/internal/mtgjson"
	"cardmarket_bulk_import/internal/page"
)

// ColumnMapping names the CSV columns holding each logical field. Name is
// mandatory; everything else is optional and defaults when unmapped.
type ColumnMapping struct {
	Name     string
	Quantity string
	Price    string
	Language string
	Set      string
	Foil     string
}

// ParsedRow is one reconciled CSV line. Rows are created once per import
// pass and not mutated afterwards; selection state lives in the caller.
type ParsedRow struct {
	ID          int
	Name        string
	MatchedName string // display name of the matched page row, "" if unmatched
	Language    language.Result
	Quantity    int
	Price       float64
	Enabled     bool

	// Game-specific fields, populated by the session's strategy.
	Set  string
	Foil bool
}

// Strategy bundles the game-specific behavior of an import as plain data and
// functions: which extra columns the CSV form should offer, how to extend
// row parsing, and how a parsed row maps onto form control values.
type Strategy struct {
	Name         string
	ExtraColumns []string

	// ParseExtension may fill game-specific fields and tighten Enabled.
	// Nil means no extension.
	ParseExtension func(ctx context.Context, s *Session, row *ParsedRow, record csvfile.Record, mapping ColumnMapping) error

	// FillValues maps a parsed row onto the values written into its page row.
	FillValues func(row ParsedRow) page.RowValues
}

// Session carries one import's dependencies through parsing and filling.
// Constructed once per import; nothing here is process-global.
type Session struct {
	Page      *page.Page
	Languages *language.Matcher
	Sets      *mtgjson.Resolver
	Loader    *csvfile.Loader
	Strategy  Strategy
}

// NewSession builds a session for the given page. The language matcher is
// restricted to the options the page actually offers.
func NewSession(p *page.Page, sets *mtgjson.Resolver, strategy Strategy) *Session {
	return &Session{
		Page:      p,
		Languages: language.NewMatcher(p.AvailableLanguages()),
		Sets:      sets,
		Loader:    csvfile.NewLoader(),
		Strategy:  strategy,
	}
}

// ParseRow reconciles one CSV record against the page. A missing name
// mapping is a caller contract violation and errors out; every other lookup
// degrades to defaults.
func (s *Session) ParseRow(ctx context.Context, id int, record csvfile.Record, mapping ColumnMapping) (ParsedRow, error) {
	if mapping.Name == "" {
		return ParsedRow{}, fmt.Errorf("column mapping for name is required")
	}

	name := record[mapping.Name]

	row := ParsedRow{
		ID:   id,
		Name: name,
	}

	if matched, _, found := s.Page.MatchName(name); found {
		row.MatchedName = matched
	}

	languageInput := ""
	if mapping.Language != "" {
		languageInput = record[mapping.Language]
	}
	row.Language = s.Languages.Match(languageInput)

	if mapping.Quantity != "" {
		row.Quantity = parseQuantity(record[mapping.Quantity])
	}
	if mapping.Price != "" {
		row.Price = parsePrice(record[mapping.Price])
	}

	row.Enabled = row.MatchedName != ""

	if s.Strategy.ParseExtension != nil {
		if err := s.Strategy.ParseExtension(ctx, s, &row, record, mapping); err != nil {
			return ParsedRow{}, err
		}
	}

	return row, nil
}

// ParseCsv loads the file and reconciles every record in input order. Row
// IDs are the zero-based record index, unique within this import only.
func (s *Session) ParseCsv(ctx context.Context, f *csvfile.File, mapping ColumnMapping) ([]ParsedRow, error) {
	data, err := s.Loader.Load(f)
	if err != nil {
		return nil, err
	}

	rows := make([]ParsedRow, 0, len(data.Rows))
	for i, record := range data.Rows {
		row, err := s.ParseRow(ctx, i, record, mapping)
		if err != nil {
			return nil, fmt.Errorf("failed to parse row %d: %w", i, err)
		}
		rows = append(rows, row)
	}

	log.Debug().
		Int("rows", len(rows)).
		Int("enabled", countEnabled(rows)).
		Str("strategy", s.Strategy.Name).
		Msg("Parsed CSV rows")
	return rows, nil
}

// FillPage writes the given rows into the page and returns the number of
// rows successfully filled. Callers pass the user-selected subset; no
// Enabled filtering happens here.
func (s *Session) FillPage(rows []ParsedRow) int {
	items := make([]page.FillItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, page.FillItem{
			Name:        row.Name,
			MatchedName: row.MatchedName,
			Values:      s.Strategy.FillValues(row),
		})
	}
	return s.Page.FillPage(items)
}

func countEnabled(rows []ParsedRow) int {
	n := 0
	for _, row := range rows {
		if row.Enabled {
			n++
		}
	}
	return n
}

// parseQuantity parses a non-negative integer, 0 on anything else.
func parseQuantity(raw string) int {
	q, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || q < 0 {
		return 0
	}
	return q
}

// parsePrice parses a non-negative decimal, 0 on anything else.
func parsePrice(raw string) float64 {
	p, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || p < 0 {
		return 0
	}
	return p
}
