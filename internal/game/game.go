// Package game defines the per-game import strategies. Each strategy is a
// capability record over the shared parsing pipeline: the generic one covers
// name, quantity and price for any product; the MTG one adds set and foil
// handling for Magic bulk-listing pages.
package game

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"cardmarket_bulk_import/internal/csvfile"
	"cardmarket_bulk_import/internal/page"
	"cardmarket_bulk_import/internal/parse"
)

const mtgBulkListingPath = "/Magic/Stock/ListingMethods/BulkListing"

// Select picks the strategy for the page being filled, keyed purely off the
// page URL. Unknown pages get the generic strategy.
func Select(pageURL *url.URL) parse.Strategy {
	if strings.HasSuffix(pageURL.Path, mtgBulkListingPath) {
		log.Debug().Str("path", pageURL.Path).Msg("Selected MTG strategy")
		return MTG
	}
	log.Debug().Str("path", pageURL.Path).Msg("Selected generic strategy")
	return Generic
}

// Generic handles only the fields every product has.
var Generic = parse.Strategy{
	Name:       "generic",
	FillValues: baseFillValues,
}

// MTG extends the generic strategy with set-constraint validation and foil
// variants.
var MTG = parse.Strategy{
	Name:           "mtg",
	ExtraColumns:   []string{"set", "isFoil"},
	ParseExtension: mtgParseExtension,
	FillValues: func(row parse.ParsedRow) page.RowValues {
		values := baseFillValues(row)
		values.Foil = row.Foil
		return values
	},
}

func baseFillValues(row parse.ParsedRow) page.RowValues {
	values := page.RowValues{
		Quantity: row.Quantity,
		Price:    row.Price,
	}
	if row.Language.Matched {
		values.LanguageValue = row.Language.Data.Value
	}
	return values
}

// foilValues are the CSV cell contents accepted as "this is a foil".
var foilValues = []string{"t", "1", "foil", "yes"}

func isFoil(raw string) bool {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	for _, v := range foilValues {
		if lowered == v {
			return true
		}
	}
	return false
}

// mtgParseExtension resolves the row's declared set against the reference
// catalog. A set that resolves to a different edition than the open listing
// page disables the row even when its name matched; a set that cannot be
// resolved at all is cleared.
func mtgParseExtension(ctx context.Context, s *parse.Session, row *parse.ParsedRow, record csvfile.Record, mapping parse.ColumnMapping) error {
	if mapping.Foil != "" {
		row.Foil = isFoil(record[mapping.Foil])
	}

	if mapping.Set == "" {
		return nil
	}
	setText := record[mapping.Set]
	if setText == "" {
		return nil
	}

	match, err := s.Sets.MatchSet(ctx, setText)
	if err != nil {
		return err
	}
	if match == nil {
		row.Set = ""
		return nil
	}

	row.Set = match.Code
	if match.MarketplaceID != s.Page.ExpansionID() {
		log.Debug().
			Str("set", match.Code).
			Int("set_edition", match.MarketplaceID).
			Int("page_edition", s.Page.ExpansionID()).
			Msg("Set resolves to a different edition; disabling row")
		row.Enabled = false
	}
	return nil
}
