package page

import (
	"fmt"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// RowValues are the values to write into one listing row's controls. Zero
// quantity and zero price mean "do not touch"; Foil only ever checks the
// box; LanguageValue zero leaves the select alone.
type RowValues struct {
	Quantity      int
	Price         float64
	Foil          bool
	LanguageValue int
}

// FillItem pairs a parsed row's names with the values to write. MatchedName
// is preferred for locating the row; Name is the raw CSV fallback.
type FillItem struct {
	Name        string
	MatchedName string
	Values      RowValues
}

// FillRow writes vals into the row's form controls.
//
// If the row's quantity control already holds a non-zero value the row is
// committed to another listing, so the row is duplicated first: a clone with
// cleared controls is inserted before the original and receives the writes,
// leaving the original's values intact. Returns the row actually written and
// false when the row's controls could not be located.
func (p *Page) FillRow(tr *goquery.Selection, vals RowValues) (*goquery.Selection, bool) {
	quantityEl := tr.Find(quantitySelector).First()
	if quantityEl.Length() == 0 {
		log.Debug().Msg("Row has no quantity control; skipping")
		return nil, false
	}

	if committed(quantityEl) {
		tr = p.duplicateRow(tr)
		quantityEl = tr.Find(quantitySelector).First()
	}

	if vals.Quantity != 0 {
		quantityEl.SetAttr("value", strconv.Itoa(vals.Quantity))
	}
	if vals.Price != 0 {
		if priceEl := tr.Find(priceSelector).First(); priceEl.Length() > 0 {
			priceEl.SetAttr("value", fmt.Sprintf("%.2f", vals.Price))
		}
	}
	if vals.Foil {
		if foilEl := tr.Find(foilSelector).First(); foilEl.Length() > 0 {
			foilEl.SetAttr("checked", "checked")
		}
	}
	if vals.LanguageValue != 0 {
		if langEl := tr.Find(languageSelector).First(); langEl.Length() > 0 {
			selectOption(langEl, vals.LanguageValue)
		}
	}

	return tr, true
}

// FillPage locates and fills every item's row, in order. Items whose row
// cannot be found are skipped silently; the return value counts the rows
// actually written. Mutates the document in place and is not idempotent:
// a second pass over the same items duplicates rows again.
func (p *Page) FillPage(items []FillItem) int {
	count := 0
	for _, item := range items {
		name := item.MatchedName
		if name == "" {
			name = item.Name
		}

		_, row, found := p.MatchName(name)
		if !found {
			log.Debug().Str("name", name).Msg("No page row for name; skipping")
			continue
		}

		if _, ok := p.FillRow(row.TR(), item.Values); ok {
			count++
		}
	}

	log.Debug().Int("filled", count).Int("requested", len(items)).Msg("Finished fill pass")
	return count
}

// committed reports whether the quantity control already holds a non-zero
// value, meaning the row belongs to a different listing from this import.
func committed(quantityEl *goquery.Selection) bool {
	value := quantityEl.AttrOr("value", "")
	return value != "" && value != "0"
}

// duplicateRow performs the page's copy-row action: a clone of the row is
// inserted before the original, with the clone's controls reset to their
// defaults. The original keeps its committed values. The row index is
// invalidated because document order changed.
func (p *Page) duplicateRow(tr *goquery.Selection) *goquery.Selection {
	clone := tr.Clone()
	resetControls(clone)
	tr.BeforeSelection(clone)
	p.InvalidateRows()

	log.Debug().Msg("Duplicated committed row")
	return clone
}

func resetControls(tr *goquery.Selection) {
	tr.Find(quantitySelector).First().SetAttr("value", "")
	tr.Find(priceSelector).First().SetAttr("value", "")
	tr.Find(foilSelector).First().RemoveAttr("checked")
	tr.Find(languageSelector).First().Find("option").RemoveAttr("selected")
}

func selectOption(selectEl *goquery.Selection, value int) {
	want := strconv.Itoa(value)
	selectEl.Find("option").Each(func(_ int, opt *goquery.Selection) {
		if opt.AttrOr("value", "") == want {
			opt.SetAttr("selected", "selected")
		} else {
			opt.RemoveAttr("selected")
		}
	})
}
