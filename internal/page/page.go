// Package page models the marketplace's bulk-listing form as a live
// document. It owns the structural selectors for the page's row table and
// form controls; any change in the marketplace's markup lands here.
package page

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"cardmarket_bulk_import/internal/textutil"
)

// Structural selectors for the bulk-listing form, versioned against the
// current page layout.
const (
	rowAnchorSelector       = "td div.col-product.text-start a"
	quantitySelector        = `td input[name^="amount"]`
	priceSelector           = `td input[name^="price"]`
	foilSelector            = `td input[name^="isFoil"]`
	languageSelector        = `td select[name^="idLanguage"]`
	languageCatalogSelector = `tr select.form-select[name*="idLanguage"]`
)

// Row is one listing row of the form, located by its product anchor.
type Row struct {
	Name   string
	anchor *goquery.Selection
}

// TR returns the table row element containing the listing's form controls.
func (r Row) TR() *goquery.Selection {
	return r.anchor.Closest("tr")
}

// Page wraps the bulk-listing document. The row index is memoized per
// operation and must be invalidated whenever the fill pass duplicates a row,
// because the duplicate changes document order.
type Page struct {
	doc *goquery.Document
	url *url.URL

	rows      []Row
	rowsValid bool
}

// New builds a Page from an already-parsed document. pageURL is the address
// the form was loaded from; its path selects the game strategy and its
// idExpansion parameter identifies the open edition.
func New(doc *goquery.Document, pageURL string) (*Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page url: %w", err)
	}
	return &Page{doc: doc, url: u}, nil
}

// Parse reads the page HTML from r.
func Parse(r io.Reader, pageURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page html: %w", err)
	}
	return New(doc, pageURL)
}

// URL returns the page address.
func (p *Page) URL() *url.URL {
	return p.url
}

// Html renders the current state of the document, including any values the
// fill pass wrote.
func (p *Page) Html() (string, error) {
	html, err := p.doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render page html: %w", err)
	}
	return html, nil
}

// Rows returns the listing rows in document order. The scan is memoized
// until InvalidateRows is called.
func (p *Page) Rows() []Row {
	if p.rowsValid {
		return p.rows
	}

	p.rows = p.rows[:0]
	p.doc.Find(rowAnchorSelector).Each(func(_ int, a *goquery.Selection) {
		p.rows = append(p.rows, Row{
			Name:   strings.TrimSpace(a.Text()),
			anchor: a,
		})
	})
	p.rowsValid = true

	log.Debug().Int("rows", len(p.rows)).Msg("Indexed page rows")
	return p.rows
}

// InvalidateRows drops the memoized row index. Row duplication changes the
// document, so the fill pass calls this after every duplicate.
func (p *Page) InvalidateRows() {
	p.rowsValid = false
}

// MatchName matches a parsed name against the row index. An exact normalized
// match returns immediately; otherwise the last row whose name contains the
// parsed name wins, favoring the most recently listed variant. Returns the
// matched display name, its row, and whether anything matched.
func (p *Page) MatchName(name string) (string, Row, bool) {
	var partial Row
	var partialFound bool

	for _, row := range p.Rows() {
		if textutil.EqualNormalized(row.Name, name) {
			return row.Name, row, true
		}
		if textutil.ContainsNormalized(row.Name, name) {
			partial = row
			partialFound = true
		}
	}

	if partialFound {
		return partial.Name, partial, true
	}
	return "", Row{}, false
}

// AvailableLanguages reads the option values of the page's language select.
// The hidden catalog select lists every language this product can be listed
// in; an empty result means the page offers no language choice.
func (p *Page) AvailableLanguages() []int {
	sel := p.doc.Find(languageCatalogSelector).First()
	if sel.Length() == 0 {
		return nil
	}

	var values []int
	sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		raw, ok := opt.Attr("value")
		if !ok {
			return
		}
		value, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return
		}
		values = append(values, value)
	})
	return values
}

// ExpansionID returns the edition id of the open listing page, taken from
// the idExpansion query parameter. Zero when the page is not scoped to one
// edition.
func (p *Page) ExpansionID() int {
	id, err := strconv.Atoi(p.url.Query().Get("idExpansion"))
	if err != nil {
		return 0
	}
	return id
}
