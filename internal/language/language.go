// Package language resolves free-text language values from a CSV against the
// finite set of languages the marketplace's listing form offers.
package language

import (
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"

	"cardmarket_bulk_import/internal/textutil"
)

// Entry describes one language the marketplace knows about.
//
// Value is the option value used by the form's language selects. Labels are
// the option texts across the site's display languages. Aliases are extra
// accepted spellings (ISO codes, regional variants) used only for matching
// user input.
type Entry struct {
	Value   int
	Labels  []string
	Aliases []string
	Flag    string
}

// Catalog lists the 17 languages the marketplace supports across all
// products. A given listing form usually offers a subset; NewMatcher filters
// accordingly.
var Catalog = []Entry{
	{
		Value:   1,
		Labels:  []string{"English", "Anglais", "Englisch", "Inglés", "Inglese"},
		Aliases: []string{"en", "en-us", "en_us", "en-gb", "en_gb", "eng"},
		Flag:    "🇬🇧",
	},
	{
		Value:   2,
		Labels:  []string{"French", "Français", "Französisch", "Francés", "Francese"},
		Aliases: []string{"fr", "français"},
		Flag:    "🇫🇷",
	},
	{
		Value:   3,
		Labels:  []string{"German", "Allemand", "Deutsch", "Alemán", "Tedesco"},
		Aliases: []string{"de", "deutsch"},
		Flag:    "🇩🇪",
	},
	{
		Value:   4,
		Labels:  []string{"Spanish", "Espagnol", "Spanisch", "Español", "Spagnolo"},
		Aliases: []string{"es", "español"},
		Flag:    "🇪🇸",
	},
	{
		Value:   5,
		Labels:  []string{"Italian", "Italien", "Italienisch", "Italiano", "Italiano"},
		Aliases: []string{"it", "italiano"},
		Flag:    "🇮🇹",
	},
	{
		Value:  6,
		Labels: []string{"S-Chinese", "Chinois-S", "S-Chinesisch", "Chino-S", "Cinese-S"},
		Aliases: []string{
			"zhs", "汉语", "zh", "中文", "chinese", "simplified chinese",
			"zh-hans", "zh_hans", "zh-cn", "zh_cn",
		},
		Flag: "🇨🇳",
	},
	{
		Value:   7,
		Labels:  []string{"Japanese", "Japonais", "Japanisch", "Japonés", "Giapponese"},
		Aliases: []string{"ja", "日本語", "jp"},
		Flag:    "🇯🇵",
	},
	{
		Value:   8,
		Labels:  []string{"Portuguese", "Portugais", "Portugiesisch", "Portugués", "Portoghese"},
		Aliases: []string{"pt", "português"},
		Flag:    "🇵🇹",
	},
	{
		Value:   9,
		Labels:  []string{"Russian", "Russe", "Russisch", "Ruso", "Russo"},
		Aliases: []string{"ru", "русский"},
		Flag:    "🇷🇺",
	},
	{
		Value:   10,
		Labels:  []string{"Korean", "Coréen", "Koreanisch", "Coreano", "Coreano"},
		Aliases: []string{"ko", "한국어", "kr"},
		Flag:    "🇰🇷",
	},
	{
		Value:  11,
		Labels: []string{"T-Chinese", "Chinois-T", "T-Chinesisch", "Chino-T", "Cinese-T"},
		Aliases: []string{
			"zht", "漢語", "traditional chinese", "zh-hant", "zh_hant", "zh-tw", "zh_tw",
		},
		Flag: "🇹🇼",
	},
	{
		Value:   12,
		Labels:  []string{"Dutch", "Néerlandais", "Holländisch", "Holandés", "Olandese"},
		Aliases: []string{"nl", "nederlands"},
		Flag:    "🇳🇱",
	},
	{
		Value:   13,
		Labels:  []string{"Polish", "Polonais", "Polnisch", "Polaco", "Polacco"},
		Aliases: []string{"pl", "polski"},
		Flag:    "🇵🇱",
	},
	{
		Value:   14,
		Labels:  []string{"Czech", "Tchèque", "Tschechisch", "Checo", "Ceco"},
		Aliases: []string{"cs", "čeština"},
		Flag:    "🇨🇿",
	},
	{
		Value:   15,
		Labels:  []string{"Hungarian", "Hongrois", "Ungarisch", "Húngaro", "Ungherese"},
		Aliases: []string{"hu", "magyar"},
		Flag:    "🇭🇺",
	},
	{
		Value:   16,
		Labels:  []string{"Indonesian", "Indonésien", "Indonesisch", "Indonesio", "Indonesiano"},
		Aliases: []string{"id", "bahasa indonesia"},
		Flag:    "🇮🇩",
	},
	{
		Value:   17,
		Labels:  []string{"Thai", "Thaï", "Thailändisch", "Tailandés", "Thailandese"},
		Aliases: []string{"th", "ไทย"},
		Flag:    "🇹🇭",
	},
}

func catalogEntry(value int) *Entry {
	for i := range Catalog {
		if Catalog[i].Value == value {
			return &Catalog[i]
		}
	}
	return nil
}

// Result is the outcome of matching a CSV language cell. Data is never nil:
// on a miss it carries the fallback entry so callers always have something to
// render and to write back.
type Result struct {
	Matched bool
	Data    *Entry
}

// Matcher resolves input strings against the subset of the catalog the live
// page offers. It is built once per import session; results are memoized per
// input string since every language cell of every row passes through here.
type Matcher struct {
	available []*Entry

	mu    sync.Mutex
	cache map[string]Result
}

// NewMatcher builds a matcher from the option values read off the page's
// language select, preserving the page's option order. Option values not in
// the catalog are dropped with a warning.
func NewMatcher(available []int) *Matcher {
	m := &Matcher{cache: make(map[string]Result)}
	for _, value := range available {
		entry := catalogEntry(value)
		if entry == nil {
			log.Warn().Int("option_value", value).Msg("Page offers a language not in the catalog; skipping")
			continue
		}
		m.available = append(m.available, entry)
	}
	log.Debug().Int("available", len(m.available)).Msg("Built language matcher")
	return m
}

// fallback is the first option the page offers, or the catalog's first entry
// when the page offered none.
func (m *Matcher) fallback() *Entry {
	if len(m.available) > 0 {
		return m.available[0]
	}
	return &Catalog[0]
}

// Match resolves input against the available languages. Resolution order:
// numeric option value, then display labels, then aliases. First match wins.
func (m *Matcher) Match(input string) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if res, ok := m.cache[input]; ok {
		return res
	}
	res := m.match(input)
	m.cache[input] = res
	return res
}

func (m *Matcher) match(input string) Result {
	if input == "" {
		return Result{Matched: false, Data: m.fallback()}
	}

	for _, entry := range m.available {
		if textutil.EqualNormalized(input, strconv.Itoa(entry.Value)) {
			return Result{Matched: true, Data: entry}
		}
		for _, label := range entry.Labels {
			if textutil.EqualNormalized(input, label) {
				return Result{Matched: true, Data: entry}
			}
		}
		for _, alias := range entry.Aliases {
			if textutil.EqualNormalized(input, alias) {
				return Result{Matched: true, Data: entry}
			}
		}
	}

	log.Debug().Str("input", input).Msg("No language match; using fallback")
	return Result{Matched: false, Data: m.fallback()}
}
