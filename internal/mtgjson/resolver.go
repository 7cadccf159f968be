package mtgjson

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"cardmarket_bulk_import/internal/textutil"
)

// Provider supplies the set table. Satisfied by *Client on the privileged
// side and by *bridge.Conn on the restricted side.
type Provider interface {
	GetSetData(ctx context.Context) ([]SetEntry, error)
}

// SetMatch is a successful resolution of free-text set input.
type SetMatch struct {
	Code          string
	MarketplaceID int
}

// Resolver matches CSV set text against the catalog's match keys. Results
// are memoized per input string; a CSV typically repeats the same handful of
// set spellings across hundreds of rows.
type Resolver struct {
	provider Provider

	mu    sync.Mutex
	cache map[string]*SetMatch
}

func NewResolver(provider Provider) *Resolver {
	return &Resolver{
		provider: provider,
		cache:    make(map[string]*SetMatch),
	}
}

// MatchSet resolves setText to its canonical code and marketplace id, or nil
// when no catalog entry is known by that identifier. A failed table fetch is
// returned as an error and not memoized.
func (r *Resolver) MatchSet(ctx context.Context, setText string) (*SetMatch, error) {
	r.mu.Lock()
	if match, ok := r.cache[setText]; ok {
		r.mu.Unlock()
		return match, nil
	}
	r.mu.Unlock()

	sets, err := r.provider.GetSetData(ctx)
	if err != nil {
		return nil, err
	}

	var match *SetMatch
	for i := range sets {
		if matchesKeys(sets[i].MatchKeys, setText) {
			match = &SetMatch{Code: sets[i].Code, MarketplaceID: sets[i].MarketplaceID}
			break
		}
	}

	if match == nil {
		log.Debug().Str("set", setText).Msg("No set match in catalog")
	}

	r.mu.Lock()
	r.cache[setText] = match
	r.mu.Unlock()
	return match, nil
}

func matchesKeys(keys []string, setText string) bool {
	for _, key := range keys {
		if textutil.EqualNormalized(key, setText) {
			return true
		}
	}
	return false
}
