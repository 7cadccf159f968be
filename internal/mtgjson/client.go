// Package mtgjson retrieves the MTGJSON set catalog used to confirm that a
// CSV row's declared set matches the expansion whose listing page is open.
// The fetch runs in the privileged context only; restricted contexts go
// through the bridge.
package mtgjson

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"cardmarket_bulk_import/internal/csvfile"
)

// SetsEndpoint is the fixed remote CSV source for set metadata.
const SetsEndpoint = "https://mtgjson.com/api/v5/csv/sets.csv"

// SetEntry is one set from the remote catalog, reduced to what matching
// needs. MatchKeys holds every alternate identifier the set is known by.
type SetEntry struct {
	MatchKeys     []string
	Code          string
	MarketplaceID int
}

// Client fetches and caches the set catalog. The table is loaded lazily on
// first use and kept for the client's lifetime; a failed fetch is not cached,
// so callers may simply re-invoke.
type Client struct {
	endpoint string
	client   *http.Client

	mu   sync.Mutex
	sets []SetEntry
}

func NewClient() *Client {
	return &Client{
		endpoint: SetsEndpoint,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithEndpoint is used by tests to point the client at a local
// server.
func NewClientWithEndpoint(endpoint string) *Client {
	c := NewClient()
	c.endpoint = endpoint
	return c
}

// GetSetData returns the decoded set table, fetching it on first call.
func (c *Client) GetSetData(ctx context.Context) ([]SetEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sets != nil {
		return c.sets, nil
	}

	sets, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.sets = sets
	return sets, nil
}

func (c *Client) fetch(ctx context.Context) ([]SetEntry, error) {
	log.Debug().Str("endpoint", c.endpoint).Msg("Fetching set catalog")

	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch set catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("set catalog request failed with status %d: %s", resp.StatusCode, string(body))
	}

	contents, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read set catalog response: %w", err)
	}

	data, err := csvfile.NewLoader().Load(csvfile.NewFile("sets.csv", contents))
	if err != nil {
		return nil, fmt.Errorf("failed to decode set catalog: %w", err)
	}

	sets := buildEntries(data)
	log.Debug().
		Int("total_rows", len(data.Rows)).
		Int("usable_sets", len(sets)).
		Msg("Built set catalog")
	return sets, nil
}

// buildEntries keeps only sets with a usable numeric marketplace id and
// collects every non-empty alternate identifier as a match key.
func buildEntries(data *csvfile.Data) []SetEntry {
	sets := make([]SetEntry, 0, len(data.Rows))
	for _, row := range data.Rows {
		mcmID, err := strconv.Atoi(row["mcmId"])
		if err != nil {
			continue
		}

		var keys []string
		for _, col := range []string{"code", "codeV3", "id", "mcmId", "mcmName", "mtgoCode", "name"} {
			if v := row[col]; v != "" {
				keys = append(keys, v)
			}
		}

		sets = append(sets, SetEntry{
			MatchKeys:     keys,
			Code:          row["code"],
			MarketplaceID: mcmID,
		})
	}
	return sets
}
