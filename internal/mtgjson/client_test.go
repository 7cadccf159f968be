package mtgjson

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const setsCSV = `code,codeV3,id,mcmId,mcmName,mtgoCode,name
LEA,,1,5,Alpha,,Limited Edition Alpha
MH2,,520,3723,Modern Horizons 2,MH2,Modern Horizons 2
PROMO,,999,,,,Some Promo Set
`

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(setsCSV))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGetSetDataFiltersAndBuildsMatchKeys(t *testing.T) {
	server := newCatalogServer(t)
	client := NewClientWithEndpoint(server.URL)

	sets, err := client.GetSetData(context.Background())
	if err != nil {
		t.Fatalf("GetSetData failed: %v", err)
	}

	// The promo set has no marketplace id and must be dropped.
	if len(sets) != 2 {
		t.Fatalf("Expected 2 usable sets, got %d", len(sets))
	}

	alpha := sets[0]
	if alpha.Code != "LEA" || alpha.MarketplaceID != 5 {
		t.Errorf("Alpha entry wrong: %+v", alpha)
	}
	expectedKeys := []string{"LEA", "1", "5", "Alpha", "Limited Edition Alpha"}
	if len(alpha.MatchKeys) != len(expectedKeys) {
		t.Fatalf("Expected %d match keys, got %v", len(expectedKeys), alpha.MatchKeys)
	}
	for i, key := range expectedKeys {
		if alpha.MatchKeys[i] != key {
			t.Errorf("Match key %d: expected %q, got %q", i, key, alpha.MatchKeys[i])
		}
	}

	mh2 := sets[1]
	if mh2.MarketplaceID != 3723 {
		t.Errorf("MH2 entry wrong: %+v", mh2)
	}
}

func TestGetSetDataCachesTable(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(setsCSV))
	}))
	defer server.Close()

	client := NewClientWithEndpoint(server.URL)
	ctx := context.Background()
	if _, err := client.GetSetData(ctx); err != nil {
		t.Fatalf("First fetch failed: %v", err)
	}
	if _, err := client.GetSetData(ctx); err != nil {
		t.Fatalf("Second fetch failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 upstream fetch, got %d", calls)
	}
}

func TestGetSetDataErrorNotCached(t *testing.T) {
	failures := 1
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failures > 0 {
			failures--
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(setsCSV))
	}))
	defer server.Close()

	client := NewClientWithEndpoint(server.URL)
	ctx := context.Background()
	if _, err := client.GetSetData(ctx); err == nil {
		t.Fatal("Expected first fetch to fail")
	}
	sets, err := client.GetSetData(ctx)
	if err != nil {
		t.Fatalf("Expected re-invocation to succeed, got %v", err)
	}
	if len(sets) != 2 {
		t.Errorf("Expected 2 sets after recovery, got %d", len(sets))
	}
}
