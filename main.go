package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"cardmarket_bulk_import/internal/batch"
	"cardmarket_bulk_import/internal/bridge"
	"cardmarket_bulk_import/internal/config"
	"cardmarket_bulk_import/internal/csvfile"
	"cardmarket_bulk_import/internal/game"
	"cardmarket_bulk_import/internal/mtgjson"
	"cardmarket_bulk_import/internal/page"
	"cardmarket_bulk_import/internal/parse"
	"cardmarket_bulk_import/internal/retry"
	"cardmarket_bulk_import/internal/sheets"
)

func main() {
	log.Debug().Msg("Starting application")
	setupEnvironment()

	ctx := context.Background()

	p := loadPage(ctx)

	// The page context may not fetch, so the set catalog is served from the
	// privileged side over the bridge.
	conn := bridge.Serve(ctx, mtgjson.NewClient())
	defer conn.Close()
	resolver := mtgjson.NewResolver(conn)

	strategy := game.Select(p.URL())
	session := parse.NewSession(p, resolver, strategy)

	file := loadInventory(ctx)
	mapping := buildColumnMapping()
	reportColumns(session, file, mapping)

	rows, err := session.ParseCsv(ctx, file, mapping)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse inventory")
	}

	selected := selectEnabledRows(rows)
	batchRows := selectBatch(selected)

	count := session.FillPage(batchRows)

	writeFilledPage(p)

	log.Info().
		Int("parsed", len(rows)).
		Int("enabled", len(selected)).
		Int("filled", count).
		Msg("Import run complete")

	notifyCompletion(ctx, len(rows), len(selected), count)
}

// loadPage reads the bulk-listing page either from a saved HTML file or over
// HTTP. When reading from a file, PAGE_URL_HINT supplies the logical address
// used for strategy selection and the edition id.
func loadPage(ctx context.Context) *page.Page {
	pageFile := os.Getenv("PAGE_FILE")
	pageURL := os.Getenv("PAGE_URL")

	var html string
	var logicalURL string
	switch {
	case pageFile != "":
		contents, err := os.ReadFile(pageFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", pageFile).Msg("Failed to read page file")
		}
		html = string(contents)
		logicalURL = getRequiredEnv("PAGE_URL_HINT")
	case pageURL != "":
		fetched, err := retry.WithRetry(ctx, config.DefaultResilienceConfig.PageFetch, func(ctx context.Context) (string, error) {
			return fetchPage(ctx, pageURL)
		})
		if err != nil {
			log.Fatal().Err(err).Str("url", pageURL).Msg("Failed to fetch page")
		}
		html = fetched
		logicalURL = pageURL
	default:
		log.Fatal().Msg("Either PAGE_FILE or PAGE_URL is required")
	}

	p, err := page.Parse(strings.NewReader(html), logicalURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse page")
	}
	log.Debug().
		Int("rows", len(p.Rows())).
		Int("expansion_id", p.ExpansionID()).
		Msg("Loaded listing page")
	return p
}

func fetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page request failed with status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read page body: %w", err)
	}
	return string(body), nil
}

// loadInventory returns the uploaded CSV, or pulls the inventory from a
// Google Sheets range when CSV_FILE is not set.
func loadInventory(ctx context.Context) *csvfile.File {
	if csvPath := os.Getenv("CSV_FILE"); csvPath != "" {
		file, err := csvfile.Open(csvPath)
		if err != nil {
			log.Fatal().Err(err).Str("file", csvPath).Msg("Failed to read inventory CSV")
		}
		return file
	}

	spreadsheetID := getRequiredEnv("SPREADSHEET_ID")
	sheetRange := getEnvWithDefault("SPREADSHEET_RANGE", "Inventory!A1:Z1000")
	credsFile := getEnvWithDefault("GOOGLE_CREDENTIALS_FILE", "credentials.json")

	client, err := sheets.NewClient(ctx, credsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create sheets client")
	}

	file, err := retry.WithRetry(ctx, config.DefaultResilienceConfig.SheetRead, func(ctx context.Context) (*csvfile.File, error) {
		return sheets.ReadInventory(ctx, client, spreadsheetID, sheetRange)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read inventory from spreadsheet")
	}
	return file
}

func buildColumnMapping() parse.ColumnMapping {
	return parse.ColumnMapping{
		Name:     getRequiredEnv("COL_NAME"),
		Quantity: os.Getenv("COL_QUANTITY"),
		Price:    os.Getenv("COL_PRICE"),
		Language: os.Getenv("COL_LANGUAGE"),
		Set:      os.Getenv("COL_SET"),
		Foil:     os.Getenv("COL_FOIL"),
	}
}

// reportColumns logs the discovered header so mapping mistakes are easy to
// spot before the parse pass runs.
func reportColumns(session *parse.Session, file *csvfile.File, mapping parse.ColumnMapping) {
	columns, err := session.Loader.Columns(file)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid inventory file")
	}
	log.Info().
		Strs("columns", columns).
		Str("name_column", mapping.Name).
		Msg("Discovered inventory columns")
}

func selectEnabledRows(rows []parse.ParsedRow) []parse.ParsedRow {
	selected := make([]parse.ParsedRow, 0, len(rows))
	for _, row := range rows {
		if row.Enabled {
			selected = append(selected, row)
		} else {
			log.Debug().Int("id", row.ID).Str("name", row.Name).Msg("Row not usable for this page; skipping")
		}
	}
	return selected
}

// selectBatch narrows the selection to one submission-sized batch. The
// marketplace caps a bulk submission at 100 articles, so larger imports are
// run once per batch, selected with the BATCH environment variable.
func selectBatch(selected []parse.ParsedRow) []parse.ParsedRow {
	batches := batch.Split(len(selected), batch.MaxArticlesPerSubmission)
	if len(batches) <= 1 {
		return selected
	}

	batchNum, err := strconv.Atoi(getEnvWithDefault("BATCH", "1"))
	if err != nil || batchNum < 1 || batchNum > len(batches) {
		log.Fatal().
			Int("batches", len(batches)).
			Msg("BATCH must be a batch number within range")
	}

	for i, r := range batches {
		log.Info().
			Int("batch", i+1).
			Int("start", r.Start).
			Int("end", r.End).
			Bool("selected", i+1 == batchNum).
			Msg("Submission batch")
	}

	r := batches[batchNum-1]
	return selected[r.Start-1 : r.End]
}

func writeFilledPage(p *page.Page) {
	outFile := getEnvWithDefault("OUT_FILE", "filled.html")
	html, err := p.Html()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to render filled page")
	}
	if err := os.WriteFile(outFile, []byte(html), 0o644); err != nil {
		log.Fatal().Err(err).Str("file", outFile).Msg("Failed to write filled page")
	}
	log.Info().Str("file", outFile).Msg("Wrote filled page")
}

func notifyCompletion(ctx context.Context, parsed, enabled, filled int) {
	client := initializeNotificationClient()
	_, err := retry.WithRetry(ctx, config.DefaultResilienceConfig.Notification, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, client.NotifyImportComplete(ctx, parsed, enabled, filled)
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to send completion notification")
	}
}
