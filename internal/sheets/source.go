package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/t77yq/campus-bot/internal/model"
)

const (
	defaultBaseURL = "https://sheets.googleapis.com"
	defaultTimeout = 15 * time.Second

	// Every table is read in full; columns beyond Z are not used.
	valueRange = "A:Z"
)

// Source answers "fetch all rows of the named table" against the remote
// spreadsheet. A transport error or a missing table is reported as an
// error, distinct from a table that exists but has no rows.
type Source interface {
	Fetch(ctx context.Context, table string) ([]model.Record, error)
	Ping(ctx context.Context) error
}

// Config defines connection settings for the spreadsheet API.
type Config struct {
	BaseURL       string
	SpreadsheetID string
	APIKey        string
	Timeout       time.Duration
}

// HTTPSource reads tables from the Google Sheets v4 values endpoint.
type HTTPSource struct {
	logger *zap.Logger
	config Config
	client *http.Client
}

// NewHTTPSource creates a new spreadsheet-backed source.
func NewHTTPSource(config Config, logger *zap.Logger) *HTTPSource {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	return &HTTPSource{
		logger: logger.Named("sheets"),
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// valuesResponse mirrors the values.get response body.
type valuesResponse struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

// metadataResponse carries the spreadsheet title used by Ping.
type metadataResponse struct {
	Properties struct {
		Title string `json:"title"`
	} `json:"properties"`
}

// Fetch retrieves all rows of a table. The first row is treated as the
// header; remaining rows become Records keyed by header name.
func (s *HTTPSource) Fetch(ctx context.Context, table string) ([]model.Record, error) {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?key=%s",
		s.config.BaseURL,
		url.PathEscape(s.config.SpreadsheetID),
		url.PathEscape(fmt.Sprintf("%s!%s", table, valueRange)),
		url.QueryEscape(s.config.APIKey))

	var body valuesResponse
	if err := s.getJSON(ctx, endpoint, &body); err != nil {
		return nil, fmt.Errorf("fetch table %s: %w", table, err)
	}

	records := RecordsFromRows(body.Values)
	s.logger.Info("Fetched table",
		zap.String("table", table),
		zap.Int("records", len(records)))

	return records, nil
}

// Ping verifies the spreadsheet is reachable by requesting its metadata.
func (s *HTTPSource) Ping(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s?fields=properties.title&key=%s",
		s.config.BaseURL,
		url.PathEscape(s.config.SpreadsheetID),
		url.QueryEscape(s.config.APIKey))

	var body metadataResponse
	if err := s.getJSON(ctx, endpoint, &body); err != nil {
		return fmt.Errorf("ping spreadsheet: %w", err)
	}

	s.logger.Debug("Spreadsheet reachable",
		zap.String("title", body.Properties.Title))
	return nil
}

func (s *HTTPSource) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// RecordsFromRows converts raw sheet rows into Records. The first row
// defines the columns; short rows are padded with empty strings.
func RecordsFromRows(rows [][]string) []model.Record {
	if len(rows) < 2 {
		return nil
	}

	headers := rows[0]
	records := make([]model.Record, 0, len(rows)-1)

	for _, row := range rows[1:] {
		record := make(model.Record, len(headers))
		for i, header := range headers {
			if i < len(row) {
				record[header] = row[i]
			} else {
				record[header] = ""
			}
		}
		records = append(records, record)
	}

	return records
}
