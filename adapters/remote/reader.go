package remote

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"chdash/domain/subject"
	"chdash/internal/errors"
)

// maxErrorBody caps how much of a failed response is quoted in errors.
const maxErrorBody = 512

// CSVReader fetches a CSV dataset over HTTP(S). A failed fetch is never
// retried.
type CSVReader struct {
	httpClient *http.Client
}

// NewCSVReader creates a reader whose requests time out after timeout
func NewCSVReader(timeout time.Duration) *CSVReader {
	return &CSVReader{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewCSVReaderWithClient uses the given client as-is
func NewCSVReaderWithClient(client *http.Client) *CSVReader {
	return &CSVReader{httpClient: client}
}

// Supports accepts http and https URLs
func (r *CSVReader) Supports(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load downloads the CSV and parses it into subjects
func (r *CSVReader) Load(ctx context.Context, location string) ([]subject.Subject, error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, errors.DataRetrieval(location, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, errors.DataRetrieval(location, fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, errors.DataRetrieval(location, fmt.Errorf("source returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.DataRetrieval(location, fmt.Errorf("malformed CSV: %w", err))
	}
	if len(rows) == 0 {
		return nil, errors.DataRetrieval(location, fmt.Errorf("response has no header row"))
	}
	log.Printf("[CSVReader] Fetched %d rows from %s in %.2fms", len(rows)-1, location, float64(time.Since(startTime).Nanoseconds())/1e6)

	return subject.FromRecords(rows[0], rows[1:])
}
