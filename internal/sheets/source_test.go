package sheets

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecordsFromRows(t *testing.T) {
	t.Run("HeaderOnly", func(t *testing.T) {
		records := RecordsFromRows([][]string{{"date", "concept"}})
		assert.Empty(t, records)
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, RecordsFromRows(nil))
	})

	t.Run("PadsShortRows", func(t *testing.T) {
		records := RecordsFromRows([][]string{
			{"date", "concept", "amount"},
			{"2026-09-01", "Tuition"},
			{"2026-09-15", "Lab fee", "25"},
		})

		require.Len(t, records, 2)
		assert.Equal(t, "2026-09-01", records[0]["date"])
		assert.Equal(t, "Tuition", records[0]["concept"])
		assert.Equal(t, "", records[0]["amount"])
		assert.Equal(t, "25", records[1]["amount"])
	})
}

func TestHTTPSourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v4/spreadsheets/sheet-1/values/payments!A:Z":
			assert.Equal(t, "test-key", r.URL.Query().Get("key"))
			fmt.Fprint(w, `{"range":"payments!A1:C3","values":[["date","concept"],["2026-09-01","Tuition"]]}`)
		case r.URL.Path == "/v4/spreadsheets/sheet-1/values/nope!A:Z":
			http.Error(w, `{"error":{"code":400}}`, http.StatusBadRequest)
		case r.URL.Path == "/v4/spreadsheets/sheet-1":
			fmt.Fprint(w, `{"properties":{"title":"University Workbook"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	source := NewHTTPSource(Config{
		BaseURL:       server.URL,
		SpreadsheetID: "sheet-1",
		APIKey:        "test-key",
		Timeout:       2 * time.Second,
	}, zap.NewNop())

	t.Run("Fetch", func(t *testing.T) {
		records, err := source.Fetch(context.Background(), "payments")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Tuition", records[0].Get("concept"))
	})

	t.Run("MissingTable", func(t *testing.T) {
		_, err := source.Fetch(context.Background(), "nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status")
	})

	t.Run("Ping", func(t *testing.T) {
		require.NoError(t, source.Ping(context.Background()))
	})

	t.Run("PingUnreachable", func(t *testing.T) {
		bad := NewHTTPSource(Config{
			BaseURL:       "http://127.0.0.1:1",
			SpreadsheetID: "sheet-1",
			APIKey:        "test-key",
			Timeout:       500 * time.Millisecond,
		}, zap.NewNop())
		require.Error(t, bad.Ping(context.Background()))
	})
}
