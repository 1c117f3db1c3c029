package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// fakeSheet serves the spreadsheet metadata and the two Values endpoints the store uses.
type fakeSheet struct {
	mu       sync.Mutex
	values   [][]interface{}
	timeZone string
	appends  int
	metaGets int
	fail     bool
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":500,"message":"backend error"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		if r.URL.Query().Get("valueInputOption") != "RAW" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var body struct {
			Values [][]interface{} `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.appends++
		f.values = append(f.values, body.Values...)
		json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sid"})
	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/v4/spreadsheets/sid/values/"):
		if r.URL.Query().Get("dateTimeRenderOption") != "SERIAL_NUMBER" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"range": "Sheet1!A1:D", "majorDimension": "ROWS", "values": f.values})
	case r.Method == http.MethodGet && r.URL.Path == "/v4/spreadsheets/sid":
		f.metaGets++
		tz := f.timeZone
		if tz == "" {
			tz = "Asia/Ho_Chi_Minh"
		}
		json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sid", "properties": map[string]any{"timeZone": tz}})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newSheetsStore(t *testing.T, f *fakeSheet) *SheetsStore {
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	s, err := NewSheetsStore(context.Background(), "sid", "Sheet1", time.FixedZone("ICT", 7*3600),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return s
}

func TestSheetsClaimWritesHeaderThenRow(t *testing.T) {
	ctx := context.Background()
	f := &fakeSheet{}
	s := newSheetsStore(t, f)

	entry := newEntry("alice", 50000)
	res, err := s.Claim(ctx, entry)
	require.NoError(t, err)
	assert.False(t, res.Duplicate)

	require.Len(t, f.values, 2)
	assert.Equal(t, "Timestamp", f.values[0][0])
	assert.Equal(t, "alice", f.values[1][1])
	assert.Equal(t, float64(50000), f.values[1][2])
	assert.Equal(t, "28/01/2025 16:30:00", f.values[1][3])
}

func TestSheetsClaimDetectsDuplicate(t *testing.T) {
	ctx := context.Background()
	f := &fakeSheet{values: [][]interface{}{
		sheetHeader,
		{"2025-01-28T09:30:00.000Z", "Alice", float64(150000), "28/01/2025 16:30:00"},
	}}
	s := newSheetsStore(t, f)

	res, err := s.Claim(ctx, newEntry("alice", 500000))
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, int64(150000), res.Entry.Amount)
	assert.True(t, res.Entry.ClaimedAt.Equal(time.Date(2025, 1, 28, 9, 30, 0, 0, time.UTC)))
	assert.Equal(t, 0, f.appends)
}

func TestSheetsEntriesSkipsHeaderAndBlankRows(t *testing.T) {
	f := &fakeSheet{values: [][]interface{}{
		sheetHeader,
		{"2025-01-28T09:30:00.000Z", "bob", float64(50000), ""},
		{},
		{"", "carol", "200000", "28/01/2025 17:00:00"},
	}}
	s := newSheetsStore(t, f)

	entries, err := s.Entries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "bob", entries[0].Handle)
	assert.Equal(t, int64(200000), entries[1].Amount)
	assert.True(t, entries[1].ClaimedAt.Equal(time.Date(2025, 1, 28, 10, 0, 0, 0, time.UTC)))
}

func TestSheetsUpstreamFailure(t *testing.T) {
	s := newSheetsStore(t, &fakeSheet{fail: true})

	_, err := s.Claim(context.Background(), newEntry("x", 1))
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = s.Entries(context.Background())
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestSheetsEntriesReadSerialDatesInSheetZone(t *testing.T) {
	// 45685 + 9.5/24 is 28/01/2025 09:30 on the sheet's wall clock
	serial := 45685 + 9.5/24
	f := &fakeSheet{
		timeZone: "Europe/London",
		values: [][]interface{}{
			sheetHeader,
			{serial, "dave", float64(100000), ""},
			{"", "erin", float64(20000), serial},
		},
	}
	s := newSheetsStore(t, f)

	entries, err := s.Entries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	want := time.Date(2025, 1, 28, 9, 30, 0, 0, time.UTC)
	assert.True(t, entries[0].ClaimedAt.Equal(want), entries[0].ClaimedAt.String())
	assert.True(t, entries[1].ClaimedAt.Equal(want), entries[1].ClaimedAt.String())

	_, err = s.Entries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.metaGets)
}

func TestSheetsDuplicateSerialDateInDefaultZone(t *testing.T) {
	f := &fakeSheet{values: [][]interface{}{
		{45685 + 9.5/24, "alice", float64(150000), "28/01/2025 09:30:00"},
	}}
	s := newSheetsStore(t, f)

	res, err := s.Claim(context.Background(), newEntry("alice", 1))
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.True(t, res.Entry.ClaimedAt.Equal(time.Date(2025, 1, 28, 2, 30, 0, 0, time.UTC)))
}
