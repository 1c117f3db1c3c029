package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"luckyDrawAPI/internal/prize"
)

// SheetsStore reads and appends the claims sheet through the Sheets API directly,
// using the same column layout as the Apps Script deployment. The duplicate scan and
// the append are separate API calls and are not atomic.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
	sheet         string
	loc           *time.Location

	mu       sync.Mutex
	sheetLoc *time.Location
}

// NewSheetsStore connects to the spreadsheet. opts carry credentials (or an endpoint
// override in tests).
func NewSheetsStore(ctx context.Context, spreadsheetID, sheetName string, loc *time.Location, opts ...option.ClientOption) (*SheetsStore, error) {
	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SheetsStore{svc: svc, spreadsheetID: spreadsheetID, sheet: sheetName, loc: loc}, nil
}

func (s *SheetsStore) columns() string {
	return s.sheet + "!A:D"
}

// sheetZone returns the spreadsheet's own time zone, which serial date cells are
// relative to. It is fetched once; until a fetch succeeds the display zone is used.
func (s *SheetsStore) sheetZone(ctx context.Context) *time.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sheetLoc != nil {
		return s.sheetLoc
	}

	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("properties.timeZone").Context(ctx).Do()
	if err != nil {
		log.Printf("Sheets: failed to read spreadsheet time zone, using %s: %v", s.loc, err)
		return s.loc
	}
	loc := s.loc
	if meta.Properties != nil && meta.Properties.TimeZone != "" {
		if l, err := time.LoadLocation(meta.Properties.TimeZone); err == nil {
			loc = l
		} else {
			log.Printf("Sheets: unknown spreadsheet time zone %q: %v", meta.Properties.TimeZone, err)
		}
	}
	s.sheetLoc = loc
	return loc
}

func (s *SheetsStore) rows(ctx context.Context) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.columns()).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet: %w", ErrUpstream, err)
	}
	return resp.Values, nil
}

func (s *SheetsStore) parseRow(row []interface{}, sheetLoc *time.Location) (prize.Entry, bool) {
	handle := prize.NormalizeHandle(cellString(row, 1))
	if handle == "" {
		return prize.Entry{}, false
	}

	e := prize.Entry{Handle: handle}
	if len(row) > 2 {
		amount, err := cellInt(row[2])
		if err != nil {
			log.Printf("Sheets: skipping amount for %s: %v", handle, err)
		}
		e.Amount = amount
	}

	if t, ok := cellTime(row, 0, sheetLoc, s.loc); ok {
		e.ClaimedAt = t
	} else if t, ok := cellTime(row, 3, sheetLoc, s.loc); ok {
		e.ClaimedAt = t
	} else {
		e.ClaimedAtRaw = cellString(row, 3)
	}
	return e, true
}

func isHeader(row []interface{}) bool {
	return strings.EqualFold(cellString(row, 0), "timestamp")
}

func (s *SheetsStore) Claim(ctx context.Context, entry prize.Entry) (Result, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return Result{}, err
	}

	sheetLoc := s.sheetZone(ctx)
	for _, row := range rows {
		if isHeader(row) {
			continue
		}
		existing, ok := s.parseRow(row, sheetLoc)
		if ok && existing.Handle == entry.Handle {
			return Result{Entry: existing, Duplicate: true}, nil
		}
	}

	var values [][]interface{}
	if len(rows) == 0 {
		values = append(values, sheetHeader)
	}
	values = append(values, []interface{}{
		entry.ClaimedAt.UTC().Format(isoMillis),
		entry.Handle,
		entry.Amount,
		entry.ClaimedAt.In(s.loc).Format(SheetDateLayout),
	})

	_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.columns(), &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return Result{}, fmt.Errorf("%w: append row: %w", ErrUpstream, err)
	}

	return Result{Entry: entry}, nil
}

func (s *SheetsStore) Entries(ctx context.Context) ([]prize.Entry, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}

	sheetLoc := s.sheetZone(ctx)
	entries := make([]prize.Entry, 0, len(rows))
	for _, row := range rows {
		if isHeader(row) {
			continue
		}
		if e, ok := s.parseRow(row, sheetLoc); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}
