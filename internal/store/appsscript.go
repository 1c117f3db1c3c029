package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"luckyDrawAPI/internal/prize"
)

const (
	actionLuckySpin      = "lucky_spin"
	actionGetLeaderboard = "get_leaderboard"
)

// AppsScriptStore forwards claims to a Google Apps Script web app bound to the claims
// sheet. The script scans the sheet and appends in two separate steps, so concurrent
// claims for the same new handle can both be recorded.
type AppsScriptStore struct {
	endpoint string
	client   *http.Client
	loc      *time.Location
}

type luckySpinPayload struct {
	Action    string `json:"action"`
	Instagram string `json:"instagram"`
	Amount    int64  `json:"amount"`
	Timestamp string `json:"timestamp"`
}

// NewAppsScriptStore builds a store for the deployed web app URL. loc is the zone the
// sheet's display dates are written in.
func NewAppsScriptStore(endpoint string, client *http.Client, loc *time.Location) *AppsScriptStore {
	if client == nil {
		client = http.DefaultClient
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AppsScriptStore{endpoint: endpoint, client: client, loc: loc}
}

func (s *AppsScriptStore) actionURL(action string) (string, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: invalid apps script url: %w", ErrNotConfigured, err)
	}
	q := u.Query()
	q.Set("action", action)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *AppsScriptStore) Claim(ctx context.Context, entry prize.Entry) (Result, error) {
	target, err := s.actionURL(actionLuckySpin)
	if err != nil {
		return Result{}, err
	}

	payload, err := json.Marshal(luckySpinPayload{
		Action:    actionLuckySpin,
		Instagram: entry.Handle,
		Amount:    entry.Amount,
		Timestamp: entry.ClaimedAt.UTC().Format(isoMillis),
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode claim: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build claim request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.do(req)
	if err != nil {
		return Result{}, err
	}

	if res.Get("success").Bool() {
		return Result{Entry: entry}, nil
	}

	if res.Get("isDuplicate").Bool() {
		previous := prize.Entry{
			Handle: entry.Handle,
			Amount: res.Get("previousAmount").Int(),
		}
		rawDate := res.Get("previousDate").String()
		if t, ok := ParseClaimTime(rawDate, s.loc); ok {
			previous.ClaimedAt = t
		} else {
			log.Printf("Apps Script: unparseable previousDate %q for %s", rawDate, entry.Handle)
			previous.ClaimedAtRaw = rawDate
		}
		return Result{Entry: previous, Duplicate: true}, nil
	}

	return Result{}, upstreamErr("apps script rejected claim: %s", res.Get("error").String())
}

func (s *AppsScriptStore) Entries(ctx context.Context) ([]prize.Entry, error) {
	target, err := s.actionURL(actionGetLeaderboard)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard request: %w", err)
	}

	res, err := s.do(req)
	if err != nil {
		return nil, err
	}

	if !res.Get("success").Bool() {
		msg := res.Get("message").String()
		if msg == "" {
			msg = res.Get("error").String()
		}
		return nil, upstreamErr("apps script leaderboard failed: %s", msg)
	}

	var entries []prize.Entry
	res.Get("data").ForEach(func(_, row gjson.Result) bool {
		handle := row.Get("handle").String()
		if handle == "" {
			handle = row.Get("instagram").String()
		}
		handle = prize.NormalizeHandle(handle)
		if handle == "" {
			return true
		}
		e := prize.Entry{
			Handle: handle,
			Amount: row.Get("amount").Int(),
		}
		rawDate := row.Get("date").String()
		if t, ok := ParseClaimTime(rawDate, s.loc); ok {
			e.ClaimedAt = t
		} else {
			e.ClaimedAtRaw = rawDate
		}
		entries = append(entries, e)
		return true
	})

	return entries, nil
}

func (s *AppsScriptStore) do(req *http.Request) (gjson.Result, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: read response: %w", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gjson.Result{}, upstreamErr("apps script returned status %d", resp.StatusCode)
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, upstreamErr("apps script returned non-JSON body")
	}

	return gjson.ParseBytes(body), nil
}
