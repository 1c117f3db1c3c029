package prize

type DrawRequest struct {
	Handle    string `json:"handle"`
	Instagram string `json:"instagram,omitempty"`
}

// RawHandle prefers the current field name and falls back to the widget's legacy one.
func (r DrawRequest) RawHandle() string {
	if r.Handle != "" {
		return r.Handle
	}
	return r.Instagram
}

type DrawResponse struct {
	Success     bool   `json:"success"`
	IsDuplicate bool   `json:"isDuplicate"`
	Handle      string `json:"handle"`
	Amount      int64  `json:"amount"`
	Message     string `json:"message"`
}

type DuplicateResponse struct {
	Success        bool   `json:"success"`
	IsDuplicate    bool   `json:"isDuplicate"`
	Message        string `json:"message"`
	PreviousAmount int64  `json:"previousAmount"`
	PreviousDate   string `json:"previousDate"`
}

type LeaderboardRow struct {
	Handle string `json:"handle"`
	Amount int64  `json:"amount"`
	Date   string `json:"date"`
}

type LeaderboardResponse struct {
	Success bool             `json:"success"`
	Data    []LeaderboardRow `json:"data"`
}

type TierOdds struct {
	Amount      int64   `json:"amount"`
	Weight      int     `json:"weight"`
	Probability float64 `json:"probability"`
}

type PrizesResponse struct {
	Success bool       `json:"success"`
	Tiers   []TierOdds `json:"tiers"`
}
