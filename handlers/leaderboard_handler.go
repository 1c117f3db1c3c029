package handlers

import (
	"context"
	"net/http"
	"time"

	"luckyDrawAPI/internal/prize"
	"luckyDrawAPI/services"
)

type LeaderboardHandler struct {
	leaderboardService *services.LeaderboardService
	loc                *time.Location
	timeout            time.Duration
}

func NewLeaderboardHandler(leaderboardService *services.LeaderboardService, loc *time.Location, timeout time.Duration) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
		loc:                loc,
		timeout:            timeout,
	}
}

func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	entries, err := h.leaderboardService.Top(ctx)
	if err != nil {
		respondWithStoreError(w, "GetLeaderboard", err)
		return
	}

	rows := make([]prize.LeaderboardRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, prize.LeaderboardRow{
			Handle: e.Handle,
			Amount: e.Amount,
			Date:   formatDate(e, h.loc),
		})
	}

	respondWithJSON(w, http.StatusOK, prize.LeaderboardResponse{Success: true, Data: rows})
}
