package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"luckyDrawAPI/internal/prize"
	"luckyDrawAPI/services"
)

const maxDrawBody = 4 << 10

type DrawHandler struct {
	claimService *services.ClaimService
	prizes       prize.Table
	loc          *time.Location
	timeout      time.Duration
}

func NewDrawHandler(claimService *services.ClaimService, prizes prize.Table, loc *time.Location, timeout time.Duration) *DrawHandler {
	return &DrawHandler{
		claimService: claimService,
		prizes:       prizes,
		loc:          loc,
		timeout:      timeout,
	}
}

// Draw answers as soon as the claim is recorded; wheel animation timing is the widget's job.
func (h *DrawHandler) Draw(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req prize.DrawRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDrawBody)).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.claimService.Claim(ctx, req.RawHandle())
	if errors.Is(err, services.ErrEmptyHandle) {
		respondWithError(w, http.StatusBadRequest, "Please enter your handle")
		return
	}
	if err != nil {
		respondWithStoreError(w, "Draw", err)
		return
	}

	if result.Duplicate {
		respondWithJSON(w, http.StatusOK, prize.DuplicateResponse{
			Success:        false,
			IsDuplicate:    true,
			Message:        fmt.Sprintf("@%s has already drawn a lucky envelope!", result.Entry.Handle),
			PreviousAmount: result.Entry.Amount,
			PreviousDate:   formatDate(result.Entry, h.loc),
		})
		return
	}

	respondWithJSON(w, http.StatusOK, prize.DrawResponse{
		Success:     true,
		IsDuplicate: false,
		Handle:      result.Entry.Handle,
		Amount:      result.Entry.Amount,
		Message:     "Congratulations, you received a lucky envelope!",
	})
}

func (h *DrawHandler) GetPrizes(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, prize.PrizesResponse{
		Success: true,
		Tiers:   h.prizes.Odds(),
	})
}
