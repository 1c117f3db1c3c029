package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"luckyDrawAPI/internal/prize"
	"luckyDrawAPI/internal/store"
)

const (
	msgConfigError = "Server configuration error"
	msgRetry       = "Something went wrong, please try again"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithStoreError maps a failed store call to the client envelope. Details stay
// in the log.
func respondWithStoreError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, store.ErrNotConfigured) {
		log.Errorf("%s: %v", op, err)
		respondWithError(w, http.StatusInternalServerError, msgConfigError)
		return
	}
	log.Errorf("%s: %v", op, err)
	respondWithError(w, http.StatusInternalServerError, msgRetry)
}

// formatDate renders claim times the way the claims sheet displays them. Dates the
// store could not parse are passed through as-is.
func formatDate(e prize.Entry, loc *time.Location) string {
	if e.ClaimedAt.IsZero() {
		return e.ClaimedAtRaw
	}
	return e.ClaimedAt.In(loc).Format(store.SheetDateLayout)
}
