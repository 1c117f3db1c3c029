package services

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeWon       = "won"
	outcomeDuplicate = "duplicate"
	outcomeRejected  = "rejected"
	outcomeError     = "error"
)

var (
	claimsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lucky_draw_claims_total",
			Help: "Claims by outcome",
		},
		[]string{"outcome"},
	)
	prizeAmountTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lucky_draw_prize_amount_total",
			Help: "Prizes awarded, by amount",
		},
		[]string{"amount"},
	)
)

// Collectors lists the service metrics for registration in main.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{claimsTotal, prizeAmountTotal}
}
