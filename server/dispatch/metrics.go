package dispatch

import "github.com/prometheus/client_golang/prometheus"

var resultsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "herald_dispatch_results_total",
		Help: "Per-recipient delivery outcomes by channel and status",
	},
	[]string{"channel", "status"},
)

func init() {
	prometheus.MustRegister(resultsTotal)
}

// Observe counts a batch's results into the channel's metrics and
// returns the tally for the response payload.
func Observe(channel string, results []Result) Tally {
	for _, result := range results {
		resultsTotal.WithLabelValues(channel, string(result.Status)).Inc()
	}

	return Count(results)
}
