package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// CreateCircuitBreaker trips after at least three calls with a 60% failure
// ratio and retries after timeout.
func CreateCircuitBreaker(name string, timeout time.Duration) *gobreaker.CircuitBreaker[[]byte] {
	var st gobreaker.Settings
	st.Name = name
	st.Timeout = timeout
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= 3 && failureRatio >= 0.6
	}

	cb := gobreaker.NewCircuitBreaker[[]byte](st)

	return cb
}
