package cps

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// NewCircuitBreakerConfig returns a function that creates circuit breakers for servers.
// This is a helper for common use cases.
//
// The breaker trips once at least 3 requests were seen in the interval and
// 60% of them failed. Requests rejected client-side (encoding errors) and
// cancelled by the caller do not count as failures.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(string) *gobreaker.CircuitBreaker[*Response] {
	return func(serverAddr string) *gobreaker.CircuitBreaker[*Response] {
		settings := gobreaker.Settings{
			Name:        serverAddr,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
			IsSuccessful: isBreakerSuccess,
		}
		return gobreaker.NewCircuitBreaker[*Response](settings)
	}
}

func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var encErr *EncodeError
	return errors.As(err, &encErr) || errors.Is(err, context.Canceled)
}

// isBreakerRejection reports whether err comes from the breaker itself
// rather than from the request.
func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
