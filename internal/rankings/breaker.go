// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package rankings

import (
	"context"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/proscenium/internal/logging"
	"github.com/tomtom215/proscenium/internal/metrics"
)

// BreakerClient wraps the rankings Source with a circuit breaker so a
// misbehaving rankings API stops consuming invocation budget quickly
// instead of timing out on every refresh attempt.
//
// The breaker uses real time (via sony/gobreaker) for its interval and
// timeout calculations. Tests should mock the underlying Source, not the
// breaker.
type BreakerClient struct {
	source Source
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewBreakerClient wraps source with circuit breaker protection.
// Configuration:
// - Max 1 trial request in half-open state (calls are serial anyway)
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 3 consecutive failures
func NewBreakerClient(source Source) *BreakerClient {
	cbName := "rankings-api"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		// The scheduler makes at most a handful of rankings calls per
		// invocation, so a consecutive-failure trip is quicker to react
		// than a ratio over a statistically significant sample.
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &BreakerClient{source: source, cb: cb, name: cbName}
}

// QuickOverall fetches the cross-provider top lists with breaker protection.
func (b *BreakerClient) QuickOverall(ctx context.Context) (*QuickOverall, error) {
	return castResult[QuickOverall](b.cb.Execute(func() (interface{}, error) {
		return b.source.QuickOverall(ctx)
	}))
}

// CalendarOverall fetches the release calendar with breaker protection.
func (b *BreakerClient) CalendarOverall(ctx context.Context) ([]CalendarEntry, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.source.CalendarOverall(ctx)
	})
	if err != nil {
		return nil, err
	}
	entries, ok := result.([]CalendarEntry)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return entries, nil
}

// castResult safely type-casts the circuit breaker result with error checking.
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
