// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package refresh

import (
	"context"
	"time"

	"github.com/tomtom215/proscenium/internal/logging"
)

// Notifier receives a completed invocation's summary. The websocket hub
// satisfies it; a nil notifier disables notifications.
type Notifier interface {
	NotifyRefreshCompleted(result *Result)
}

// LoopService drives the scheduler on an internal ticker for deployments
// without an external cron caller. Off by default; the external trigger
// endpoint is the primary invocation path.
//
// Implements suture.Service: it runs until its context is canceled and is
// restarted by the supervisor on panic or unexpected return.
type LoopService struct {
	scheduler *Scheduler
	interval  time.Duration
	notifier  Notifier
}

// NewLoopService creates the internal refresh loop.
func NewLoopService(scheduler *Scheduler, interval time.Duration, notifier Notifier) *LoopService {
	return &LoopService{scheduler: scheduler, interval: interval, notifier: notifier}
}

// Serve implements suture.Service. Each tick performs one scheduling pass;
// an evaluator failure is logged and the loop keeps going, since the next
// tick retries from scratch.
func (s *LoopService) Serve(ctx context.Context) error {
	logging.Info().Dur("interval", s.interval).Msg("Internal refresh loop started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Internal refresh loop stopping")
			return ctx.Err()
		case <-ticker.C:
			result, err := s.scheduler.RunOnce(ctx)
			if err != nil {
				logging.Error().Err(err).Msg("Scheduled refresh pass failed")
				continue
			}

			if result.Processed != "" {
				logging.Info().
					Str("update_id", result.UpdateID).
					Str("processed", result.Processed).
					Str("next", result.NextKey).
					Dur("elapsed", result.Elapsed).
					Int("errors", len(result.Errors)).
					Msg("Scheduled refresh pass completed")

				if s.notifier != nil {
					s.notifier.NotifyRefreshCompleted(result)
				}
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *LoopService) String() string {
	return "refresh-loop"
}
