// Package jobs runs the service's periodic background work.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/roombot/internal/scheduler"
)

// BookingCompleter is the store operation the completion job drives.
type BookingCompleter interface {
	CompleteEndedBookings(ctx context.Context, date scheduler.Date, minute scheduler.ClockTime, at time.Time) (int, error)
}

// CompletionRecorder counts completed bookings.
type CompletionRecorder interface {
	BookingsCompletedAdd(n int)
}

// CompletionJob marks active bookings whose end has passed as completed.
type CompletionJob struct {
	bookings BookingCompleter
	location *time.Location
	now      func() time.Time
	recorder CompletionRecorder
	logger   *slog.Logger
}

// NewCompletionJob builds the job. now and recorder may be nil.
func NewCompletionJob(bookings BookingCompleter, location *time.Location, now func() time.Time, recorder CompletionRecorder, logger *slog.Logger) *CompletionJob {
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CompletionJob{
		bookings: bookings,
		location: location,
		now:      now,
		recorder: recorder,
		logger:   logger.With("job", "complete_ended_bookings"),
	}
}

// Run completes every booking that ended at or before the current local minute.
func (j *CompletionJob) Run(ctx context.Context) (int, error) {
	now := j.now().In(j.location)
	date := scheduler.DateOf(now)
	minute := scheduler.NewClockTime(now.Hour(), now.Minute())

	count, err := j.bookings.CompleteEndedBookings(ctx, date, minute, now.UTC())
	if err != nil {
		j.logger.ErrorContext(ctx, "completion job failed", "error", err)
		return 0, fmt.Errorf("complete ended bookings: %w", err)
	}
	if j.recorder != nil {
		j.recorder.BookingsCompletedAdd(count)
	}
	if count > 0 {
		j.logger.InfoContext(ctx, "bookings completed", "count", count, "cutoff", fmt.Sprintf("%s %s", date, minute))
	} else {
		j.logger.DebugContext(ctx, "no ended bookings")
	}
	return count, nil
}
