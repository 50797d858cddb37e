package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/roombot/internal/persistence"
)

const (
	opCreate = "create"
	opUpdate = "update"
	opCancel = "cancel"

	defaultQueueSize = 64
	callTimeout      = 30 * time.Second
)

// ErrDispatcherClosed is returned by Close when called twice.
var ErrDispatcherClosed = errors.New("calendar: dispatcher closed")

// EventClient is the calendar API the dispatcher drives.
type EventClient interface {
	CreateEvent(ctx context.Context, calendarID string, event Event) (string, error)
	PatchEvent(ctx context.Context, calendarID, eventID string, event Event) error
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// EventIDStore persists the calendar event id of a booking.
type EventIDStore interface {
	GetBooking(ctx context.Context, id string) (persistence.Booking, error)
	SetExternalEventID(ctx context.Context, id, eventID string) error
}

// FailureRecorder counts failed sync operations by op.
type FailureRecorder interface {
	CalendarSyncFailed(op string)
}

type task struct {
	op      string
	room    persistence.Room
	booking persistence.Booking
}

// Dispatcher forwards booking notifications to the calendar on a single worker
// goroutine, so operations on one booking apply in the order they were committed.
// Failures are logged and counted, never returned to the caller.
type Dispatcher struct {
	client   EventClient
	store    EventIDStore
	location *time.Location
	recorder FailureRecorder
	logger   *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan task
	done   chan struct{}
}

// DispatcherConfig wires a Dispatcher.
type DispatcherConfig struct {
	Client    EventClient
	Store     EventIDStore
	Location  *time.Location
	Recorder  FailureRecorder
	Logger    *slog.Logger
	QueueSize int
}

// NewDispatcher starts the worker. Call Close to drain it.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if cfg.Client == nil {
		return nil, errors.New("calendar: client is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("calendar: event id store is required")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}

	d := &Dispatcher{
		client:   cfg.Client,
		store:    cfg.Store,
		location: cfg.Location,
		recorder: cfg.Recorder,
		logger:   cfg.Logger.With("component", "calendar"),
		queue:    make(chan task, cfg.QueueSize),
		done:     make(chan struct{}),
	}
	go d.run()
	return d, nil
}

func (d *Dispatcher) BookingCreated(ctx context.Context, room persistence.Room, booking persistence.Booking) {
	d.enqueue(ctx, task{op: opCreate, room: room, booking: booking})
}

func (d *Dispatcher) BookingUpdated(ctx context.Context, room persistence.Room, booking persistence.Booking) {
	d.enqueue(ctx, task{op: opUpdate, room: room, booking: booking})
}

func (d *Dispatcher) BookingCancelled(ctx context.Context, room persistence.Room, booking persistence.Booking) {
	d.enqueue(ctx, task{op: opCancel, room: room, booking: booking})
}

// Close stops accepting notifications and waits until queued ones are processed
// or ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("calendar: drain queue: %w", ctx.Err())
	}
}

func (d *Dispatcher) enqueue(ctx context.Context, t task) {
	if t.room.CalendarID == "" {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	logger := d.logger.With("op", t.op, "booking_id", t.booking.ID)
	if d.closed {
		logger.WarnContext(ctx, "calendar dispatcher closed, dropping notification")
		d.failed(t.op)
		return
	}
	select {
	case d.queue <- t:
	default:
		logger.WarnContext(ctx, "calendar queue full, dropping notification")
		d.failed(t.op)
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for t := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		if err := d.process(ctx, t); err != nil {
			d.logger.Warn("calendar sync failed",
				"op", t.op,
				"booking_id", t.booking.ID,
				"calendar_id", t.room.CalendarID,
				"error", err,
			)
			d.failed(t.op)
		}
		cancel()
	}
}

func (d *Dispatcher) process(ctx context.Context, t task) error {
	switch t.op {
	case opCreate:
		eventID, err := d.client.CreateEvent(ctx, t.room.CalendarID, d.event(t.room, t.booking))
		if err != nil {
			return err
		}
		if err := d.store.SetExternalEventID(ctx, t.booking.ID, eventID); err != nil {
			return fmt.Errorf("store event id: %w", err)
		}
		d.logger.Debug("calendar event created", "booking_id", t.booking.ID, "event_id", eventID)
		return nil
	case opUpdate, opCancel:
		eventID, err := d.eventID(ctx, t.booking)
		if err != nil {
			return err
		}
		if eventID == "" {
			d.logger.Debug("booking has no calendar event", "op", t.op, "booking_id", t.booking.ID)
			return nil
		}
		if t.op == opUpdate {
			return d.client.PatchEvent(ctx, t.room.CalendarID, eventID, d.event(t.room, t.booking))
		}
		return d.client.DeleteEvent(ctx, t.room.CalendarID, eventID)
	}
	return fmt.Errorf("unknown op %q", t.op)
}

// eventID prefers the id carried by the notification and falls back to the store,
// which holds ids written by create tasks processed after the notification was built.
func (d *Dispatcher) eventID(ctx context.Context, booking persistence.Booking) (string, error) {
	if booking.ExternalEventID != "" {
		return booking.ExternalEventID, nil
	}
	stored, err := d.store.GetBooking(ctx, booking.ID)
	if err != nil {
		return "", fmt.Errorf("load booking: %w", err)
	}
	return stored.ExternalEventID, nil
}

func (d *Dispatcher) event(room persistence.Room, booking persistence.Booking) Event {
	zone := d.location.String()
	event := Event{
		Summary:     fmt.Sprintf("[%s] %s", room.Code, booking.Title),
		Description: fmt.Sprintf("예약번호 %s\n예약자 %s", booking.ID, booking.RequesterName),
		Location:    room.Name,
		Start: EventTime{
			DateTime: booking.Date.At(booking.Start, d.location).Format(time.RFC3339),
			TimeZone: zone,
		},
		End: EventTime{
			DateTime: booking.Date.At(booking.End, d.location).Format(time.RFC3339),
			TimeZone: zone,
		},
	}
	if room.Location != "" {
		event.Location = room.Name + " (" + room.Location + ")"
	}
	if room.ResourceEmail != "" {
		event.Attendees = []Attendee{{Email: room.ResourceEmail, Resource: true}}
	}
	return event
}

func (d *Dispatcher) failed(op string) {
	if d.recorder != nil {
		d.recorder.CalendarSyncFailed(op)
	}
}
