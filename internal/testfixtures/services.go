package testfixtures

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/example/roombot/internal/application"
	"github.com/example/roombot/internal/persistence"
	"github.com/example/roombot/internal/persistence/memory"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("BK"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("BK")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// NewCommandService builds a command service, filling clock, ids and policy from
// the factory when deps leaves them unset. Construction errors fail the test.
func (f *ServiceFactory) NewCommandService(tb testing.TB, deps application.CommandServiceDeps) *application.CommandService {
	tb.Helper()

	if deps.IDGenerator == nil {
		deps.IDGenerator = f.IDGenerator.NextFunc()
	}
	if deps.Now == nil {
		deps.Now = f.Clock.NowFunc()
	}
	if deps.Policy.Location == nil {
		deps.Policy = Policy()
	}

	svc, err := application.NewCommandService(deps)
	if err != nil {
		tb.Fatalf("failed to build command service: %v", err)
	}
	return svc
}

// RoomServiceDeps captures dependencies for constructing a room service.
type RoomServiceDeps struct {
	Rooms       persistence.RoomRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewRoomService builds a room service using the supplied dependencies.
func (f *ServiceFactory) NewRoomService(deps RoomServiceDeps) *application.RoomService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewRoomServiceWithLogger(
		deps.Rooms,
		idGen,
		now,
		deps.Logger,
	)
}

// CommandHarness is a command service over an in-memory store seeded with rooms.
type CommandHarness struct {
	Factory *ServiceFactory
	Store   *memory.Storage
	Service *application.CommandService
	Rooms   []persistence.Room
}

// NewCommandHarness seeds rooms A, B and C (capacities 4, 8 and 12) into a fresh
// memory store and wires a command service over it. deps may carry a calendar,
// observer or policy; its repositories are replaced by the store.
func NewCommandHarness(tb testing.TB, deps application.CommandServiceDeps, opts ...ServiceFactoryOption) *CommandHarness {
	tb.Helper()

	factory := NewServiceFactory(opts...)
	store := memory.New()

	var rooms []persistence.Room
	for i, code := range []string{"A", "B", "C"} {
		room := NewRoomFixture(
			WithRoomID("room-"+code),
			WithRoomCode(code),
			WithRoomName("회의실 "+code),
			WithRoomCapacity(4*(i+1)),
		).Persistence()
		if err := store.CreateRoom(context.Background(), room); err != nil {
			tb.Fatalf("failed to seed room %s: %v", code, err)
		}
		rooms = append(rooms, room)
	}

	deps.Rooms = store
	deps.Bookings = store
	deps.Audit = store

	return &CommandHarness{
		Factory: factory,
		Store:   store,
		Service: factory.NewCommandService(tb, deps),
		Rooms:   rooms,
	}
}

// Handle runs text as the given requester.
func (h *CommandHarness) Handle(requesterID, text string) application.Result {
	return h.Service.Handle(context.Background(), application.Request{
		RequesterName: requesterID,
		RequesterID:   requesterID,
		Text:          text,
		SourceAddr:    "127.0.0.1",
	})
}
