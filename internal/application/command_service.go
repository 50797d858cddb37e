package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/example/roombot/internal/command"
	"github.com/example/roombot/internal/persistence"
	"github.com/example/roombot/internal/policy"
)

// CommandServiceDeps wires the collaborators of a CommandService. Rooms, Bookings and
// Audit are required; everything else has a working default.
type CommandServiceDeps struct {
	Rooms    persistence.RoomRepository
	Bookings persistence.BookingRepository
	Audit    persistence.AuditRepository
	Policy   policy.Policy
	Calendar CalendarSync
	Observer CommandObserver
	// IDGenerator defaults to NewBookingID.
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// CommandService runs chat commands end to end: parse, validate, execute, audit.
type CommandService struct {
	rooms       persistence.RoomRepository
	bookings    persistence.BookingRepository
	audit       persistence.AuditRepository
	parser      *command.Parser
	evaluator   *policy.Evaluator
	calendar    CalendarSync
	observer    CommandObserver
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger

	// writeMu serializes read-check-write sequences of mutating commands.
	writeMu sync.Mutex
}

// maxIDAttempts bounds retries when a generated booking id is already taken.
const maxIDAttempts = 5

// NewCommandService validates deps and constructs the service.
func NewCommandService(deps CommandServiceDeps) (*CommandService, error) {
	if deps.Rooms == nil || deps.Bookings == nil || deps.Audit == nil {
		return nil, fmt.Errorf("command service: rooms, bookings and audit repositories are required")
	}
	if err := deps.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("command service: %w", err)
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}
	idGenerator := deps.IDGenerator
	if idGenerator == nil {
		idGenerator = NewBookingID
	}
	calendar := deps.Calendar
	if calendar == nil {
		calendar = NopCalendar{}
	}
	observer := deps.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	return &CommandService{
		rooms:    deps.Rooms,
		bookings: deps.Bookings,
		audit:    deps.Audit,
		parser: command.NewParser(command.ParserConfig{
			Now:                now,
			Location:           deps.Policy.Location,
			MinDurationMinutes: deps.Policy.MinDurationMinutes,
			MaxDurationMinutes: deps.Policy.MaxDurationMinutes,
		}),
		evaluator:   policy.NewEvaluator(deps.Policy, now),
		calendar:    calendar,
		observer:    observer,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(deps.Logger),
	}, nil
}

func (s *CommandService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CommandService", operation, attrs...)
}

// Handle processes one request and always returns a Result. Every outcome,
// including recovered panics, is written to the audit log before Handle returns.
func (s *CommandService) Handle(ctx context.Context, req Request) (result Result) {
	if s == nil {
		return failure("", genericFailureMessage)
	}

	started := s.now()
	logger := s.loggerWith(ctx, "Handle",
		"requester_id", req.RequesterID,
		"source_addr", req.SourceAddr,
	)

	var (
		kind command.Kind
		err  error
	)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			logger.ErrorContext(ctx, "recovered from panic", "panic", r, "stack", string(debug.Stack()))
			result = failure(kind, genericFailureMessage)
		}
		s.finish(ctx, logger, req, kind, result, err, s.now().Sub(started))
	}()

	var cmd command.Command
	cmd, err = s.parser.Parse(req.Text)
	if err != nil {
		result = failure("", UserMessage(err))
		return
	}
	kind = cmd.Kind()

	result, err = s.execute(ctx, req, cmd)
	if err != nil {
		result = failure(kind, UserMessage(err))
	}
	return
}

func (s *CommandService) execute(ctx context.Context, req Request, cmd command.Command) (Result, error) {
	switch c := cmd.(type) {
	case command.Help:
		return info(command.KindHelp, helpMessage(), nil), nil
	case command.Status:
		return s.status(ctx, c)
	case command.ListRooms:
		return s.listRooms(ctx)
	case command.ListBookings:
		return s.listBookings(ctx, c)
	case command.My:
		return s.myBookings(ctx, req, c)
	case command.Book:
		return s.book(ctx, req, c)
	case command.Cancel:
		return s.cancel(ctx, req, c)
	case command.Move:
		return s.move(ctx, req, c)
	case command.Extend:
		return s.extend(ctx, req, c)
	default:
		return Result{}, fmt.Errorf("unsupported command %T", cmd)
	}
}

// finish logs, audits and observes a terminal outcome. Audit failures are logged
// and never change the result.
func (s *CommandService) finish(ctx context.Context, logger *slog.Logger, req Request, kind command.Kind, result Result, err error, elapsed time.Duration) {
	label := string(kind)
	if label == "" {
		label = "unknown"
	}
	outcome := "success"
	if err != nil {
		outcome = ErrorKind(err)
	}

	logger = logger.With("command_kind", label, "elapsed_ms", elapsed.Milliseconds())
	switch {
	case err == nil:
		logger.InfoContext(ctx, "command handled")
	case outcome == "store_failure":
		logger.ErrorContext(ctx, "command failed", "error", err, "error_kind", outcome)
	default:
		logger.WarnContext(ctx, "command rejected", "error", err, "error_kind", outcome)
	}

	entry := persistence.AuditEntry{
		RequesterName: req.RequesterName,
		RequesterID:   req.RequesterID,
		RawText:       req.Text,
		CommandKind:   label,
		Success:       result.Success,
		Response:      result.Message,
		SourceAddr:    req.SourceAddr,
		ElapsedMS:     elapsed.Milliseconds(),
		CreatedAt:     s.now(),
	}
	if err != nil {
		entry.ErrorDetail = err.Error()
	}
	if auditErr := s.audit.AppendAudit(context.WithoutCancel(ctx), entry); auditErr != nil {
		logger.ErrorContext(ctx, "failed to append audit entry", "error", auditErr)
	}

	s.observer.ObserveCommand(label, outcome, elapsed.Seconds())
}

func success(kind command.Kind, message string, data any) Result {
	return Result{Success: true, Kind: kind, Message: message, Color: ColorSuccess, Data: data}
}

func info(kind command.Kind, message string, data any) Result {
	return Result{Success: true, Kind: kind, Message: message, Color: ColorInfo, Data: data}
}

func failure(kind command.Kind, message string) Result {
	return Result{Success: false, Kind: kind, Message: message, Color: ColorFailure}
}

func mapBookingRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrConflict):
		return ErrConflict
	case errors.Is(err, persistence.ErrInvalidTransition):
		return ErrInvalidState
	}
	return err
}
