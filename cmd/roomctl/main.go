// roomctl runs one booking command against a local store and prints the reply.
//
//	roomctl --requester-id alice@example.com --requester-name Alice --db roombot.db -- book A tomorrow 10:00 60 주간회의
//	roomctl --memory --seed rooms.yaml --requester-id bob -- 현황 today
//	roomctl --hash-key < admin.key
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/example/roombot/internal/application"
	"github.com/example/roombot/internal/config"
	"github.com/example/roombot/internal/logging"
	"github.com/example/roombot/internal/persistence"
	"github.com/example/roombot/internal/persistence/memory"
	"github.com/example/roombot/internal/persistence/sqlite"
	"github.com/example/roombot/internal/policy"
)

const cliSourceAddr = "cli"

type store interface {
	persistence.RoomRepository
	persistence.BookingRepository
	persistence.AuditRepository
	Close() error
}

type options struct {
	requesterID   string
	requesterName string
	dbPath        string
	inMemory      bool
	asJSON        bool
	seedFile      string
	timezone      string
	hashKey       bool
	logLevel      string
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	flagSet := pflag.NewFlagSet("roomctl", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&opts.requesterID, "requester-id", "", "stable requester identity used for ownership checks")
	flagSet.StringVar(&opts.requesterName, "requester-name", "", "display name of the requester (default: requester id)")
	flagSet.StringVar(&opts.dbPath, "db", "roombot.db", "SQLite database path")
	flagSet.BoolVar(&opts.inMemory, "memory", false, "use a throwaway in-memory store instead of --db")
	flagSet.BoolVar(&opts.asJSON, "json", false, "print the full result as JSON")
	flagSet.StringVar(&opts.seedFile, "seed", "", "YAML room seed file applied before the command")
	flagSet.StringVar(&opts.timezone, "timezone", "", "IANA timezone for dates (default: Asia/Seoul)")
	flagSet.BoolVar(&opts.hashKey, "hash-key", false, "read an admin key from stdin and print its argon2id hash")
	flagSet.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.hashKey {
		return hashKey(stdin, stdout, stderr)
	}

	opts.requesterID = strings.TrimSpace(opts.requesterID)
	text := strings.TrimSpace(strings.Join(flagSet.Args(), " "))
	if text == "" || opts.requesterID == "" {
		fmt.Fprintln(stderr, "usage: roomctl --requester-id ID [--requester-name NAME] [--db PATH|--memory] [--json] [--seed FILE] -- <command>")
		return 2
	}
	if opts.requesterName == "" {
		opts.requesterName = opts.requesterID
	}

	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	logger := logging.New(stderr, level)

	rules := policy.Default()
	if opts.timezone != "" {
		loc, err := time.LoadLocation(opts.timezone)
		if err != nil {
			fmt.Fprintf(stderr, "error: unknown timezone %q\n", opts.timezone)
			return 2
		}
		rules.Location = loc
	}

	st, err := openStore(ctx, opts, logger)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	if opts.seedFile != "" {
		if err := seed(ctx, st, opts.seedFile, logger); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	}

	commands, err := application.NewCommandService(application.CommandServiceDeps{
		Rooms:    st,
		Bookings: st,
		Audit:    st,
		Policy:   rules,
		Logger:   logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	result := commands.Handle(ctx, application.Request{
		RequesterName: opts.requesterName,
		RequesterID:   opts.requesterID,
		Text:          text,
		SourceAddr:    cliSourceAddr,
	})

	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	} else {
		fmt.Fprintln(stdout, result.Message)
	}
	if !result.Success {
		return 1
	}
	return 0
}

func openStore(ctx context.Context, opts options, logger *slog.Logger) (store, error) {
	if opts.inMemory {
		return memory.New(), nil
	}
	storage, err := sqlite.Open(opts.dbPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.dbPath, err)
	}
	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("migrate %s: %w", opts.dbPath, err)
	}
	return storage, nil
}

func seed(ctx context.Context, st store, path string, logger *slog.Logger) error {
	seeds, err := config.LoadRoomSeeds(path)
	if err != nil {
		return err
	}
	inputs := make([]application.RoomInput, 0, len(seeds))
	for _, s := range seeds {
		inputs = append(inputs, application.RoomInput{
			Code:          s.Code,
			Name:          s.Name,
			Capacity:      s.Capacity,
			Location:      s.Location,
			AutoAccept:    s.AutoAccept,
			CalendarID:    s.CalendarID,
			ResourceEmail: s.ResourceEmail,
		})
	}
	rooms := application.NewRoomServiceWithLogger(st, application.NewRoomID, time.Now, logger)
	if _, _, err := rooms.SeedRooms(ctx, application.Principal{UserID: "roomctl", IsAdmin: true}, inputs); err != nil {
		return fmt.Errorf("seed rooms from %s: %w", path, err)
	}
	return nil
}

func hashKey(stdin io.Reader, stdout, stderr io.Writer) int {
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintf(stderr, "error: read key: %v\n", err)
		return 1
	}
	key := strings.TrimSpace(line)
	if key == "" {
		fmt.Fprintln(stderr, "error: empty admin key")
		return 2
	}
	hash, err := application.HashAdminKey(key, application.DefaultArgon2idParams)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, hash)
	return 0
}
