package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/example/roombot/internal/logging"
	"github.com/example/roombot/internal/policy"
)

const envPrefix = "ROOMBOT_"

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort     int
	SQLiteDSN    string
	WebhookToken string
	// TriggerWords are stripped from the start of webhook text before parsing.
	TriggerWords []string
	// AdminKeyHash is an argon2id hash; empty disables the admin API.
	AdminKeyHash            string
	Policy                  policy.Policy
	RateLimitPerMinute      int
	CompletionSchedule      string
	CalendarCredentialsFile string
	RoomsFile               string
	LogLevel                slog.Level
}

// Load parses configuration values from the current process environment after
// merging any dotenv files (".env" when none are named). Variables already present
// in the environment win over dotenv values; a missing dotenv file is not an error.
//
// Missing required values and invalid values are each reported in one localized
// message listing every offending key.
func Load(dotenvFiles ...string) (Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, file := range dotenvFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return Config{}, fmt.Errorf("dotenv 파일을 읽을 수 없습니다: %s: %w", file, err)
		}
	}

	cfg := Config{
		HTTPPort:           8080,
		SQLiteDSN:          "roombot.db",
		Policy:             policy.Default(),
		RateLimitPerMinute: 30,
		CompletionSchedule: "*/5 * * * *",
		LogLevel:           slog.LevelInfo,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	intVar := func(key string, target *int, min int) {
		value := lookup(key)
		if value == "" {
			return
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < min {
			invalid = append(invalid, envPrefix+key)
			return
		}
		*target = n
	}

	intVar("HTTP_PORT", &cfg.HTTPPort, 1)
	if dsn := lookup("SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if token := lookup("WEBHOOK_TOKEN"); token == "" {
		missing = append(missing, envPrefix+"WEBHOOK_TOKEN")
	} else {
		cfg.WebhookToken = token
	}

	for _, word := range strings.Split(lookup("TRIGGER_WORDS"), ",") {
		if word = strings.TrimSpace(word); word != "" {
			cfg.TriggerWords = append(cfg.TriggerWords, word)
		}
	}

	cfg.AdminKeyHash = lookup("ADMIN_KEY_HASH")
	if cfg.AdminKeyHash != "" && !strings.HasPrefix(cfg.AdminKeyHash, "$argon2id$") {
		invalid = append(invalid, envPrefix+"ADMIN_KEY_HASH")
	}

	if tz := lookup("TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			invalid = append(invalid, envPrefix+"TIMEZONE")
		} else {
			cfg.Policy.Location = loc
		}
	}

	intVar("MAX_DURATION_MINUTES", &cfg.Policy.MaxDurationMinutes, 1)
	intVar("MIN_DURATION_MINUTES", &cfg.Policy.MinDurationMinutes, 1)
	intVar("BUFFER_MINUTES", &cfg.Policy.BufferMinutes, 0)
	intVar("BOOKING_HOURS_START", &cfg.Policy.BookingHoursStart, 0)
	intVar("BOOKING_HOURS_END", &cfg.Policy.BookingHoursEnd, 1)
	intVar("ALLOWED_DAYS_AHEAD", &cfg.Policy.AllowedDaysAhead, 0)
	intVar("RATE_LIMIT_PER_MINUTE", &cfg.RateLimitPerMinute, 0)

	if schedule := lookup("COMPLETION_SCHEDULE"); schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			invalid = append(invalid, envPrefix+"COMPLETION_SCHEDULE")
		} else {
			cfg.CompletionSchedule = schedule
		}
	}

	cfg.CalendarCredentialsFile = lookup("CALENDAR_CREDENTIALS_FILE")
	cfg.RoomsFile = lookup("ROOMS_FILE")

	if level, err := logging.ParseLevel(lookup("LOG_LEVEL")); err != nil {
		invalid = append(invalid, envPrefix+"LOG_LEVEL")
	} else {
		cfg.LogLevel = level
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("필수 환경 변수가 설정되지 않았습니다: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("환경 변수 값이 올바르지 않습니다: %s", strings.Join(invalid, ", "))
	}
	if err := cfg.Policy.Validate(); err != nil {
		return Config{}, fmt.Errorf("예약 정책 설정이 올바르지 않습니다: %w", err)
	}

	return cfg, nil
}

func lookup(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}
