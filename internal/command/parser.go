package command

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/roombot/internal/scheduler"
)

// DefaultTitle is used when a book command carries no title.
const DefaultTitle = "회의"

// ParserConfig carries the values the parser needs to resolve relative dates and
// to fail fast on out-of-range durations.
type ParserConfig struct {
	Now                func() time.Time
	Location           *time.Location
	MinDurationMinutes int
	MaxDurationMinutes int
}

// Parser converts chat text into a Command. It is safe for concurrent use.
type Parser struct {
	now         func() time.Time
	loc         *time.Location
	minDuration int
	maxDuration int
}

// NewParser constructs a Parser, defaulting the clock to time.Now and the location to UTC.
func NewParser(cfg ParserConfig) *Parser {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{
		now:         now,
		loc:         loc,
		minDuration: cfg.MinDurationMinutes,
		maxDuration: cfg.MaxDurationMinutes,
	}
}

// Parse tokenizes text and maps it to a typed intent. Empty input yields Help.
// Every failure is a *ParseError.
func (p *Parser) Parse(text string) (Command, error) {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return Help{}, nil
	}

	kind, ok := lookup(commandWords, tokens[0])
	if !ok {
		return nil, &ParseError{
			Reason: fmt.Sprintf("알 수 없는 명령어입니다: %s (사용 가능: %s)", tokens[0], strings.Join(CommandWords, ", ")),
		}
	}

	args := tokens[1:]
	switch kind {
	case KindStatus:
		return p.parseStatus(args)
	case KindBook:
		return p.parseBook(args)
	case KindCancel:
		return p.parseCancel(args)
	case KindMove:
		return p.parseMove(args)
	case KindExtend:
		return p.parseExtend(args)
	case KindMy:
		return p.parseMy(args)
	case KindList:
		return p.parseList(args)
	default:
		return Help{}, nil
	}
}

// Today returns the current calendar day in the parser's location.
func (p *Parser) Today() scheduler.Date {
	return scheduler.DateOf(p.now().In(p.loc))
}

// ResolveDate maps today/tomorrow words or a strict YYYY-MM-DD token to a date.
func (p *Parser) ResolveDate(token string) (scheduler.Date, bool) {
	if _, ok := lookup(todayWords, token); ok {
		return p.Today(), true
	}
	if _, ok := lookup(tomorrowWords, token); ok {
		return p.Today().AddDays(1), true
	}
	d, err := scheduler.ParseDate(token)
	if err != nil {
		return scheduler.Date{}, false
	}
	return d, true
}

func (p *Parser) parseStatus(args []string) (Command, error) {
	usage := Usage[KindStatus]
	cmd := Status{Date: p.Today()}
	var haveDate bool

	for _, arg := range args {
		if strings.Contains(arg, ":") && strings.Contains(arg, "-") {
			if cmd.Range != nil {
				return nil, newParseError(usage, "시간 범위는 한 번만 지정할 수 있습니다.")
			}
			r, err := parseTimeRange(arg)
			if err != nil {
				return nil, newParseError(usage, err.Error())
			}
			cmd.Range = &r
			continue
		}
		if haveDate {
			return nil, newParseError(usage, fmt.Sprintf("알 수 없는 인자입니다: %s", arg))
		}
		d, ok := p.ResolveDate(arg)
		if !ok {
			return nil, newParseError(usage, invalidDateMessage(arg))
		}
		cmd.Date = d
		haveDate = true
	}
	return cmd, nil
}

func (p *Parser) parseBook(args []string) (Command, error) {
	usage := Usage[KindBook]
	if len(args) < 4 {
		return nil, newParseError(usage, "예약에 필요한 정보가 부족합니다.")
	}

	roomCode := strings.TrimSpace(args[0])
	if roomCode == "" {
		return nil, newParseError(usage, "회의실을 지정해 주세요.")
	}
	date, ok := p.ResolveDate(args[1])
	if !ok {
		return nil, newParseError(usage, invalidDateMessage(args[1]))
	}
	start, err := scheduler.ParseClockTime(args[2])
	if err != nil {
		return nil, newParseError(usage, invalidTimeMessage(args[2]))
	}
	duration, ok := parsePositiveMinutes(args[3])
	if !ok {
		return nil, newParseError(usage, invalidMinutesMessage(args[3]))
	}
	if (p.minDuration > 0 && duration < p.minDuration) || (p.maxDuration > 0 && duration > p.maxDuration) {
		return nil, newParseError(usage, fmt.Sprintf("예약 시간은 %d분 이상 %d분 이하로 지정해 주세요.", p.minDuration, p.maxDuration))
	}

	title := strings.Join(args[4:], " ")
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	return Book{
		RoomCode:        roomCode,
		Date:            date,
		Start:           start,
		DurationMinutes: duration,
		Title:           title,
	}, nil
}

func (p *Parser) parseCancel(args []string) (Command, error) {
	if len(args) != 1 {
		return nil, newParseError(Usage[KindCancel], "예약번호를 하나 입력해 주세요.")
	}
	return Cancel{BookingID: strings.ToUpper(args[0])}, nil
}

func (p *Parser) parseMove(args []string) (Command, error) {
	usage := Usage[KindMove]
	if len(args) != 3 {
		return nil, newParseError(usage, "예약번호, 날짜, 시작 시간을 입력해 주세요.")
	}
	date, ok := p.ResolveDate(args[1])
	if !ok {
		return nil, newParseError(usage, invalidDateMessage(args[1]))
	}
	start, err := scheduler.ParseClockTime(args[2])
	if err != nil {
		return nil, newParseError(usage, invalidTimeMessage(args[2]))
	}
	return Move{BookingID: strings.ToUpper(args[0]), Date: date, Start: start}, nil
}

func (p *Parser) parseExtend(args []string) (Command, error) {
	usage := Usage[KindExtend]
	if len(args) != 2 {
		return nil, newParseError(usage, "예약번호와 연장할 시간(분)을 입력해 주세요.")
	}
	minutes, ok := parsePositiveMinutes(args[1])
	if !ok {
		return nil, newParseError(usage, invalidMinutesMessage(args[1]))
	}
	return Extend{BookingID: strings.ToUpper(args[0]), AdditionalMinutes: minutes}, nil
}

func (p *Parser) parseMy(args []string) (Command, error) {
	switch len(args) {
	case 0:
		return My{Filter: MyAll}, nil
	case 1:
		filter, ok := lookup(myFilterWords, args[0])
		if !ok {
			return nil, newParseError(Usage[KindMy], fmt.Sprintf("알 수 없는 조회 범위입니다: %s", args[0]))
		}
		return My{Filter: filter}, nil
	default:
		return nil, newParseError(Usage[KindMy], "조회 범위는 하나만 지정할 수 있습니다.")
	}
}

func (p *Parser) parseList(args []string) (Command, error) {
	usage := Usage[KindList]
	switch len(args) {
	case 0:
		return ListRooms{}, nil
	case 1:
		if _, ok := lookup(roomsWords, args[0]); ok {
			return ListRooms{}, nil
		}
		d, ok := p.ResolveDate(args[0])
		if !ok {
			return nil, newParseError(usage, invalidDateMessage(args[0]))
		}
		return ListBookings{Date: d}, nil
	default:
		return nil, newParseError(usage, "인자가 너무 많습니다.")
	}
}

func parseTimeRange(token string) (TimeRange, error) {
	startText, endText, ok := strings.Cut(token, "-")
	if !ok {
		return TimeRange{}, fmt.Errorf("시간 범위 형식이 올바르지 않습니다: %s", token)
	}
	start, err := scheduler.ParseClockTime(startText)
	if err != nil {
		return TimeRange{}, fmt.Errorf("시간 범위 형식이 올바르지 않습니다: %s", token)
	}
	var end scheduler.ClockTime
	if endText == "24:00" {
		end = scheduler.EndOfDay
	} else if end, err = scheduler.ParseClockTime(endText); err != nil {
		return TimeRange{}, fmt.Errorf("시간 범위 형식이 올바르지 않습니다: %s", token)
	}
	if end <= start {
		return TimeRange{}, fmt.Errorf("종료 시간은 시작 시간보다 늦어야 합니다: %s", token)
	}
	return TimeRange{Start: start, End: end}, nil
}

func parsePositiveMinutes(token string) (int, bool) {
	for _, r := range token {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(token)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func invalidDateMessage(token string) string {
	return fmt.Sprintf("날짜 형식이 올바르지 않습니다: %s (today, tomorrow, YYYY-MM-DD)", token)
}

func invalidTimeMessage(token string) string {
	return fmt.Sprintf("시간 형식이 올바르지 않습니다: %s (HH:mm)", token)
}

func invalidMinutesMessage(token string) string {
	return fmt.Sprintf("시간(분)은 양의 정수여야 합니다: %s", token)
}
