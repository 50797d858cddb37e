package command

import "strings"

var commandWords = map[string]Kind{
	"status":  KindStatus,
	"현황":      KindStatus,
	"상태":      KindStatus,
	"조회":      KindStatus,
	"book":    KindBook,
	"reserve": KindBook,
	"예약":      KindBook,
	"cancel":  KindCancel,
	"취소":      KindCancel,
	"move":    KindMove,
	"변경":      KindMove,
	"이동":      KindMove,
	"extend":  KindExtend,
	"연장":      KindExtend,
	"my":      KindMy,
	"mine":    KindMy,
	"내예약":     KindMy,
	"list":    KindList,
	"ls":      KindList,
	"목록":      KindList,
	"help":    KindHelp,
	"?":       KindHelp,
	"도움말":     KindHelp,
	"도움":      KindHelp,
}

// CommandWords lists the accepted command words in display order.
var CommandWords = []string{
	"status/현황", "book/예약", "cancel/취소", "move/변경", "extend/연장", "my/내예약", "list/목록", "help/도움말",
}

var todayWords = map[string]struct{}{"today": {}, "오늘": {}}

var tomorrowWords = map[string]struct{}{"tomorrow": {}, "내일": {}}

var roomsWords = map[string]struct{}{"rooms": {}, "room": {}, "회의실": {}}

var myFilterWords = map[string]MyFilter{
	"today": MyToday,
	"오늘":    MyToday,
	"week":  MyWeek,
	"이번주":   MyWeek,
	"주간":    MyWeek,
	"all":   MyAll,
	"전체":    MyAll,
	"모두":    MyAll,
}

// Usage lines, one per command.
var Usage = map[Kind]string{
	KindStatus: "status [today|tomorrow|YYYY-MM-DD] [HH:mm-HH:mm]",
	KindBook:   "book <회의실> <today|tomorrow|YYYY-MM-DD> <HH:mm> <분> [제목]",
	KindCancel: "cancel <예약번호>",
	KindMove:   "move <예약번호> <today|tomorrow|YYYY-MM-DD> <HH:mm>",
	KindExtend: "extend <예약번호> <추가 분>",
	KindMy:     "my [today|week|all]",
	KindList:   "list [rooms|YYYY-MM-DD]",
	KindHelp:   "help",
}

// UsageOrder is the order in which help lists commands.
var UsageOrder = []Kind{KindStatus, KindBook, KindCancel, KindMove, KindExtend, KindMy, KindList, KindHelp}

func lookup[V any](table map[string]V, token string) (V, bool) {
	v, ok := table[strings.ToLower(token)]
	return v, ok
}
