package testfixtures

import (
	"strconv"
	"strings"
	"sync"
)

// IDGenerator hands out predictable identifiers: the upper-cased prefix followed
// by a base36 sequence number padded to three characters (BK001, BK002, ...).
// Identifiers queued with Queue are returned first, in order, which lets a test
// force an identifier clash.
type IDGenerator struct {
	mu       sync.Mutex
	prefix   string
	counter  uint64
	scripted []string
	issued   []string
}

// NewIDGenerator returns a generator for prefix, or "ID" when prefix is empty.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "ID"
	}
	return &IDGenerator{prefix: strings.ToUpper(prefix)}
}

func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var id string
	if len(g.scripted) > 0 {
		id, g.scripted = g.scripted[0], g.scripted[1:]
	} else {
		g.counter++
		seq := strings.ToUpper(strconv.FormatUint(g.counter, 36))
		if len(seq) < 3 {
			seq = strings.Repeat("0", 3-len(seq)) + seq
		}
		id = g.prefix + seq
	}
	g.issued = append(g.issued, id)
	return id
}

// NextFunc returns Next for injection.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// Queue schedules ids to be returned before the sequence resumes.
func (g *IDGenerator) Queue(ids ...string) {
	g.mu.Lock()
	g.scripted = append(g.scripted, ids...)
	g.mu.Unlock()
}

// Issued lists every identifier returned so far, including repeats.
func (g *IDGenerator) Issued() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.issued...)
}
