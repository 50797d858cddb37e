package application

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"
)

// NewBookingID returns a short uppercase identifier: four base36 characters derived
// from the clock followed by four random base32 characters.
func NewBookingID() string {
	stamp := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	if len(stamp) > 4 {
		stamp = stamp[len(stamp)-4:]
	}
	return stamp + rand.Text()[:4]
}
