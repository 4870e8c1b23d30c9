package product

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimeoutFormat is returned when a timeout is neither a number of
// seconds nor a number followed by s, m or h.
var ErrInvalidTimeoutFormat = errors.New("invalid timeout format")

// Default timeouts applied when a product entry has no timeout key.
const (
	DefaultAddonTimeout    = 30 * time.Minute
	DefaultOperatorTimeout = 60 * time.Minute
)

var timeoutPattern = regexp.MustCompile(`^(\d+)(\w)`)

var timeoutUnits = map[string]int64{
	"s": 1,
	"m": 60,
	"h": 60 * 60,
}

// ParseTimeout converts a timeout string into a duration.
//
// "90", "90s", "15m" and "2h" are accepted; the unit is case-insensitive and
// anything following the unit letter is ignored ("10sec" is ten seconds).
// When the character after the digits is not a known unit the whole value
// must be an integer number of seconds.
func ParseTimeout(value string) (time.Duration, error) {
	v := strings.TrimSpace(value)

	if m := timeoutPattern.FindStringSubmatch(v); m != nil {
		if multiplier, ok := timeoutUnits[strings.ToLower(m[2])]; ok {
			n, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil || n > math.MaxInt64/int64(time.Second)/multiplier {
				return 0, fmt.Errorf("%w: %q", ErrInvalidTimeoutFormat, value)
			}
			return time.Duration(n*multiplier) * time.Second, nil
		}
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 || n > math.MaxInt64/int64(time.Second) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeoutFormat, value)
	}
	return time.Duration(n) * time.Second, nil
}
