package objectstore

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultExpiry is applied by Set when the caller passes a zero Expiry.
var DefaultExpiry = In("90 seconds")

// ExpiryKind tags the shape an Expiry was built from
type ExpiryKind int

const (
	// ExpiryUnset is the zero value; it resolves to the store's default expiry
	ExpiryUnset ExpiryKind = iota
	// ExpiryAbsolute carries an already resolved point in time
	ExpiryAbsolute
	// ExpiryExpression carries a text expression resolved against the clock
	ExpiryExpression
	// ExpiryUnix carries a Unix timestamp in seconds
	ExpiryUnix
)

func (k ExpiryKind) String() string {
	switch k {
	case ExpiryAbsolute:
		return "absolute"
	case ExpiryExpression:
		return "expression"
	case ExpiryUnix:
		return "unix"
	default:
		return "unset"
	}
}

// Expiry describes when a record goes stale. Build one with At, In or Unix.
type Expiry struct {
	kind ExpiryKind
	at   time.Time
	expr string
	unix int64
}

// At returns an expiry at a fixed point in time.
func At(t time.Time) Expiry {
	return Expiry{kind: ExpiryAbsolute, at: t}
}

// In returns an expiry described by a text expression such as "2 days",
// "+1 week 3 hours", "tomorrow" or "2017-12-01 10:00:00".
func In(expr string) Expiry {
	return Expiry{kind: ExpiryExpression, expr: expr}
}

// Unix returns an expiry at the given Unix timestamp (seconds).
func Unix(sec int64) Expiry {
	return Expiry{kind: ExpiryUnix, unix: sec}
}

// ParseExpiry builds an Expiry from a loosely typed value. Strings become
// expressions, integers Unix timestamps, times absolute expiries. Any other
// shape is rejected.
func ParseExpiry(v any) (Expiry, error) {
	switch t := v.(type) {
	case Expiry:
		return t, nil
	case string:
		return In(t), nil
	case int:
		return Unix(int64(t)), nil
	case int32:
		return Unix(int64(t)), nil
	case int64:
		return Unix(t), nil
	case uint32:
		return Unix(int64(t)), nil
	case time.Time:
		return At(t), nil
	case *time.Time:
		if t == nil {
			return Expiry{}, InvalidExpiryError{Input: "<nil>", Reason: "nil time"}
		}
		return At(*t), nil
	default:
		return Expiry{}, InvalidExpiryError{
			Input:  fmt.Sprintf("%v", v),
			Reason: fmt.Sprintf("unsupported type %T", v),
		}
	}
}

// Kind reports which constructor built e.
func (e Expiry) Kind() ExpiryKind {
	return e.kind
}

// IsZero reports whether e is the unset expiry.
func (e Expiry) IsZero() bool {
	return e.kind == ExpiryUnset
}

func (e Expiry) String() string {
	switch e.kind {
	case ExpiryAbsolute:
		return e.at.Format(time.RFC3339)
	case ExpiryExpression:
		return e.expr
	case ExpiryUnix:
		return strconv.FormatInt(e.unix, 10)
	default:
		return ""
	}
}

// Resolve converts e to an absolute time, anchored at now for expressions.
// The result is truncated to whole seconds.
func (e Expiry) Resolve(now time.Time) (time.Time, error) {
	var (
		t   time.Time
		err error
	)
	switch e.kind {
	case ExpiryAbsolute:
		t = e.at
	case ExpiryUnix:
		t = time.Unix(e.unix, 0).In(now.Location())
	case ExpiryExpression:
		t, err = parseExpression(e.expr, now)
		if err != nil {
			return time.Time{}, err
		}
	default:
		return time.Time{}, InvalidExpiryError{Input: "", Reason: "expiry is unset"}
	}
	return t.Truncate(time.Second), nil
}

var absoluteLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var (
	termPattern   = regexp.MustCompile(`^([+-]?)\s*(\d+)\s*([a-z]+)`)
	anchorPattern = regexp.MustCompile(`^(now|today|midnight|tomorrow|yesterday)\b`)
)

// parseExpression resolves an absolute or relative text expression
func parseExpression(expr string, now time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(expr))
	if s == "" {
		return time.Time{}, InvalidExpiryError{Input: expr, Reason: "empty expression"}
	}

	up := strings.ToUpper(s)
	if t, err := time.Parse(time.RFC3339, up); err == nil {
		return t, nil
	}
	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, up, now.Location()); err == nil {
			return t, nil
		}
	}

	base := now
	if m := anchorPattern.FindString(s); m != "" {
		base = applyAnchor(m, now)
		s = strings.TrimSpace(s[len(m):])
		if s == "" {
			return base, nil
		}
	}

	ago := false
	if strings.HasSuffix(s, "ago") {
		ago = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "ago"))
	}

	t := base
	terms := 0
	for s != "" {
		m := termPattern.FindStringSubmatch(s)
		if m == nil {
			break
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return time.Time{}, InvalidExpiryError{Input: expr, Reason: err.Error()}
		}
		if m[1] == "-" {
			n = -n
		}
		if ago {
			n = -n
		}
		t, err = addUnit(t, n, m[3])
		if err != nil {
			return time.Time{}, InvalidExpiryError{Input: expr, Reason: err.Error()}
		}
		terms++
		s = strings.TrimSpace(s[len(m[0]):])
	}
	if s == "" && terms > 0 {
		return t, nil
	}

	if terms == 0 && !ago {
		if d, err := time.ParseDuration(s); err == nil {
			return base.Add(d), nil
		}
	}

	return time.Time{}, InvalidExpiryError{Input: expr, Reason: "unrecognized date/time expression"}
}

func applyAnchor(anchor string, now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch anchor {
	case "today", "midnight":
		return midnight
	case "tomorrow":
		return midnight.AddDate(0, 0, 1)
	case "yesterday":
		return midnight.AddDate(0, 0, -1)
	default:
		return now
	}
}

// maxCalendarSteps bounds day and larger units so AddDate stays in range
const maxCalendarSteps = math.MaxInt32

func addUnit(t time.Time, n int, unit string) (time.Time, error) {
	switch unit {
	case "s", "sec", "secs", "second", "seconds":
		return addDuration(t, n, time.Second)
	case "m", "min", "mins", "minute", "minutes":
		return addDuration(t, n, time.Minute)
	case "h", "hour", "hours":
		return addDuration(t, n, time.Hour)
	}

	if n > maxCalendarSteps || n < -maxCalendarSteps {
		return time.Time{}, fmt.Errorf("%d %s is out of range", n, unit)
	}
	switch unit {
	case "d", "day", "days":
		return t.AddDate(0, 0, n), nil
	case "w", "week", "weeks":
		return t.AddDate(0, 0, 7*n), nil
	case "fortnight", "fortnights":
		return t.AddDate(0, 0, 14*n), nil
	case "month", "months":
		return t.AddDate(0, n, 0), nil
	case "y", "year", "years":
		return t.AddDate(n, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unknown unit %q", unit)
	}
}

// addDuration adds n units of elapsed time, rejecting overflow
func addDuration(t time.Time, n int, unit time.Duration) (time.Time, error) {
	limit := int64(math.MaxInt64 / unit)
	if int64(n) > limit || int64(n) < -limit {
		return time.Time{}, fmt.Errorf("%d x %s is out of range", n, unit)
	}
	return t.Add(time.Duration(n) * unit), nil
}
