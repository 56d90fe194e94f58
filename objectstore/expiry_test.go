package objectstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2017, time.December, 22, 15, 30, 45, 500, time.UTC)

func TestExpiry_ResolveExpressions(t *testing.T) {
	tests := []struct {
		expr string
		want time.Time
	}{
		{expr: "90 seconds", want: time.Date(2017, 12, 22, 15, 32, 15, 0, time.UTC)},
		{expr: "90 Seconds", want: time.Date(2017, 12, 22, 15, 32, 15, 0, time.UTC)},
		{expr: "2 days", want: time.Date(2017, 12, 24, 15, 30, 45, 0, time.UTC)},
		{expr: "+1 week 3 hours", want: time.Date(2017, 12, 29, 18, 30, 45, 0, time.UTC)},
		{expr: "-5 min", want: time.Date(2017, 12, 22, 15, 25, 45, 0, time.UTC)},
		{expr: "2 hours ago", want: time.Date(2017, 12, 22, 13, 30, 45, 0, time.UTC)},
		{expr: "1 month", want: time.Date(2018, 1, 22, 15, 30, 45, 0, time.UTC)},
		{expr: "1 year", want: time.Date(2018, 12, 22, 15, 30, 45, 0, time.UTC)},
		{expr: "1 fortnight", want: time.Date(2018, 1, 5, 15, 30, 45, 0, time.UTC)},
		{expr: "now", want: time.Date(2017, 12, 22, 15, 30, 45, 0, time.UTC)},
		{expr: "today", want: time.Date(2017, 12, 22, 0, 0, 0, 0, time.UTC)},
		{expr: "tomorrow", want: time.Date(2017, 12, 23, 0, 0, 0, 0, time.UTC)},
		{expr: "yesterday", want: time.Date(2017, 12, 21, 0, 0, 0, 0, time.UTC)},
		{expr: "tomorrow +2 hours", want: time.Date(2017, 12, 23, 2, 0, 0, 0, time.UTC)},
		{expr: "1h30m", want: time.Date(2017, 12, 22, 17, 0, 45, 0, time.UTC)},
		{expr: "1.5h", want: time.Date(2017, 12, 22, 17, 0, 45, 0, time.UTC)},
		{expr: "2017-12-01", want: time.Date(2017, 12, 1, 0, 0, 0, 0, time.UTC)},
		{expr: "2017-12-01 10:20", want: time.Date(2017, 12, 1, 10, 20, 0, 0, time.UTC)},
		{expr: "2017-12-01 10:20:30", want: time.Date(2017, 12, 1, 10, 20, 30, 0, time.UTC)},
		{expr: "2017-12-01T10:20:30", want: time.Date(2017, 12, 1, 10, 20, 30, 0, time.UTC)},
		{expr: "2017-12-01T10:20:30+02:00", want: time.Date(2017, 12, 1, 8, 20, 30, 0, time.UTC)},
		{expr: "  2 DAYS  ", want: time.Date(2017, 12, 24, 15, 30, 45, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := In(tt.expr).Resolve(refNow)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestExpiry_ResolveInvalid(t *testing.T) {
	for _, expr := range []string{"", "   ", "soon", "2 parsecs", "3 days and change", "ago", "2017-13-45"} {
		t.Run(expr, func(t *testing.T) {
			_, err := In(expr).Resolve(refNow)
			var expErr InvalidExpiryError
			assert.ErrorAs(t, err, &expErr)
		})
	}
}

func TestExpiry_ResolveOverflow(t *testing.T) {
	for _, expr := range []string{
		"9999999999999 seconds",
		"-9999999999999 minutes",
		"3000000 hours",
		"9999999999999 days",
		"1 hour 9999999999999 seconds",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := In(expr).Resolve(refNow)
			var expErr InvalidExpiryError
			require.ErrorAs(t, err, &expErr)
			assert.Contains(t, expErr.Error(), "range")
		})
	}

	got, err := In("2000000 hours").Resolve(refNow)
	require.NoError(t, err)
	assert.True(t, refNow.Truncate(time.Second).Add(2000000*time.Hour).Equal(got))
}

func TestExpiry_CalendarArithmetic(t *testing.T) {
	jan31 := time.Date(2024, time.January, 31, 9, 0, 0, 0, time.UTC)
	got, err := In("1 month").Resolve(jan31)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC).Equal(got))

	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}
	beforeDST := time.Date(2024, time.March, 30, 12, 0, 0, 0, loc)
	got, err = In("1 day").Resolve(beforeDST)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Hour(), "days keep the wall clock across DST")

	got, err = In("24 hours").Resolve(beforeDST)
	require.NoError(t, err)
	assert.Equal(t, 13, got.Hour(), "hours are elapsed time")
}

func TestExpiry_UnixAndAbsolute(t *testing.T) {
	got, err := Unix(1513956645).Resolve(refNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1513956645), got.Unix())

	at := time.Date(2030, time.May, 1, 8, 0, 0, 999, time.UTC)
	got, err = At(at).Resolve(refNow)
	require.NoError(t, err)
	assert.True(t, at.Truncate(time.Second).Equal(got))

	_, err = Expiry{}.Resolve(refNow)
	assert.Error(t, err)
}

func TestParseExpiry(t *testing.T) {
	at := time.Date(2030, time.May, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		kind ExpiryKind
	}{
		{name: "string", in: "2 days", kind: ExpiryExpression},
		{name: "int", in: 1513956645, kind: ExpiryUnix},
		{name: "int64", in: int64(1513956645), kind: ExpiryUnix},
		{name: "time", in: at, kind: ExpiryAbsolute},
		{name: "time pointer", in: &at, kind: ExpiryAbsolute},
		{name: "expiry", in: In("now"), kind: ExpiryExpression},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ParseExpiry(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, e.Kind())
		})
	}

	for _, bad := range []any{3.14, []string{"2 days"}, nil, (*time.Time)(nil), struct{}{}} {
		_, err := ParseExpiry(bad)
		var expErr InvalidExpiryError
		assert.ErrorAs(t, err, &expErr, "%T", bad)
	}
}

func TestExpiry_String(t *testing.T) {
	assert.Equal(t, "2 days", In("2 days").String())
	assert.Equal(t, "42", Unix(42).String())
	assert.Equal(t, "", Expiry{}.String())
	assert.Equal(t, "unset", Expiry{}.Kind().String())
	assert.True(t, Expiry{}.IsZero())
	assert.False(t, Unix(0).IsZero())
}
