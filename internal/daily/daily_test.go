package daily

import (
	"testing"
	"time"
)

func TestDateKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 02:00 local on the 5th is still the 4th in UTC.
	ts := time.Date(2026, 5, 5, 2, 0, 0, 0, loc)
	if got := DateKey(ts); got != "2026-05-04" {
		t.Fatalf("DateKey = %q", got)
	}
}

func TestDayBounds(t *testing.T) {
	start, end := DayBounds(time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC))
	if !start.Equal(time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", start)
	}
	if !end.Equal(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end = %v", end)
	}
}

func TestParseDateKey(t *testing.T) {
	got, err := ParseDateKey("2026-02-28")
	if err != nil || DateKey(got) != "2026-02-28" || got.Location() != time.UTC {
		t.Fatalf("ParseDateKey = %v, %v", got, err)
	}
	if _, err := ParseDateKey("28/02/2026"); err == nil {
		t.Fatalf("expected error for bad layout")
	}
}
