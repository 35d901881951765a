package clock

import (
	"testing"
	"time"
)

func TestFromTime(t *testing.T) {
	cases := []struct {
		hour, minute int
		expected     int
	}{
		{20, 0, 2000},
		{0, 0, 0},
		{0, 5, 5},
		{11, 0, 1100},
		{23, 59, 2359},
		{9, 30, 930},
	}

	for _, c := range cases {
		ts := time.Date(2025, 1, 15, c.hour, c.minute, 0, 0, time.UTC)
		if got := FromTime(ts); got != c.expected {
			t.Errorf("FromTime(%02d:%02d) = %d, expected %d", c.hour, c.minute, got, c.expected)
		}
	}
}

func TestFixedClock(t *testing.T) {
	c := FixedClock{Time: 1430}
	if c.Now() != 1430 {
		t.Errorf("Expected 1430, got %d", c.Now())
	}
	// Repeated reads must not drift
	if c.Now() != c.Now() {
		t.Error("FixedClock is not stable across reads")
	}
}

func TestSystemClockRange(t *testing.T) {
	now := SystemClock{}.Now()
	if now < 0 || now > 2359 {
		t.Errorf("SystemClock returned out-of-range value %d", now)
	}
}
