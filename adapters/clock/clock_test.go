package clock_test

import (
	"testing"
	"time"

	"github.com/agencyos/growthmeter/adapters/clock"
)

func TestFake_SetAndAdvance(t *testing.T) {
	start := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	fake := clock.NewFake(start)

	if !fake.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", fake.Now(), start)
	}

	fake.Advance(time.Hour)
	if !fake.Now().Equal(start.Add(time.Hour)) {
		t.Errorf("Now() after Advance = %v, want +1h", fake.Now())
	}

	other := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	fake.Set(other)
	if !fake.Now().Equal(other) {
		t.Errorf("Now() after Set = %v, want %v", fake.Now(), other)
	}
}

func TestReal_ReturnsCurrentTime(t *testing.T) {
	before := time.Now()
	got := clock.Real{}.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("Now() = %v, outside [%v, %v]", got, before, after)
	}
	if got.Location() != time.UTC {
		t.Errorf("Now() location = %v, want UTC", got.Location())
	}
}
