package util

import (
	"strconv"
	"testing"
	"time"
)

func TestNextPeriodID(t *testing.T) {
	cases := map[string]string{
		"20260826-0412": "20260826-0413",
		"20260826-0999": "20260826-1000",
		"999":           "1000",
		"wingo-0009":    "wingo-0010",
		"nodigits":      "nodigits",
	}
	for in, want := range cases {
		if got := NextPeriodID(in); got != want {
			t.Fatalf("NextPeriodID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPeriodsSequential(t *testing.T) {
	if !PeriodsSequential("20260826-0412", "20260826-0413") {
		t.Fatalf("expected sequential")
	}
	if PeriodsSequential("20260826-0412", "20260826-0415") {
		t.Fatalf("expected gap to be non-sequential")
	}
	if PeriodsSequential("", "1") {
		t.Fatalf("empty prev must not be sequential")
	}
}

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}
