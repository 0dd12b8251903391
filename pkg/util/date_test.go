package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseDateDayForm(t *testing.T) {
	got, ok := ParseDate("2024-10-10")
	if !ok {
		t.Fatalf("expected ok")
	}
	if FormatDay(got) != "2024-10-10" {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseDateRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseDate(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseDateUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseDate(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseDateDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	got := ParseDateDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestTruncateToDay(t *testing.T) {
	in := time.Date(2024, 10, 10, 15, 4, 5, 123, time.FixedZone("X", 3600))
	got := TruncateToDay(in)
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 {
		t.Fatalf("intraday component not dropped: %v", got)
	}
	if FormatDay(got) != "2024-10-10" {
		t.Fatalf("unexpected day %v", got)
	}
}

func TestSplitSymbol(t *testing.T) {
	market, code, err := SplitSymbol("sh:600519")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if market != "sh" || code != "600519" {
		t.Fatalf("unexpected parts %q %q", market, code)
	}
	if _, _, err := SplitSymbol("600519"); err == nil {
		t.Fatalf("expected error for missing market")
	}
	if JoinSymbol(market, code) != "sh:600519" {
		t.Fatalf("join mismatch")
	}
}
