package streak

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestWindowRates(t *testing.T) {
	// GIVEN 4 completions inside the last 7 days and 10 inside the last 30
	today := day("2026-02-26")
	history := days(
		// older than 30 days: excluded
		"2026-01-01", "2026-01-15",
		// within 30 days, outside 7
		"2026-02-01", "2026-02-05", "2026-02-10", "2026-02-12",
		"2026-02-15", "2026-02-18",
		// within 7 days (Feb 20..26)
		"2026-02-20", "2026-02-23", "2026-02-25", "2026-02-26",
	)

	a := Analyze(history, today)

	if want := decimal.RequireFromString("0.5714"); !a.RateLast7Days.Equal(want) {
		t.Errorf("7-day rate: expected %s, got %s", want, a.RateLast7Days)
	}
	if want := decimal.RequireFromString("0.3333"); !a.RateLast30Days.Equal(want) {
		t.Errorf("30-day rate: expected %s, got %s", want, a.RateLast30Days)
	}
}

func TestRatesWithNoHistory(t *testing.T) {
	a := Analyze(nil, day("2026-02-26"))
	if !a.RateLast7Days.IsZero() || !a.RateLast30Days.IsZero() {
		t.Errorf("expected zero rates, got %s / %s", a.RateLast7Days, a.RateLast30Days)
	}
}

func TestWeeklyBucketsIncludeEmptyWeeks(t *testing.T) {
	// GIVEN completions in only two of the last twelve weeks
	today := day("2026-02-26") // ISO week 2026-W09
	history := days("2026-02-24", "2026-02-25", "2026-02-10")

	a := Analyze(history, today)

	if len(a.Weekly) != weeklyBuckets {
		t.Fatalf("expected %d weekly buckets, got %d", weeklyBuckets, len(a.Weekly))
	}
	last := a.Weekly[len(a.Weekly)-1]
	if last.Label != "2026-W09" {
		t.Errorf("expected last bucket 2026-W09, got %s", last.Label)
	}
	if last.Count != 2 {
		t.Errorf("expected 2 completions in current week, got %d", last.Count)
	}
	empty := 0
	for _, b := range a.Weekly {
		if b.Count == 0 {
			empty++
		}
	}
	if empty != weeklyBuckets-2 {
		t.Errorf("expected %d empty weeks, got %d", weeklyBuckets-2, empty)
	}
}

func TestMonthlyBucketsOrderedOldestFirst(t *testing.T) {
	today := day("2026-02-26")
	history := days("2025-09-10", "2026-01-05", "2026-01-06", "2026-02-01")

	a := Analyze(history, today)

	if len(a.Monthly) != monthlyBuckets {
		t.Fatalf("expected %d monthly buckets, got %d", monthlyBuckets, len(a.Monthly))
	}
	if a.Monthly[0].Label != "2025-03" {
		t.Errorf("expected oldest bucket 2025-03, got %s", a.Monthly[0].Label)
	}
	if a.Monthly[0].Count != 0 {
		t.Errorf("expected empty 2025-03 bucket, got %d", a.Monthly[0].Count)
	}
	if a.Monthly[6].Label != "2025-09" || a.Monthly[6].Count != 1 {
		t.Errorf("expected 2025-09 with 1, got %s with %d",
			a.Monthly[6].Label, a.Monthly[6].Count)
	}
	lastIdx := len(a.Monthly) - 1
	if a.Monthly[lastIdx].Label != "2026-02" {
		t.Errorf("expected newest bucket 2026-02, got %s", a.Monthly[lastIdx].Label)
	}
	if a.Monthly[lastIdx-1].Label != "2026-01" || a.Monthly[lastIdx-1].Count != 2 {
		t.Errorf("expected 2026-01 with 2, got %s with %d",
			a.Monthly[lastIdx-1].Label, a.Monthly[lastIdx-1].Count)
	}
}
