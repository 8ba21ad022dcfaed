package streak

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/stridehq/habit-engine/calendar"
)

// Analytics summarizes completion behavior for one habit over recent windows.
type Analytics struct {
	Streak Result

	// Completion rates are fractions in [0, 1] with four decimal places.
	RateLast7Days  decimal.Decimal
	RateLast30Days decimal.Decimal

	// Completed day counts per bucket, most recent bucket last. Buckets
	// with zero completions are included so charts render gaps.
	Weekly  []BucketCount
	Monthly []BucketCount
}

// BucketCount is a completion count for one time bucket.
type BucketCount struct {
	Label string // ISO week "2026-W09" or month "2026-02"
	Count int
}

const (
	weeklyBuckets  = 12
	monthlyBuckets = 12
	ratePrecision  = 4
)

// Analyze computes rates and bucketed counts from distinct, ascending
// completion days. The windows end at today inclusive.
func Analyze(days []calendar.Day, today calendar.Day) Analytics {
	return Analytics{
		Streak:         FromDays(days, today),
		RateLast7Days:  windowRate(days, today, 7),
		RateLast30Days: windowRate(days, today, 30),
		Weekly:         weeklyCounts(days, today),
		Monthly:        monthlyCounts(days, today),
	}
}

// windowRate is completedDays/windowDays over the window ending at today.
func windowRate(days []calendar.Day, today calendar.Day, window int) decimal.Decimal {
	from := today.AddDays(-(window - 1))
	completed := 0
	for _, d := range days {
		if !d.Before(from) && !d.After(today) {
			completed++
		}
	}
	return decimal.NewFromInt(int64(completed)).
		Div(decimal.NewFromInt(int64(window))).
		Round(ratePrecision)
}

func weeklyCounts(days []calendar.Day, today calendar.Day) []BucketCount {
	counts := make(map[string]int)
	for _, d := range days {
		counts[weekLabel(d)]++
	}

	// Walk back to the Monday of the oldest bucket, then emit forward.
	start := today.AddDays(-7 * (weeklyBuckets - 1))
	buckets := make([]BucketCount, 0, weeklyBuckets)
	for i := 0; i < weeklyBuckets; i++ {
		label := weekLabel(start.AddDays(7 * i))
		buckets = append(buckets, BucketCount{Label: label, Count: counts[label]})
	}
	return buckets
}

func monthlyCounts(days []calendar.Day, today calendar.Day) []BucketCount {
	counts := make(map[string]int)
	for _, d := range days {
		counts[monthLabel(d)]++
	}

	// First-of-month anchors going back from the current month.
	anchors := make([]calendar.Day, 0, monthlyBuckets)
	anchor := calendar.NewDay(today.Year(), today.Month(), 1)
	for i := 0; i < monthlyBuckets; i++ {
		anchors = append(anchors, anchor)
		prev := anchor.Prev()
		anchor = calendar.NewDay(prev.Year(), prev.Month(), 1)
	}
	buckets := make([]BucketCount, 0, monthlyBuckets)
	for i := len(anchors) - 1; i >= 0; i-- {
		label := monthLabel(anchors[i])
		buckets = append(buckets, BucketCount{Label: label, Count: counts[label]})
	}
	return buckets
}

func weekLabel(d calendar.Day) string {
	year, week := d.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

func monthLabel(d calendar.Day) string {
	return fmt.Sprintf("%04d-%02d", d.Year(), d.Month())
}
