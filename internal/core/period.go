package core

import (
	"fmt"
	"strconv"
	"time"
)

// PeriodKind selects the calendar bucket used to group transactions.
type PeriodKind string

const (
	Week  PeriodKind = "week"
	Month PeriodKind = "month"
	Year  PeriodKind = "year"
)

// IsValid returns true if the period kind is known
func (k PeriodKind) IsValid() bool {
	switch k {
	case Week, Month, Year:
		return true
	default:
		return false
	}
}

// Bucket is the key of one period: its first day plus a display label.
type Bucket struct {
	Kind  PeriodKind
	Start time.Time
	Label string
}

// TruncateDay drops the time of day, keeping the date's location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekStart returns the Monday that opens the ISO week containing t.
func WeekStart(t time.Time) time.Time {
	day := TruncateDay(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return day.AddDate(0, 0, -offset)
}

// MonthStart returns the first day of t's month.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// MonthLabel formats t's month as "YYYY-MM".
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// YearStart returns January 1st of t's year.
func YearStart(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// BucketOf derives the bucket of t for the given kind.
func BucketOf(t time.Time, kind PeriodKind) (Bucket, error) {
	switch kind {
	case Week:
		start := WeekStart(t)
		return Bucket{Kind: kind, Start: start, Label: start.Format("2006-01-02")}, nil
	case Month:
		return Bucket{Kind: kind, Start: MonthStart(t), Label: MonthLabel(t)}, nil
	case Year:
		return Bucket{Kind: kind, Start: YearStart(t), Label: strconv.Itoa(t.Year())}, nil
	default:
		return Bucket{}, fmt.Errorf("unknown period kind %q", kind)
	}
}
