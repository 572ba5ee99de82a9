package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"painel/internal/core"
	"painel/internal/reporting"
)

const dayLayout = "2006-01-02"

// allOption is what the selectors send for "no filter".
var allOption = map[string]bool{"": true, "all": true, "todos": true, "todas": true}

// parseIntParam returns def for an absent parameter and errBadParam for a
// malformed one.
func parseIntParam(q url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if allOption[strings.ToLower(v)] {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", errBadParam, key, v)
	}
	return n, nil
}

// ParseYearRange reads start_year and end_year. Missing ends stay open.
func ParseYearRange(q url.Values) (core.YearRange, error) {
	start, err := parseIntParam(q, "start_year", 0)
	if err != nil {
		return core.YearRange{}, err
	}
	end, err := parseIntParam(q, "end_year", 0)
	if err != nil {
		return core.YearRange{}, err
	}
	if start != 0 && end != 0 && start > end {
		return core.YearRange{}, fmt.Errorf("%w: start_year %d is after end_year %d", errBadParam, start, end)
	}
	return core.YearRange{Start: start, End: end}, nil
}

// ParseComparison reads period (default week) and limit (default 3).
func ParseComparison(q url.Values) (core.PeriodKind, int, error) {
	kind := core.Week
	if v := strings.TrimSpace(q.Get("period")); v != "" {
		kind = core.PeriodKind(strings.ToLower(v))
	}
	if !kind.IsValid() {
		return "", 0, fmt.Errorf("%w: %q", reporting.ErrUnknownPeriod, kind)
	}
	limit, err := parseIntParam(q, "limit", reporting.RecencyWindow)
	if err != nil {
		return "", 0, err
	}
	if limit < 1 || limit > reporting.RecencyWindow {
		return "", 0, fmt.Errorf("%w: limit must be between 1 and %d", errBadParam, reporting.RecencyWindow)
	}
	return kind, limit, nil
}

// ParseHistoryFilter reads the history page selectors. "all" (or empty)
// disables a selector.
func ParseHistoryFilter(q url.Values) (reporting.HistoryFilter, error) {
	year, err := parseIntParam(q, "year", 0)
	if err != nil {
		return reporting.HistoryFilter{}, err
	}
	month, err := parseIntParam(q, "month", 0)
	if err != nil {
		return reporting.HistoryFilter{}, err
	}
	if month < 0 || month > 12 {
		return reporting.HistoryFilter{}, fmt.Errorf("%w: month %d out of range", errBadParam, month)
	}
	return reporting.HistoryFilter{
		Year:       year,
		Month:      month,
		Bank:       selector(q, "bank"),
		Account:    selector(q, "account"),
		SubAccount: selector(q, "subaccount"),
		Query:      sanitizeInput(q.Get("q")),
	}, nil
}

func selector(q url.Values, key string) string {
	v := sanitizeInput(q.Get(key))
	if allOption[strings.ToLower(v)] {
		return ""
	}
	return v
}

// ParseDayRange reads start and end as YYYY-MM-DD; missing ends are zero.
func ParseDayRange(q url.Values) (from, to time.Time, err error) {
	parse := func(key string) (time.Time, error) {
		v := strings.TrimSpace(q.Get(key))
		if v == "" {
			return time.Time{}, nil
		}
		d, err := time.Parse(dayLayout, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s=%q must be YYYY-MM-DD", errBadParam, key, v)
		}
		return d, nil
	}
	if from, err = parse("start"); err != nil {
		return
	}
	if to, err = parse("end"); err != nil {
		return
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		err = fmt.Errorf("%w: start is after end", errBadParam)
	}
	return
}

// ParseTrend reads value (default credito) and granularity (default month).
func ParseTrend(q url.Values) (reporting.ValueColumn, core.PeriodKind, error) {
	raw := strings.ToLower(strings.TrimSpace(q.Get("value")))
	if raw == "" {
		raw = string(reporting.ValueCredit)
	}
	v, err := reporting.ParseValueColumn(raw)
	if err != nil {
		return "", "", err
	}
	granularity := core.Month
	if g := strings.TrimSpace(q.Get("granularity")); g != "" {
		granularity = core.PeriodKind(strings.ToLower(g))
	}
	if granularity != core.Month && granularity != core.Year {
		return "", "", fmt.Errorf("%w: granularity %q must be month or year", reporting.ErrUnknownPeriod, granularity)
	}
	return v, granularity, nil
}
