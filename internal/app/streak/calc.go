// Package streak implements QuestDo consecutive-day streak tracking.
// A streak counts calendar days with at least one qualifying completion.
// The current streak tolerates a one-day grace window: it is not broken
// until the most recent completion is older than yesterday.
package streak

import (
	"sort"
	"time"
)

// DayFormat is the calendar-day encoding used throughout the engine.
const DayFormat = time.DateOnly

// Day formats a time as a calendar-day string in UTC.
func Day(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// parseDays deduplicates and parses day strings into UTC midnights,
// silently skipping malformed entries — one bad record must not zero a
// user's entire streak.
func parseDays(days []string) []time.Time {
	seen := make(map[string]bool, len(days))
	parsed := make([]time.Time, 0, len(days))
	for _, d := range days {
		if seen[d] {
			continue
		}
		seen[d] = true
		t, err := time.ParseInLocation(DayFormat, d, time.UTC)
		if err != nil {
			continue
		}
		parsed = append(parsed, t)
	}
	return parsed
}

// CurrentAt computes the current streak over an unordered set of day strings
// as of the given evaluation time.
//
// If the most recent completion is neither today nor yesterday relative to
// now, the streak is broken and 0 is returned — even when older dates form a
// long run. Otherwise the streak is the length of the consecutive-day walk
// backward from the most recent completion; the first gap wider than one day
// stops the walk.
func CurrentAt(days []string, now time.Time) int {
	parsed := parseDays(days)
	if len(parsed) == 0 {
		return 0
	}

	sort.Slice(parsed, func(i, j int) bool { return parsed[i].After(parsed[j]) })

	today := now.UTC().Truncate(24 * time.Hour)
	latest := parsed[0]
	if today.Sub(latest) >= 48*time.Hour {
		return 0 // Last activity older than yesterday — grace window over
	}

	count := 1
	prev := latest
	for _, d := range parsed[1:] {
		gap := prev.Sub(d)
		if gap > 24*time.Hour {
			break // Gap of 2+ days inside the history ends the walk
		}
		// gap == 24h: consecutive day. gap == 0 cannot occur after dedupe.
		count++
		prev = d
	}
	return count
}

// Current computes the current streak as of now.
func Current(days []string) int {
	return CurrentAt(days, time.Now())
}

// Longest computes the longest run of consecutive days anywhere in the
// history. Unlike the current streak it does not depend on the evaluation
// time: an old 30-day run still counts long after it ended.
func Longest(days []string) int {
	parsed := parseDays(days)
	if len(parsed) == 0 {
		return 0
	}

	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Before(parsed[j]) })

	longest, run := 1, 1
	for i := 1; i < len(parsed); i++ {
		if parsed[i].Sub(parsed[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// RecentDaysAt returns the last n calendar days ending at now's day, oldest
// first. Used to render fixed-length heatmaps.
func RecentDaysAt(n int, now time.Time) []string {
	if n <= 0 {
		return nil
	}
	today := now.UTC().Truncate(24 * time.Hour)
	out := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, today.AddDate(0, 0, -i).Format(DayFormat))
	}
	return out
}

// RecentDays returns the last n calendar days ending today, oldest first.
func RecentDays(n int) []string {
	return RecentDaysAt(n, time.Now())
}
