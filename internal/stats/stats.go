// Package stats derives a user's practice statistics from their completed
// sessions. Everything here is a pure function of its inputs and the clock
// value passed in.
package stats

import (
	"math"
	"time"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
)

const (
	// StreakWindowDays caps how far back the streak scan looks.
	StreakWindowDays = 30
	// RecentWindow is the look-back used for RecentSessions.
	RecentWindow = 7 * 24 * time.Hour
)

// Summary is the statistics payload returned to the practice dashboard.
type Summary struct {
	TotalSessions  int `json:"total_sessions"`
	TotalDuration  int `json:"total_duration"`
	LongestSession int `json:"longest_session"`
	AverageSession int `json:"average_session"`
	CurrentStreak  int `json:"current_streak"`
	RecentSessions int `json:"recent_sessions"`
	PersonalBests  int `json:"personal_bests"`
}

// Summarize combines the owner's stored counters with aggregates computed
// over sessions.
func Summarize(user *domain.User, sessions []*domain.PracticeSession, now time.Time, loc *time.Location) *Summary {
	return &Summary{
		TotalSessions:  user.TotalSessions,
		TotalDuration:  user.TotalDuration,
		LongestSession: Longest(sessions),
		AverageSession: Average(sessions),
		CurrentStreak:  Streak(sessions, now, loc),
		RecentSessions: RecentCount(sessions, now),
		PersonalBests:  PersonalBestCount(sessions),
	}
}

// Streak counts consecutive calendar days, scanning backward from today,
// that contain at least one session. An empty today does not break a streak
// that ends yesterday; any other empty day does.
func Streak(sessions []*domain.PracticeSession, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}

	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	streak := 0
	for i := 0; i < StreakWindowDays; i++ {
		start := today.AddDate(0, 0, -i)
		end := start.AddDate(0, 0, 1)

		if hasSessionBetween(sessions, start, end) {
			streak++
			continue
		}
		if i > 0 {
			break
		}
	}

	return streak
}

func hasSessionBetween(sessions []*domain.PracticeSession, start, end time.Time) bool {
	for _, s := range sessions {
		if !s.CompletedAt.Before(start) && s.CompletedAt.Before(end) {
			return true
		}
	}
	return false
}

// Longest returns the maximum duration, or 0 for no sessions.
func Longest(sessions []*domain.PracticeSession) int {
	longest := 0
	for _, s := range sessions {
		if s.Duration > longest {
			longest = s.Duration
		}
	}
	return longest
}

// Average returns the mean duration rounded to the nearest second.
func Average(sessions []*domain.PracticeSession) int {
	if len(sessions) == 0 {
		return 0
	}

	total := 0
	for _, s := range sessions {
		total += s.Duration
	}
	return int(math.Round(float64(total) / float64(len(sessions))))
}

// RecentCount counts sessions completed within RecentWindow of now.
func RecentCount(sessions []*domain.PracticeSession, now time.Time) int {
	cutoff := now.Add(-RecentWindow)

	count := 0
	for _, s := range sessions {
		if s.CompletedAt.After(cutoff) {
			count++
		}
	}
	return count
}

// PersonalBestCount counts sessions flagged as personal bests.
func PersonalBestCount(sessions []*domain.PracticeSession) int {
	count := 0
	for _, s := range sessions {
		if s.PersonalBest {
			count++
		}
	}
	return count
}

// IsPersonalBest reports whether duration strictly beats every earlier
// session. A user's first session is always a personal best.
func IsPersonalBest(duration, previousLongest int, hasPrevious bool) bool {
	if !hasPrevious {
		return true
	}
	return duration > previousLongest
}
