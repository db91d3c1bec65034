package stats

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
)

var jerusalem = mustLocation("Asia/Jerusalem")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// session builds a session completed daysAgo calendar days before now at hour:00.
func session(now time.Time, daysAgo, hour, duration int) *domain.PracticeSession {
	local := now.In(jerusalem)
	day := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, jerusalem).AddDate(0, 0, -daysAgo)
	return &domain.PracticeSession{ID: uuid.New(), Duration: duration, CompletedAt: day}
}

func TestStreak(t *testing.T) {
	now := time.Date(2025, 6, 15, 18, 30, 0, 0, jerusalem)

	tests := []struct {
		name     string
		daysAgo  []int
		expected int
	}{
		{name: "no sessions", daysAgo: nil, expected: 0},
		{name: "only today", daysAgo: []int{0}, expected: 1},
		{name: "today and yesterday", daysAgo: []int{0, 1}, expected: 2},
		{name: "yesterday and day before, not today", daysAgo: []int{1, 2}, expected: 2},
		{name: "only three days ago", daysAgo: []int{3}, expected: 0},
		{name: "gap breaks streak", daysAgo: []int{0, 1, 3, 4}, expected: 2},
		{name: "several sessions one day", daysAgo: []int{0, 0, 0}, expected: 1},
		{name: "future session ignored", daysAgo: []int{-1}, expected: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sessions []*domain.PracticeSession
			for _, d := range tt.daysAgo {
				sessions = append(sessions, session(now, d, 7, 60))
			}

			result := Streak(sessions, now, jerusalem)
			if result != tt.expected {
				t.Fatalf("Streak(%v) = %d want %d", tt.daysAgo, result, tt.expected)
			}
		})
	}
}

func TestStreakCapsAtWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, jerusalem)

	var sessions []*domain.PracticeSession
	for d := 0; d < 45; d++ {
		sessions = append(sessions, session(now, d, 8, 120))
	}

	if got := Streak(sessions, now, jerusalem); got != StreakWindowDays {
		t.Fatalf("Streak() = %d, want %d", got, StreakWindowDays)
	}
}

func TestStreakUsesLocalMidnight(t *testing.T) {
	// 00:30 local on the 15th is still the 14th in UTC.
	now := time.Date(2025, 6, 15, 0, 30, 0, 0, jerusalem)
	lateYesterday := &domain.PracticeSession{
		Duration:    60,
		CompletedAt: time.Date(2025, 6, 14, 23, 50, 0, 0, jerusalem),
	}
	justAfterMidnight := &domain.PracticeSession{
		Duration:    60,
		CompletedAt: time.Date(2025, 6, 15, 0, 5, 0, 0, jerusalem),
	}

	got := Streak([]*domain.PracticeSession{lateYesterday, justAfterMidnight}, now, jerusalem)
	if got != 2 {
		t.Fatalf("Streak() = %d, want 2", got)
	}
}

func TestAggregates(t *testing.T) {
	now := time.Date(2025, 6, 15, 20, 0, 0, 0, jerusalem)

	tests := []struct {
		name      string
		durations []int
		longest   int
		average   int
	}{
		{name: "empty", durations: nil, longest: 0, average: 0},
		{name: "single", durations: []int{42}, longest: 42, average: 42},
		{name: "example", durations: []int{60, 90, 45}, longest: 90, average: 65},
		{name: "rounds half up", durations: []int{1, 2}, longest: 2, average: 2},
		{name: "rounds down", durations: []int{10, 10, 11}, longest: 11, average: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sessions []*domain.PracticeSession
			for i, d := range tt.durations {
				sessions = append(sessions, session(now, i, 7, d))
			}

			if got := Longest(sessions); got != tt.longest {
				t.Fatalf("Longest(%v) = %d want %d", tt.durations, got, tt.longest)
			}
			if got := Average(sessions); got != tt.average {
				t.Fatalf("Average(%v) = %d want %d", tt.durations, got, tt.average)
			}
		})
	}
}

func TestRecentCount(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	sessions := []*domain.PracticeSession{
		{CompletedAt: now.Add(-time.Hour)},
		{CompletedAt: now.Add(-6 * 24 * time.Hour)},
		{CompletedAt: now.Add(-RecentWindow)},
		{CompletedAt: now.Add(-8 * 24 * time.Hour)},
	}

	if got := RecentCount(sessions, now); got != 2 {
		t.Fatalf("RecentCount() = %d, want 2", got)
	}
}

func TestIsPersonalBest(t *testing.T) {
	tests := []struct {
		name        string
		duration    int
		previous    int
		hasPrevious bool
		expected    bool
	}{
		{name: "first session", duration: 10, expected: true},
		{name: "first session zero length", duration: 0, expected: true},
		{name: "beats previous", duration: 91, previous: 90, hasPrevious: true, expected: true},
		{name: "ties previous", duration: 90, previous: 90, hasPrevious: true, expected: false},
		{name: "below previous", duration: 45, previous: 90, hasPrevious: true, expected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsPersonalBest(tt.duration, tt.previous, tt.hasPrevious)
			if got != tt.expected {
				t.Fatalf("IsPersonalBest(%d, %d, %v) = %v want %v",
					tt.duration, tt.previous, tt.hasPrevious, got, tt.expected)
			}
		})
	}
}

// Sessions of 60, 90 and 45 seconds on three consecutive days ending today.
func TestSummarizeExample(t *testing.T) {
	now := time.Date(2025, 6, 15, 21, 0, 0, 0, jerusalem)

	durations := []int{60, 90, 45}
	var sessions []*domain.PracticeSession
	longest, has := 0, false
	for i, d := range durations {
		s := session(now, len(durations)-1-i, 7, d)
		s.PersonalBest = IsPersonalBest(d, longest, has)
		if d > longest {
			longest = d
		}
		has = true
		sessions = append(sessions, s)
	}

	user := &domain.User{TotalSessions: 3, TotalDuration: 195}
	got := Summarize(user, sessions, now, jerusalem)

	want := Summary{
		TotalSessions:  3,
		TotalDuration:  195,
		LongestSession: 90,
		AverageSession: 65,
		CurrentStreak:  3,
		RecentSessions: 3,
		PersonalBests:  2,
	}
	if *got != want {
		t.Fatalf("Summarize() = %+v, want %+v", *got, want)
	}
}

func TestPersonalBestCount(t *testing.T) {
	now := time.Date(2025, 6, 15, 18, 30, 0, 0, jerusalem)
	sessions := []*domain.PracticeSession{session(now, 0, 8, 60), session(now, 1, 8, 90), session(now, 2, 8, 45)}
	sessions[1].PersonalBest = true
	sessions[2].PersonalBest = true

	if got := PersonalBestCount(sessions); got != 2 {
		t.Fatalf("PersonalBestCount() = %d, want 2", got)
	}
	if got := PersonalBestCount(nil); got != 0 {
		t.Fatalf("PersonalBestCount(nil) = %d, want 0", got)
	}
}
