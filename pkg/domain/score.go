package domain

import (
	"sort"
	"time"
)

// Score is one recorded practice result for a player.
type Score struct {
	ID        int64     `db:"id" json:"id"`
	PlayerID  int64     `db:"player_id" json:"player_id"`
	Level     int       `db:"level" json:"level"`
	Points    int       `db:"points" json:"points"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// LeaderboardEntry is one aggregated ranking row: a player and the sum
// of all points they have scored. Rank is one-based.
type LeaderboardEntry struct {
	Rank        int    `db:"-" json:"rank"`
	Username    string `db:"username" json:"username"`
	TotalPoints int    `db:"total_points" json:"total_points"`
}

// SortLeaderboard orders entries best first, ties broken by name, and
// fills in the one-based ranks. This is the one ranking rule every
// leaderboard backend must agree on.
func SortLeaderboard(entries []LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		return entries[i].Username < entries[j].Username
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}
