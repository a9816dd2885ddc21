// Package ranking computes leaderboard positions, competition ranks and
// percentiles from account point totals. It never caches: callers pass the
// population read from the store on every request.
package ranking

import (
	"math"
	"sort"
	"strings"

	"github.com/yigit/achievement-portal/internal/app/models"
)

// DefaultLimit caps leaderboard length.
const DefaultLimit = 100

// Entry is one row of a leaderboard.
type Entry struct {
	Position      int               `json:"position"`
	AccountID     int64             `json:"id"`
	Name          string            `json:"name"`
	RollNumber    string            `json:"rollNumber"`
	Department    models.Department `json:"department"`
	Section       string            `json:"section"`
	Year          models.Year       `json:"year"`
	ProfilePicURL string            `json:"profilePicUrl"`
	TotalPoints   int               `json:"totalPoints"`
}

// Standing is one account's place within a filtered population.
type Standing struct {
	Rank       int `json:"rank"`
	TotalUsers int `json:"totalUsers"`
	Percentile int `json:"percentile"`
	Points     int `json:"points"`
}

// Snapshot is one account's points and the counts it is ranked against,
// read in a single statement.
type Snapshot struct {
	Points  int
	Greater int
	Total   int
	// Member is false when the account falls outside the filtered population.
	Member bool
}

// OrderBy is Less written as SQL ORDER BY terms. Lowercased names compare
// bytewise so the database and Less agree regardless of collation.
var OrderBy = []string{"total_points DESC", `LOWER(name) COLLATE "C" ASC`, "id ASC"}

// Less is the leaderboard order: points descending, then lowercased name
// ascending, then account id.
func Less(a, b Entry) bool {
	if a.TotalPoints != b.TotalPoints {
		return a.TotalPoints > b.TotalPoints
	}
	if an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name); an != bn {
		return an < bn
	}
	return a.AccountID < b.AccountID
}

// Build orders entries, truncates them to limit and assigns 1-based positions.
// Ties in points get distinct consecutive positions, broken by name then id.
func Build(entries []Entry, limit int) []Entry {
	if limit <= 0 {
		limit = DefaultLimit
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool { return Less(out[i], out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	AssignPositions(out)
	return out
}

// AssignPositions numbers already ordered entries 1..n.
func AssignPositions(entries []Entry) {
	for i := range entries {
		entries[i].Position = i + 1
	}
}

// CompetitionRank is 1 plus the number of strictly greater totals, so tied
// accounts share a rank.
func CompetitionRank(points int, totals []int) int {
	rank := 1
	for _, t := range totals {
		if t > points {
			rank++
		}
	}
	return rank
}

// Percentile is round((total-rank+1)/total*100), or 0 for an empty population.
func Percentile(rank, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(total-rank+1) / float64(total) * 100))
}

// NewStanding assembles a Standing from a rank computed against total accounts.
func NewStanding(points, rank, total int) Standing {
	return Standing{
		Rank:       rank,
		TotalUsers: total,
		Percentile: Percentile(rank, total),
		Points:     points,
	}
}
