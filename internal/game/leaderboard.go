package game

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunResult is a finished (or abandoned) run.
type RunResult struct {
	RunID       string    `json:"runId"`
	Score       int       `json:"score"`
	GameTime    float64   `json:"gameTime"`
	DamageDealt int       `json:"damageDealt"`
	Seed        int64     `json:"seed"`
	Died        bool      `json:"died"`
	EndedAt     time.Time `json:"endedAt"`
	Rank        int       `json:"rank"`
}

// Leaderboard ranks runs by score, then by survival time. Entries are
// kept sorted, so inserts are a binary search and GetTop is O(k).
type Leaderboard struct {
	mu      sync.RWMutex
	entries []RunResult
	limit   int
}

// NewLeaderboard keeps at most limit runs (0 = unlimited).
func NewLeaderboard(limit int) *Leaderboard {
	return &Leaderboard{limit: limit}
}

func better(a, b RunResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.GameTime > b.GameTime
}

// Record inserts a run and returns its rank (1 = best), or 0 when it did
// not make the cut.
func (lb *Leaderboard) Record(r RunResult) int {
	if r.RunID == "" {
		r.RunID = uuid.NewString()
	}
	if r.EndedAt.IsZero() {
		r.EndedAt = time.Now()
	}

	lb.mu.Lock()
	defer lb.mu.Unlock()

	// Ties go after existing entries
	i := sort.Search(len(lb.entries), func(i int) bool { return better(r, lb.entries[i]) })
	lb.entries = append(lb.entries, RunResult{})
	copy(lb.entries[i+1:], lb.entries[i:])
	lb.entries[i] = r

	if lb.limit > 0 && len(lb.entries) > lb.limit {
		lb.entries = lb.entries[:lb.limit]
		if i >= lb.limit {
			return 0
		}
	}
	return i + 1
}

// GetTop returns the best n runs with ranks filled in.
func (lb *Leaderboard) GetTop(n int) []RunResult {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	if n <= 0 || n > len(lb.entries) {
		n = len(lb.entries)
	}
	out := make([]RunResult, n)
	for i := 0; i < n; i++ {
		out[i] = lb.entries[i]
		out[i].Rank = i + 1
	}
	return out
}

// GetRank returns a run's rank (1-indexed), or 0 if not found.
func (lb *Leaderboard) GetRank(runID string) int {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	for i, e := range lb.entries {
		if e.RunID == runID {
			return i + 1
		}
	}
	return 0
}

// Length returns the number of recorded runs.
func (lb *Leaderboard) Length() int {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return len(lb.entries)
}

// Clear removes all runs.
func (lb *Leaderboard) Clear() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.entries = lb.entries[:0]
}
