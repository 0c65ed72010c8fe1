package api

import (
	"io"
	"sync"

	"survivors/internal/game"

	"github.com/pkg/errors"
)

// MockEngine implements EngineInterface for testing
type MockEngine struct {
	mu       sync.Mutex
	snap     game.WorldSnapshot
	stats    game.EngineStats
	skills   []game.SkillStats
	keys     []keyPress
	levelUps []int
	restarts int
	runs     []game.RunResult
	events   []game.Event
}

type keyPress struct {
	key  string
	down bool
}

func NewMockEngine() *MockEngine {
	return &MockEngine{
		snap: game.WorldSnapshot{
			Sequence: 1,
			Player:   game.ActorSnapshot{Kind: "player", HP: 100, MaxHP: 100, Radius: 25},
		},
		skills: []game.SkillStats{
			{Kind: game.SkillAura, Level: 1, Damage: 5},
		},
	}
}

func (m *MockEngine) GetSnapshot() game.WorldSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Clone()
}

func (m *MockEngine) GetStats() game.EngineStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

func (m *MockEngine) SkillInfo() []game.SkillStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]game.SkillStats(nil), m.skills...)
}

func (m *MockEngine) AddSkill(kind string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch game.SkillKind(kind) {
	case game.SkillAura, game.SkillHoming, game.SkillKnives:
	default:
		return -1, false
	}
	m.skills = append(m.skills, game.SkillStats{Kind: game.SkillKind(kind), Level: 1})
	return len(m.skills) - 1, true
}

func (m *MockEngine) LevelUpSkill(index int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.skills) {
		return false
	}
	m.skills[index].Level++
	m.levelUps = append(m.levelUps, index)
	return true
}

func (m *MockEngine) HandleKey(key string, down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, keyPress{key, down})
}

func (m *MockEngine) Restart() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restarts++
}

func (m *MockEngine) Leaderboard(n int) []game.RunResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > len(m.runs) {
		n = len(m.runs)
	}
	return append([]game.RunResult(nil), m.runs[:n]...)
}

func (m *MockEngine) RecentEvents(n int) []game.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > len(m.events) {
		n = len(m.events)
	}
	return append([]game.Event(nil), m.events[len(m.events)-n:]...)
}

func (m *MockEngine) setGameOver(over bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.GameOver = over
	m.snap.Sequence++
}

func (m *MockEngine) keyPresses() []keyPress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]keyPress(nil), m.keys...)
}

func (m *MockEngine) restartCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restarts
}

// failingRenderer always fails to encode
type failingRenderer struct{}

func (failingRenderer) WritePNG(io.Writer, *game.WorldSnapshot) error {
	return errors.New("boom")
}
