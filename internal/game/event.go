package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeTick              // Tick boundary with RNG seed
	EventTypeEnemySpawn
	EventTypeDamage
	EventTypeKill
	EventTypePlayerDeath
	EventTypeSkillCast
	EventTypeSkillLevelUp
	EventTypeSkillAdded
	EventTypeContactBegin
	EventTypeContactEnd
	EventTypeReset
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 2

// Event is the core event structure for the event log
type Event struct {
	Version   uint8           `json:"version"`   // Schema version
	Type      EventType       `json:"type"`      // Event type
	Name      string          `json:"name"`      // Event type, human readable
	Timestamp int64           `json:"timestamp"` // Unix nano
	GameMs    int64           `json:"gameMs"`    // Simulation clock
	Sequence  uint64          `json:"sequence"`  // Monotonic sequence
	TickNum   uint64          `json:"tickNum"`   // Game tick this occurred in
	ActorID   string          `json:"actorId"`   // Source actor (for rate limiting)
	Payload   json.RawMessage `json:"payload"`   // JSON-encoded payload
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeTick:
		return "tick"
	case EventTypeEnemySpawn:
		return "enemy_spawn"
	case EventTypeDamage:
		return "damage"
	case EventTypeKill:
		return "kill"
	case EventTypePlayerDeath:
		return "player_death"
	case EventTypeSkillCast:
		return "skill_cast"
	case EventTypeSkillLevelUp:
		return "skill_level_up"
	case EventTypeSkillAdded:
		return "skill_added"
	case EventTypeContactBegin:
		return "contact_begin"
	case EventTypeContactEnd:
		return "contact_end"
	case EventTypeReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Typed payloads for different event types

// TickPayload contains tick boundary information for replay
type TickPayload struct {
	Seed        int64 `json:"seed"`
	EnemyCount  int   `json:"enemyCount"`
	DeltaTimeNs int64 `json:"deltaTimeNs"`
}

// SpawnPayload contains enemy spawn details
type SpawnPayload struct {
	EnemyID string  `json:"enemyId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	HP      int     `json:"hp"`
}

// DamagePayload contains damage event details
type DamagePayload struct {
	VictimID   string `json:"victimId"`
	VictimKind string `json:"victimKind"`
	Damage     int    `json:"damage"`
	VictimHP   int    `json:"victimHp"`
}

// KillPayload contains enemy kill details
type KillPayload struct {
	VictimID string `json:"victimId"`
	Score    int    `json:"score"`
}

// PlayerDeathPayload records the end of a run
type PlayerDeathPayload struct {
	PlayerID string  `json:"playerId"`
	GameTime float64 `json:"gameTime"`
	Score    int     `json:"score"`
}

// SkillPayload describes a skill cast, level-up or acquisition
type SkillPayload struct {
	Kind   SkillKind `json:"kind"`
	Index  int       `json:"index"`
	Level  int       `json:"level"`
	Damage int       `json:"damage"`
}

// ContactPayload describes a contact transition
type ContactPayload struct {
	EnemyID  string `json:"enemyId"`
	PlayerHP int    `json:"playerHp"`
	Mode     string `json:"mode"`
}

// ResetPayload marks a restarted run
type ResetPayload struct {
	Seed int64 `json:"seed"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) json.RawMessage {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, gameMs int64, actorID string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Name:      eventType.String(),
		Timestamp: time.Now().UnixNano(),
		GameMs:    gameMs,
		TickNum:   tickNum,
		ActorID:   actorID,
		Payload:   EncodePayload(payload),
	}
}
