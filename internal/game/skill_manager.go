package game

import (
	"survivors/internal/config"
)

// NewSkill builds a skill of the given kind from cfg. Unknown kinds
// return nil; callers treat that as nothing to add.
func NewSkill(kind SkillKind, cfg config.SkillsConfig, env SkillEnv) Skill {
	switch kind {
	case SkillAura:
		return NewDamageAura(cfg.Aura, env)
	case SkillHoming:
		return NewHomingProjectile(cfg.Homing, env)
	case SkillKnives:
		return NewOrbitingKnives(cfg.Knives, env)
	}
	return nil
}

// SkillManager holds a player's skills in acquisition order.
type SkillManager struct {
	owner  *Player
	skills []Skill
}

// NewSkillManager creates an empty manager for owner.
func NewSkillManager(owner *Player) *SkillManager {
	return &SkillManager{owner: owner}
}

// Add initializes skill against the owner and appends it. nil is ignored.
func (m *SkillManager) Add(skill Skill) {
	if skill == nil {
		return
	}
	skill.Initialize(m.owner)
	m.skills = append(m.skills, skill)
}

// LevelUp levels the skill at index. Out-of-range indexes are ignored.
// Reports whether a skill was levelled.
func (m *SkillManager) LevelUp(index int) bool {
	if index < 0 || index >= len(m.skills) {
		return false
	}
	m.skills[index].LevelUp()
	return true
}

// Skills returns the skills in order. The slice is owned by the manager.
func (m *SkillManager) Skills() []Skill { return m.skills }

// Len returns the number of skills.
func (m *SkillManager) Len() int { return len(m.skills) }

// Update advances every skill by one frame.
func (m *SkillManager) Update(deltaTime float64) {
	for _, s := range m.skills {
		s.Update(deltaTime)
	}
}
