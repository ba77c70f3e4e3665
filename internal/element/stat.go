package element

// Derived stat names. Every contributor delta, merge rule and DerivedStats
// entry is keyed by one of these.
const (
	StatMastery = "element_mastery"

	StatPower            = "power_point"
	StatDefense          = "defense_point"
	StatCritRate         = "crit_rate"
	StatResistCritRate   = "resist_crit_rate"
	StatCritDamage       = "crit_damage"
	StatResistCritDamage = "resist_crit_damage"
	StatAccuracy         = "accurate_rate"
	StatDodge            = "dodge_rate"

	StatStatusProbability        = "status_probability"
	StatStatusResistance         = "status_resistance"
	StatStatusDuration           = "status_duration"
	StatStatusDurationReduction  = "status_duration_reduction"
	StatStatusIntensity          = "status_intensity"
	StatStatusIntensityReduction = "status_intensity_reduction"

	StatPenetration   = "element_penetration"
	StatAbsorption    = "element_absorption"
	StatAmplification = "element_amplification"
	StatReduction     = "element_reduction"

	StatReflectionRate         = "reflection_rate"
	StatResistReflectionRate   = "resist_reflection_rate"
	StatReflectionDamage       = "reflection_damage"
	StatResistReflectionDamage = "resist_reflection_damage"

	StatParryRate     = "parry_rate"
	StatParryBreak    = "parry_break"
	StatParryStrength = "parry_strength"
	StatParryShred    = "parry_shred"

	StatBlockRate     = "block_rate"
	StatBlockBreak    = "block_break"
	StatBlockStrength = "block_strength"
	StatBlockShred    = "block_shred"

	StatSkillExecutionSpeed            = "skill_execution_speed"
	StatSkillCooldownReduction         = "skill_cooldown_reduction"
	StatAttackSkillEffectiveness       = "attack_skill_effectiveness"
	StatDefenseSkillEffectiveness      = "defense_skill_effectiveness"
	StatStatusSkillEffectiveness       = "status_skill_effectiveness"
	StatMovementTechniqueEffectiveness = "movement_technique_effectiveness"
	StatHealingSkillEffectiveness      = "healing_skill_effectiveness"
	StatSupportSkillEffectiveness      = "support_skill_effectiveness"
	StatUtilitySkillEffectiveness      = "utility_skill_effectiveness"
	StatSkillEffectiveness             = "skill_effectiveness"

	StatResourceRegeneration = "resource_regeneration"
	StatResourceEfficiency   = "resource_efficiency"

	StatLeadershipBonus     = "element_leadership_bonus"
	StatTeachingEfficiency  = "element_teaching_efficiency"
	StatCraftingEfficiency  = "element_crafting_efficiency"
	StatResourceDiscovery   = "element_resource_discovery"
	StatSensitivity         = "element_sensitivity"
	StatMasterySynergyBonus = "mastery_synergy_bonus"
)

// allStats lists every known derived stat in a stable order.
var allStats = []string{
	StatMastery,
	StatPower, StatDefense,
	StatCritRate, StatResistCritRate, StatCritDamage, StatResistCritDamage,
	StatAccuracy, StatDodge,
	StatStatusProbability, StatStatusResistance,
	StatStatusDuration, StatStatusDurationReduction,
	StatStatusIntensity, StatStatusIntensityReduction,
	StatPenetration, StatAbsorption, StatAmplification, StatReduction,
	StatReflectionRate, StatResistReflectionRate, StatReflectionDamage, StatResistReflectionDamage,
	StatParryRate, StatParryBreak, StatParryStrength, StatParryShred,
	StatBlockRate, StatBlockBreak, StatBlockStrength, StatBlockShred,
	StatSkillExecutionSpeed, StatSkillCooldownReduction,
	StatAttackSkillEffectiveness, StatDefenseSkillEffectiveness, StatStatusSkillEffectiveness,
	StatMovementTechniqueEffectiveness, StatHealingSkillEffectiveness, StatSupportSkillEffectiveness,
	StatUtilitySkillEffectiveness, StatSkillEffectiveness,
	StatResourceRegeneration, StatResourceEfficiency,
	StatLeadershipBonus, StatTeachingEfficiency, StatCraftingEfficiency, StatResourceDiscovery,
	StatSensitivity, StatMasterySynergyBonus,
}

var knownStats = func() map[string]struct{} {
	m := make(map[string]struct{}, len(allStats))
	for _, s := range allStats {
		m[s] = struct{}{}
	}
	return m
}()

// AllStats returns a copy of the known derived stat names.
func AllStats() []string {
	out := make([]string, len(allStats))
	copy(out, allStats)
	return out
}

// IsKnownStat reports whether name is a known derived stat.
func IsKnownStat(name string) bool {
	_, ok := knownStats[name]
	return ok
}
