package engine

// SkillMatch 技能覆盖率 = 命中的需求技能数 / max(1, 需求技能数)
// 任一集合为空时返回 0。只按技能 ID 严格匹配，相近技能不给分
func SkillMatch(candidate, required []Skill) float64 {
	if len(candidate) == 0 || len(required) == 0 {
		return 0
	}
	have := make(map[string]bool, len(candidate))
	for _, s := range candidate {
		have[s.ID] = true
	}
	need := make(map[string]bool, len(required))
	matched := 0
	for _, s := range required {
		if need[s.ID] {
			continue
		}
		need[s.ID] = true
		if have[s.ID] {
			matched++
		}
	}
	return float64(matched) / float64(max(1, len(need)))
}
