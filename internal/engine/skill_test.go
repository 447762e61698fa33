package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkillMatch(t *testing.T) {
	cases := []struct {
		name      string
		candidate []Skill
		required  []Skill
		want      float64
	}{
		{"部分命中", skills("go", "sql", "k8s"), skills("go", "sql", "react"), 2.0 / 3.0},
		{"全部命中", skills("go", "sql"), skills("sql"), 1},
		{"需求重复", skills("go"), skills("go", "go"), 1},
		{"候选为空", nil, skills("go"), 0},
		{"需求为空", skills("go"), nil, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := SkillMatch(c.candidate, c.required)
			assert.InDelta(t, c.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}
