package service

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freeup86/resource-pulse-sub001/internal/engine"
)

// ── 样例数据 ──
// 持久化层不可用且开启降级时使用。固定种子 + 名字派生 UUID，
// 同一天内多次生成结果完全一致

const (
	fallbackSeed      int64 = 20240601
	fallbackResources       = 8
)

var fallbackNamespace = uuid.MustParse("6f1c3c52-8d0e-4c7a-9b8e-2d4f5a7b9c10")

var fallbackSkillNames = []string{
	"Go", "PostgreSQL", "Kubernetes", "React",
	"Data Analysis", "Project Management", "AWS", "Python",
}

var fallbackUtilizations = []float64{25, 50, 50, 75, 100}

func fallbackID(kind, key string) string {
	return uuid.NewSHA1(fallbackNamespace, []byte(kind+"/"+key)).String()
}

// fallbackSnapshot 以 asOf 为基准生成一份样例快照
func fallbackSnapshot(asOf time.Time) *engine.Snapshot {
	f := gofakeit.New(fallbackSeed)
	asOf = engine.Day(asOf)

	skills := make([]engine.Skill, 0, len(fallbackSkillNames))
	for _, name := range fallbackSkillNames {
		skills = append(skills, engine.Skill{ID: fallbackID("skill", name), Name: name})
	}
	pickSkills := func(n int) []engine.Skill {
		out := make([]engine.Skill, 0, n)
		for _, i := range f.Rand.Perm(len(skills))[:n] {
			out = append(out, skills[i])
		}
		return out
	}

	// 项目：一个已完成（提供经验），其余在进行中或计划中
	type projectPlan struct {
		status       string
		startOffset  int
		durationDays int
	}
	plans := []projectPlan{
		{engine.ProjectStatusCompleted, -240, 180},
		{engine.ProjectStatusActive, -60, 150},
		{engine.ProjectStatusActive, -30, 120},
		{engine.ProjectStatusPlanning, 20, 120},
		{engine.ProjectStatusPlanning, 45, 90},
	}
	projects := make([]engine.Project, 0, len(plans))
	for i, pl := range plans {
		name := f.AppName()
		budget := decimal.NewFromInt(int64(f.Number(80, 400)) * 1000)
		spent := budget.Mul(decimal.NewFromFloat(f.Float64Range(0.5, 1.05))).Round(2)
		projects = append(projects, engine.Project{
			ID:             fallbackID("project", string(rune('A'+i))),
			Name:           name,
			Description:    f.Sentence(12),
			Client:         f.Company(),
			Status:         pl.status,
			StartDate:      asOf.AddDate(0, 0, pl.startOffset),
			EndDate:        asOf.AddDate(0, 0, pl.startOffset+pl.durationDays-1),
			RequiredSkills: pickSkills(f.Number(2, 3)),
			Budget:         budget,
			ActualCost:     spent,
		})
	}

	snap := &engine.Snapshot{
		Resources:      make([]engine.Resource, 0, fallbackResources),
		Projects:       projects,
		Allocations:    make([]engine.Allocation, 0),
		Capacity:       make([]engine.CapacityEntry, 0),
		AsOf:           asOf,
		IsFallbackData: true,
	}
	for i := 0; i < fallbackResources; i++ {
		id := fallbackID("resource", string(rune('a'+i)))
		billing := int64(f.Number(90, 180))
		snap.Resources = append(snap.Resources, engine.Resource{
			ID:          id,
			Name:        f.Name(),
			Role:        f.JobTitle(),
			BillingRate: decimal.NewFromInt(billing),
			CostRate:    decimal.NewFromInt(billing * int64(f.Number(50, 70)) / 100),
			Skills:      pickSkills(f.Number(2, 4)),
		})

		// 每人 0–2 条进行中分配，单数序号的人再带一条历史分配
		active := f.Number(0, 2)
		for n := 0; n < active; n++ {
			p := projects[1+f.Number(0, len(projects)-2)]
			snap.Allocations = append(snap.Allocations, engine.Allocation{
				ID:          fallbackID("allocation", fmt.Sprintf("%s/%s/%d", id, p.ID, n)),
				ResourceID:  id,
				ProjectID:   p.ID,
				StartDate:   p.StartDate,
				EndDate:     p.EndDate,
				Utilization: fallbackUtilizations[f.Number(0, len(fallbackUtilizations)-1)],
			})
		}
		if i%2 == 1 {
			done := projects[0]
			snap.Allocations = append(snap.Allocations, engine.Allocation{
				ID:          fallbackID("allocation", id+"/"+done.ID),
				ResourceID:  id,
				ProjectID:   done.ID,
				StartDate:   done.StartDate,
				EndDate:     done.EndDate,
				Utilization: 50,
			})
		}
	}
	return snap
}
