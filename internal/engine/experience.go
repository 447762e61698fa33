package engine

import (
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ── 经验评分 ──

const (
	minTokenLength      = 4    // 只保留长度 > 3 的词
	recencyDecayRate    = 0.1  // exp(-0.1 × 距结束月数)
	fullDurationDays    = 90.0 // 持续 90 天及以上的经历按满权重计
	experienceNormalDiv = 3.0
)

// Tokenizer 项目名称/描述分词器
type Tokenizer struct {
	// Stem 为 true 时对英文词做 Snowball 词干化，使 "migrating" 与 "migration" 命中
	Stem bool
}

// Tokens 小写分词并去重
func (t Tokenizer) Tokens(text string) map[string]struct{} {
	lower := cases.Lower(language.Und).String(text)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) < minTokenLength {
			continue
		}
		if t.Stem {
			if stemmed, err := snowball.Stem(w, "english", false); err == nil && stemmed != "" {
				w = stemmed
			}
		}
		set[w] = struct{}{}
	}
	return set
}

// Jaccard |A∩B| / |A∪B|，并集为空时为 0
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func projectTokens(t Tokenizer, p *Project) map[string]struct{} {
	return t.Tokens(p.Name + " " + p.Description)
}

// experienceScore 基于历史项目关键词相似度 + 时效衰减
func (e *Engine) experienceScore(idx *index, resourceID string, target *Project) float64 {
	targetTokens := projectTokens(e.tokenizer, target)
	if len(targetTokens) == 0 {
		return 0
	}
	asOf := idx.asOf()
	sum := 0.0
	for _, a := range idx.byResource[resourceID] {
		if a.ProjectID == target.ID {
			continue
		}
		p, ok := idx.projects[a.ProjectID]
		if !ok || !completedBy(a, p, asOf) {
			continue
		}
		sim := Jaccard(projectTokens(e.tokenizer, p), targetTokens)
		if sim == 0 {
			continue
		}
		decay := math.Exp(-recencyDecayRate * monthsSince(a.EndDate, asOf))
		durationWeight := math.Min(1, float64(a.Period().Days())/fullDurationDays)
		sum += sim * decay * durationWeight
	}
	return math.Min(1, sum/experienceNormalDiv)
}

// completedBy 分配在 asOf 之前已结束，或所属项目已完结
func completedBy(a Allocation, p *Project, asOf time.Time) bool {
	return Day(a.EndDate).Before(asOf) || p.Status == ProjectStatusCompleted
}

func (idx *index) asOf() time.Time {
	if idx.snap.AsOf.IsZero() {
		return Day(time.Now())
	}
	return Day(idx.snap.AsOf)
}

// ── 团队契合度 ──

// TeamFitScorer 团队契合度评分扩展点，返回 [0,1]
type TeamFitScorer interface {
	TeamFit(snap *Snapshot, resourceID, projectID string) float64
}

const (
	teamFitCollaborated = 0.8
	teamFitDefault      = 0.5
)

// CoAllocationTeamFit 曾与项目当前成员在同一项目上时间重叠 → 0.8，否则 0.5
type CoAllocationTeamFit struct{}

// TeamFit 实现 TeamFitScorer
func (CoAllocationTeamFit) TeamFit(snap *Snapshot, resourceID, projectID string) float64 {
	asOf := Day(snap.AsOf)
	if snap.AsOf.IsZero() {
		asOf = Day(time.Now())
	}

	team := make(map[string]bool)
	for _, a := range snap.Allocations {
		if a.ProjectID == projectID && a.ResourceID != resourceID && !Day(a.EndDate).Before(asOf) {
			team[a.ResourceID] = true
		}
	}
	if len(team) == 0 {
		return teamFitDefault
	}

	var history []Allocation
	for _, a := range snap.Allocations {
		if a.ResourceID == resourceID && a.ProjectID != projectID {
			history = append(history, a)
		}
	}
	for _, mine := range history {
		for _, a := range snap.Allocations {
			if team[a.ResourceID] && a.ProjectID == mine.ProjectID && a.Period().Overlaps(mine.Period()) {
				return teamFitCollaborated
			}
		}
	}
	return teamFitDefault
}
